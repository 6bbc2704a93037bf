package lexer

import (
	"fmt"

	"github.com/example/fnscript/token"
)

type ErrorKind int

const (
	UnrecognizedCharacter ErrorKind = iota
	UnterminatedString
	UnterminatedComment
)

func (k ErrorKind) String() string {
	switch k {
	case UnrecognizedCharacter:
		return "UnrecognizedCharacter"
	case UnterminatedString:
		return "UnterminatedString"
	case UnterminatedComment:
		return "UnterminatedComment"
	default:
		return "UnknownLexError"
	}
}

// Error is returned by the lexer for source it cannot tokenize.
type Error struct {
	Kind ErrorKind
	Char rune
	Pos  token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Detail())
}

// Detail describes the error without its position.
func (e *Error) Detail() string {
	switch e.Kind {
	case UnrecognizedCharacter:
		return fmt.Sprintf("unrecognized character %q", e.Char)
	case UnterminatedString:
		return "unterminated string literal"
	case UnterminatedComment:
		return fmt.Sprintf("unterminated comment, missing closing %q", e.Char)
	default:
		return e.Kind.String()
	}
}
