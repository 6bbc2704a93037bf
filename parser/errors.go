package parser

import (
	"errors"
	"fmt"

	"github.com/example/fnscript/lexer"
	"github.com/example/fnscript/token"
)

type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	MissingDelimiter
	InvalidDeclarationShape
	NestingTooDeep
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case MissingDelimiter:
		return "MissingDelimiter"
	case InvalidDeclarationShape:
		return "InvalidDeclarationShape"
	case NestingTooDeep:
		return "NestingTooDeep"
	default:
		return "UnknownParseError"
	}
}

// Error describes a grammar violation. Found is the offending token and
// Expected the token type the grammar required at that point (EOF when the
// violation is not about a single missing token).
type Error struct {
	Kind     ErrorKind
	Message  string
	Found    token.Token
	Expected token.TokenType
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Found.Pos, e.Detail())
}

// Detail describes the error without its position.
func (e *Error) Detail() string {
	return fmt.Sprintf("%s (found %s)", e.Message, e.Found)
}

// IsIncomplete reports whether err was caused by running out of input, which
// means more source could still turn it into a valid program. That covers
// grammar errors at EOF and strings or comments left open.
func IsIncomplete(err error) bool {
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		return lerr.Kind == lexer.UnterminatedString || lerr.Kind == lexer.UnterminatedComment
	}
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Found.Type == token.EOF
}
