package token

import "fmt"

type TokenType int

const (
	EOF TokenType = iota

	// Literals
	Identifier
	Number
	String

	// Operators
	BinaryOperator // + - * / %
	Assign

	// Delimiters
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Semicolon
	Colon
	Comma
	Dot

	// Keywords
	Let
	Const
	Fn
)

var names = map[TokenType]string{
	EOF:            "EOF",
	Identifier:     "IDENTIFIER",
	Number:         "NUMBER",
	String:         "STRING",
	BinaryOperator: "OPERATOR",
	Assign:         "=",
	LeftParen:      "(",
	RightParen:     ")",
	LeftBrace:      "{",
	RightBrace:     "}",
	LeftBracket:    "[",
	RightBracket:   "]",
	Semicolon:      ";",
	Colon:          ":",
	Comma:          ",",
	Dot:            ".",
	Let:            "let",
	Const:          "const",
	Fn:             "fn",
}

func (t TokenType) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

// Position locates a token in the source. Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Type, t.Literal)
}

var Keywords = map[string]TokenType{
	"let":   Let,
	"const": Const,
	"fn":    Fn,
}

// Singles maps every one-character punctuation token to its type.
var Singles = map[rune]TokenType{
	'+': BinaryOperator,
	'-': BinaryOperator,
	'*': BinaryOperator,
	'/': BinaryOperator,
	'%': BinaryOperator,
	'=': Assign,
	'(': LeftParen,
	')': RightParen,
	'{': LeftBrace,
	'}': RightBrace,
	'[': LeftBracket,
	']': RightBracket,
	';': Semicolon,
	':': Colon,
	',': Comma,
	'.': Dot,
}

func LookupIdentifier(ident string) TokenType {
	if tok, ok := Keywords[ident]; ok {
		return tok
	}
	return Identifier
}
