package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/example/fnscript/token"
)

// commentMarker opens and closes a comment region.
const commentMarker = '#'

type Lexer struct {
	input   string
	pos     int // current position in input (points to current char)
	readPos int // current reading position (after current char)
	ch      rune
	line    int
	col     int
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) position() token.Position {
	return token.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isSkippable(l.ch) {
		l.readChar()
	}
}

func (l *Lexer) skipComment() *Error {
	start := l.position()
	l.readChar() // opening marker
	for !l.atEnd() && l.ch != commentMarker {
		l.readChar()
	}
	if l.atEnd() {
		return &Error{Kind: UnterminatedComment, Char: commentMarker, Pos: start}
	}
	l.readChar() // closing marker
	return nil
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		l.skipWhitespace()
		if !l.atEnd() && l.ch == commentMarker {
			if err := l.skipComment(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

// NextToken scans the next token. Once the input is exhausted it keeps
// returning EOF.
func (l *Lexer) NextToken() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}

	pos := l.position()
	tok := func(tt token.TokenType, lit string) token.Token {
		return token.Token{Type: tt, Literal: lit, Pos: pos}
	}

	if l.atEnd() {
		return tok(token.EOF, ""), nil
	}

	if tt, ok := token.Singles[l.ch]; ok {
		ch := l.ch
		l.readChar()
		return tok(tt, string(ch)), nil
	}

	switch {
	case l.ch == '"':
		return l.readString(pos)
	case isDigit(l.ch):
		return l.readNumber(pos), nil
	case isLetter(l.ch):
		return l.readIdentifier(pos), nil
	default:
		return token.Token{}, &Error{Kind: UnrecognizedCharacter, Char: l.ch, Pos: pos}
	}
}

func (l *Lexer) readIdentifier(pos token.Position) token.Token {
	start := l.pos
	for !l.atEnd() && isLetter(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.pos]
	return token.Token{Type: token.LookupIdentifier(literal), Literal: literal, Pos: pos}
}

// readString reads a double-quoted string. There are no escape sequences;
// the literal is everything between the quotes, newlines included.
func (l *Lexer) readString(pos token.Position) (token.Token, error) {
	l.readChar() // skip opening quote
	start := l.pos
	for !l.atEnd() && l.ch != '"' {
		l.readChar()
	}
	if l.atEnd() {
		return token.Token{}, &Error{Kind: UnterminatedString, Char: '"', Pos: pos}
	}
	literal := l.input[start:l.pos]
	l.readChar() // skip closing quote
	return token.Token{Type: token.String, Literal: literal, Pos: pos}, nil
}

// readNumber reads a run of decimal digits with an optional fractional part.
// The dot is only consumed when a digit follows it, so `1.x` stays a member
// access on a number.
func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.pos
	l.readDigits()
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		l.readDigits()
	}
	return token.Token{Type: token.Number, Literal: l.input[start:l.pos], Pos: pos}
}

func (l *Lexer) readDigits() {
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
}

// Tokenize returns all tokens from the input, terminated by EOF. Scanning
// stops at the first lexical error.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

func isSkippable(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}
