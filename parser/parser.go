package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/example/fnscript/ast"
	"github.com/example/fnscript/lexer"
	"github.com/example/fnscript/token"
)

// Parser is a recursive-descent parser with one token of lookahead. Tokens
// are consumed front to back and never revisited.
type Parser struct {
	tokens []token.Token
	pos    int
	depth  int
}

// MaxNesting bounds how deeply statements and expressions may nest, so that
// hostile input fails with an error instead of exhausting the stack.
const MaxNesting = 1000

// New creates a parser over an already tokenized source. The slice must end
// with an EOF token, as produced by lexer.Tokenize.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses source into a Program. Lexical errors are
// returned as *lexer.Error, grammar errors as *parser.Error.
func Parse(source string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return New(tokens).ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

// nextToken consumes the current token and returns it. EOF is never
// consumed.
func (p *Parser) nextToken() token.Token {
	tok := p.tokens[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) curOperatorIs(ops ...string) bool {
	if !p.curTokenIs(token.BinaryOperator) {
		return false
	}
	for _, op := range ops {
		if p.cur().Literal == op {
			return true
		}
	}
	return false
}

func (p *Parser) expect(t token.TokenType, kind ErrorKind, context string) (token.Token, error) {
	if p.curTokenIs(t) {
		return p.nextToken(), nil
	}
	return token.Token{}, p.errorf(kind, t, "expected %s %s", t, context)
}

func (p *Parser) errorf(kind ErrorKind, expected token.TokenType, format string, args ...interface{}) error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Found:    p.cur(),
		Expected: expected,
	}
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > MaxNesting {
		return p.errorf(NestingTooDeep, token.EOF, "nesting exceeds %d levels", MaxNesting)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// parseStatement dispatches to the appropriate statement parser.
func (p *Parser) parseStatement() (ast.Statement, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch p.cur().Type {
	case token.Let, token.Const:
		return p.parseVariableDeclaration()
	case token.Fn:
		return p.parseFunctionDeclaration()
	default:
		return p.parseExpressionStatement()
	}
}

// ---------- Statement Parsers ----------

// (let | const) IDENT ;
// (let | const) IDENT = expression ;
func (p *Parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	decl := &ast.VariableDeclaration{Token: p.nextToken()}
	decl.Constant = decl.Token.Type == token.Const

	name, err := p.expect(token.Identifier, UnexpectedToken, "after "+decl.Token.Literal)
	if err != nil {
		return nil, err
	}
	decl.Name = name.Literal

	if p.curTokenIs(token.Semicolon) {
		if decl.Constant {
			return nil, p.errorf(InvalidDeclarationShape, token.Assign, "constant %s must be initialized", decl.Name)
		}
		p.nextToken()
		return decl, nil
	}

	if _, err := p.expect(token.Assign, UnexpectedToken, "or ; after variable name"); err != nil {
		return nil, err
	}
	if decl.Value, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, MissingDelimiter, "to end variable declaration"); err != nil {
		return nil, err
	}
	return decl, nil
}

// fn IDENT ( IDENT, ... ) { statement* }
func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	decl := &ast.FunctionDeclaration{Token: p.nextToken()}

	name, err := p.expect(token.Identifier, UnexpectedToken, "for function name after fn")
	if err != nil {
		return nil, err
	}
	decl.Name = name.Literal

	// Parameters are parsed as arguments and then checked, so any
	// expression form is a shape error rather than a token error.
	paramsStart := p.pos
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	decl.Parameters = make([]string, 0, len(args))
	for _, arg := range args {
		ident, ok := arg.(*ast.Identifier)
		if !ok {
			return nil, &Error{
				Kind:     InvalidDeclarationShape,
				Message:  fmt.Sprintf("parameters of %s must be identifiers, got %s", decl.Name, arg),
				Found:    p.tokens[paramsStart],
				Expected: token.Identifier,
			}
		}
		decl.Parameters = append(decl.Parameters, ident.Name)
	}

	if _, err := p.expect(token.LeftBrace, UnexpectedToken, "to open function body"); err != nil {
		return nil, err
	}
	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		decl.Body = append(decl.Body, stmt)
	}
	if _, err := p.expect(token.RightBrace, MissingDelimiter, "to close function body"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.consumeSemicolon()
	return expr, nil
}

// ---------- Expressions, lowest precedence first ----------

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignmentExpression()
}

// Assignment is right-associative. The target is not validated here; the
// evaluator rejects anything but an identifier.
func (p *Parser) parseAssignmentExpression() (ast.Expression, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseObjectExpression()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.Assign) {
		return left, nil
	}
	tok := p.nextToken()
	value, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}
	return &ast.AssignmentExpression{Token: tok, Assignee: left, Value: value}, nil
}

// An object literal is only accepted here, never as an operand of
// arithmetic.
func (p *Parser) parseObjectExpression() (ast.Expression, error) {
	if !p.curTokenIs(token.LeftBrace) {
		return p.parseAdditiveExpression()
	}
	obj := &ast.ObjectLiteral{Token: p.nextToken()}

	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		key, err := p.expect(token.Identifier, UnexpectedToken, "for object literal key")
		if err != nil {
			return nil, err
		}
		prop := &ast.Property{Token: key, Key: key.Literal}

		// shorthand { key } or { key, ... }
		if p.curTokenIs(token.Comma) || p.curTokenIs(token.RightBrace) {
			obj.Properties = append(obj.Properties, prop)
			if p.curTokenIs(token.Comma) {
				p.nextToken()
			}
			continue
		}

		if _, err := p.expect(token.Colon, UnexpectedToken, "after object literal key"); err != nil {
			return nil, err
		}
		if prop.Value, err = p.parseExpression(); err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, prop)

		if !p.curTokenIs(token.RightBrace) {
			if _, err := p.expect(token.Comma, UnexpectedToken, "or } after object property"); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(token.RightBrace, MissingDelimiter, "to close object literal"); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *Parser) parseAdditiveExpression() (ast.Expression, error) {
	left, err := p.parseMultiplicativeExpression()
	if err != nil {
		return nil, err
	}
	for p.curOperatorIs("+", "-") {
		tok := p.nextToken()
		right, err := p.parseMultiplicativeExpression()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicativeExpression() (ast.Expression, error) {
	left, err := p.parseCallMemberExpression()
	if err != nil {
		return nil, err
	}
	for p.curOperatorIs("*", "/", "%") {
		tok := p.nextToken()
		right, err := p.parseCallMemberExpression()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
	}
	return left, nil
}

// parseCallMemberExpression parses a primary expression followed by any
// chain of .ident, [expr] and (args) suffixes.
func (p *Parser) parseCallMemberExpression() (ast.Expression, error) {
	expr, err := p.parsePrimaryExpression()
	if err != nil {
		return nil, err
	}
	return p.parsePostfixOps(expr)
}

func (p *Parser) parsePostfixOps(expr ast.Expression) (ast.Expression, error) {
	for {
		switch p.cur().Type {
		case token.Dot:
			tok := p.nextToken()
			if !p.curTokenIs(token.Identifier) {
				return nil, p.errorf(UnexpectedToken, token.Identifier, "expected identifier after .")
			}
			prop := p.nextToken()
			expr = &ast.MemberExpression{
				Token:    tok,
				Object:   expr,
				Property: &ast.Identifier{Token: prop, Name: prop.Literal},
			}
		case token.LeftBracket:
			tok := p.nextToken()
			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RightBracket, MissingDelimiter, "to close computed member"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Token: tok, Object: expr, Property: prop, Computed: true}
		case token.LeftParen:
			tok := p.cur()
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{Token: tok, Caller: expr, Arguments: args}
		default:
			return expr, nil
		}
	}
}

// ( expression, ... )
func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expect(token.LeftParen, UnexpectedToken, "to open argument list"); err != nil {
		return nil, err
	}
	args := []ast.Expression{}
	if !p.curTokenIs(token.RightParen) {
		for {
			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.curTokenIs(token.Comma) {
				break
			}
			p.nextToken()
		}
	}
	if _, err := p.expect(token.RightParen, MissingDelimiter, "to close argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimaryExpression() (ast.Expression, error) {
	switch p.cur().Type {
	case token.Identifier:
		tok := p.nextToken()
		return &ast.Identifier{Token: tok, Name: tok.Literal}, nil
	case token.Number:
		return p.parseNumberLiteral()
	case token.String:
		tok := p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
	case token.LeftParen:
		p.nextToken()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, MissingDelimiter, "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf(UnexpectedToken, token.Identifier, "unexpected token, expected an expression")
	}
}

func (p *Parser) parseNumberLiteral() (*ast.NumberLiteral, error) {
	tok := p.cur()
	// Literals too large for float64 are Infinity.
	val, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, p.errorf(UnexpectedToken, token.Number, "invalid number %s", tok.Literal)
	}
	p.nextToken()
	return &ast.NumberLiteral{Token: tok, Value: val}, nil
}

// ---------- Helpers ----------

func (p *Parser) consumeSemicolon() {
	if p.curTokenIs(token.Semicolon) {
		p.nextToken()
	}
}
