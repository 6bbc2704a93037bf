package ast

import (
	"strconv"
	"strings"

	"github.com/example/fnscript/token"
)

// Node is the interface all AST nodes implement. The set of nodes is closed:
// only types in this package satisfy it.
type Node interface {
	TokenLiteral() string
	Pos() token.Position
	String() string
	nodeType() string
}

type Statement interface {
	Node
	statementNode()
}

// Expression nodes may stand alone as statements.
type Expression interface {
	Statement
	expressionNode()
}

// Program is the root node of every AST.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

func (p *Program) String() string {
	return joinStatements(p.Statements, "\n")
}

// ---------- Statements ----------

type VariableDeclaration struct {
	Token    token.Token // let or const
	Name     string
	Constant bool
	Value    Expression // may be nil
}

type FunctionDeclaration struct {
	Token      token.Token // fn
	Name       string
	Parameters []string
	Body       []Statement
}

// ---------- Expressions ----------

type AssignmentExpression struct {
	Token    token.Token // =
	Assignee Expression
	Value    Expression
}

type BinaryExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

type CallExpression struct {
	Token     token.Token // (
	Caller    Expression
	Arguments []Expression
}

type MemberExpression struct {
	Token    token.Token // . or [
	Object   Expression
	Property Expression
	Computed bool
}

type Identifier struct {
	Token token.Token
	Name  string
}

type NumberLiteral struct {
	Token token.Token
	Value float64
}

type StringLiteral struct {
	Token token.Token
	Value string
}

// Property is a single entry of an object literal. A nil Value marks the
// shorthand form `{ key }`.
type Property struct {
	Token token.Token
	Key   string
	Value Expression
}

type ObjectLiteral struct {
	Token      token.Token // {
	Properties []*Property
}

// Statement markers
func (s *Program) statementNode()             {}
func (s *VariableDeclaration) statementNode() {}
func (s *FunctionDeclaration) statementNode() {}

func (e *AssignmentExpression) statementNode() {}
func (e *BinaryExpression) statementNode()     {}
func (e *CallExpression) statementNode()       {}
func (e *MemberExpression) statementNode()     {}
func (e *Identifier) statementNode()           {}
func (e *NumberLiteral) statementNode()        {}
func (e *StringLiteral) statementNode()        {}
func (e *Property) statementNode()             {}
func (e *ObjectLiteral) statementNode()        {}

// Expression markers
func (e *AssignmentExpression) expressionNode() {}
func (e *BinaryExpression) expressionNode()     {}
func (e *CallExpression) expressionNode()       {}
func (e *MemberExpression) expressionNode()     {}
func (e *Identifier) expressionNode()           {}
func (e *NumberLiteral) expressionNode()        {}
func (e *StringLiteral) expressionNode()        {}
func (e *Property) expressionNode()             {}
func (e *ObjectLiteral) expressionNode()        {}

// TokenLiteral implementations
func (s *VariableDeclaration) TokenLiteral() string  { return s.Token.Literal }
func (s *FunctionDeclaration) TokenLiteral() string  { return s.Token.Literal }
func (e *AssignmentExpression) TokenLiteral() string { return e.Token.Literal }
func (e *BinaryExpression) TokenLiteral() string     { return e.Token.Literal }
func (e *CallExpression) TokenLiteral() string       { return e.Token.Literal }
func (e *MemberExpression) TokenLiteral() string     { return e.Token.Literal }
func (e *Identifier) TokenLiteral() string           { return e.Token.Literal }
func (e *NumberLiteral) TokenLiteral() string        { return e.Token.Literal }
func (e *StringLiteral) TokenLiteral() string        { return e.Token.Literal }
func (e *Property) TokenLiteral() string             { return e.Token.Literal }
func (e *ObjectLiteral) TokenLiteral() string        { return e.Token.Literal }

// Pos implementations
func (s *VariableDeclaration) Pos() token.Position  { return s.Token.Pos }
func (s *FunctionDeclaration) Pos() token.Position  { return s.Token.Pos }
func (e *AssignmentExpression) Pos() token.Position { return e.Assignee.Pos() }
func (e *BinaryExpression) Pos() token.Position     { return e.Left.Pos() }
func (e *CallExpression) Pos() token.Position       { return e.Caller.Pos() }
func (e *MemberExpression) Pos() token.Position     { return e.Object.Pos() }
func (e *Identifier) Pos() token.Position           { return e.Token.Pos }
func (e *NumberLiteral) Pos() token.Position        { return e.Token.Pos }
func (e *StringLiteral) Pos() token.Position        { return e.Token.Pos }
func (e *Property) Pos() token.Position             { return e.Token.Pos }
func (e *ObjectLiteral) Pos() token.Position        { return e.Token.Pos }

// nodeType implementations
func (p *Program) nodeType() string              { return "Program" }
func (s *VariableDeclaration) nodeType() string  { return "VariableDeclaration" }
func (s *FunctionDeclaration) nodeType() string  { return "FunctionDeclaration" }
func (e *AssignmentExpression) nodeType() string { return "AssignmentExpression" }
func (e *BinaryExpression) nodeType() string     { return "BinaryExpression" }
func (e *CallExpression) nodeType() string       { return "CallExpression" }
func (e *MemberExpression) nodeType() string     { return "MemberExpression" }
func (e *Identifier) nodeType() string           { return "Identifier" }
func (e *NumberLiteral) nodeType() string        { return "NumberLiteral" }
func (e *StringLiteral) nodeType() string        { return "StringLiteral" }
func (e *Property) nodeType() string             { return "Property" }
func (e *ObjectLiteral) nodeType() string        { return "ObjectLiteral" }

// TypeName returns the node kind, e.g. "CallExpression".
func TypeName(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.nodeType()
}

// String implementations render nodes back into source form.

func (s *VariableDeclaration) String() string {
	var b strings.Builder
	if s.Constant {
		b.WriteString("const ")
	} else {
		b.WriteString("let ")
	}
	b.WriteString(s.Name)
	if s.Value != nil {
		b.WriteString(" = ")
		b.WriteString(s.Value.String())
	}
	b.WriteString(";")
	return b.String()
}

func (s *FunctionDeclaration) String() string {
	var b strings.Builder
	b.WriteString("fn ")
	b.WriteString(s.Name)
	b.WriteString("(")
	b.WriteString(strings.Join(s.Parameters, ", "))
	b.WriteString(") { ")
	b.WriteString(joinStatements(s.Body, " "))
	b.WriteString(" }")
	return b.String()
}

func (e *AssignmentExpression) String() string {
	return e.Assignee.String() + " = " + e.Value.String()
}

func (e *BinaryExpression) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

func (e *CallExpression) String() string {
	args := make([]string, len(e.Arguments))
	for i, a := range e.Arguments {
		args[i] = a.String()
	}
	return e.Caller.String() + "(" + strings.Join(args, ", ") + ")"
}

func (e *MemberExpression) String() string {
	if e.Computed {
		return e.Object.String() + "[" + e.Property.String() + "]"
	}
	return e.Object.String() + "." + e.Property.String()
}

func (e *Identifier) String() string { return e.Name }

func (e *NumberLiteral) String() string {
	return strconv.FormatFloat(e.Value, 'f', -1, 64)
}

func (e *StringLiteral) String() string { return `"` + e.Value + `"` }

func (e *Property) String() string {
	if e.Value == nil {
		return e.Key
	}
	return e.Key + ": " + e.Value.String()
}

func (e *ObjectLiteral) String() string {
	if len(e.Properties) == 0 {
		return "{}"
	}
	props := make([]string, len(e.Properties))
	for i, p := range e.Properties {
		props[i] = p.String()
	}
	return "{ " + strings.Join(props, ", ") + " }"
}

func joinStatements(stmts []Statement, sep string) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, sep)
}
