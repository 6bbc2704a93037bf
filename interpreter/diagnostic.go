package interpreter

import (
	"errors"
	"fmt"

	"github.com/example/fnscript/lexer"
	"github.com/example/fnscript/parser"
	"github.com/example/fnscript/runtime"
	"github.com/example/fnscript/token"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageBinding Stage = "binding"
	StageEval    Stage = "eval"
	StageHost    Stage = "host"
)

// Diagnostic is a host-facing summary of any error returned by Eval.
type Diagnostic struct {
	Stage   Stage
	Kind    string
	Message string
	Pos     token.Position // zero when unknown
	Hint    string
}

const incompleteHint = "input ended before the statement was complete"

// Diagnose classifies err by pipeline stage and kind. Errors that did not
// come from the pipeline are reported under StageHost.
func Diagnose(err error) Diagnostic {
	var (
		lexErr   *lexer.Error
		parseErr *parser.Error
		bindErr  *runtime.BindingError
		evalErr  *EvalError
	)
	switch {
	case errors.As(err, &lexErr):
		d := Diagnostic{Stage: StageLex, Kind: lexErr.Kind.String(), Message: lexErr.Detail(), Pos: lexErr.Pos}
		if parser.IsIncomplete(err) {
			d.Hint = incompleteHint
		}
		return d
	case errors.As(err, &parseErr):
		d := Diagnostic{Stage: StageParse, Kind: parseErr.Kind.String(), Message: parseErr.Detail(), Pos: parseErr.Found.Pos}
		if parser.IsIncomplete(err) {
			d.Hint = incompleteHint
		}
		return d
	case errors.As(err, &bindErr):
		return Diagnostic{Stage: StageBinding, Kind: bindErr.Kind.String(), Message: bindErr.Error(), Pos: bindErr.Pos}
	case errors.As(err, &evalErr):
		d := Diagnostic{Stage: StageEval, Kind: evalErr.Kind.String(), Message: evalErr.Message, Pos: evalErr.Pos}
		switch evalErr.Kind {
		case StepBudgetExceeded:
			d.Hint = "raise the step limit with --max-steps"
		case CallDepthExceeded:
			d.Hint = "raise the depth limit with --max-depth"
		}
		return d
	default:
		return Diagnostic{Stage: StageHost, Kind: "HostError", Message: err.Error()}
	}
}

// Location renders file:line:col, or <unknown> without a position.
func (d Diagnostic) Location(file string) string {
	if d.Pos.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", file, d.Pos.Line, d.Pos.Column)
}

// Format renders the diagnostic as
//
//	error[Kind]: message
//	  --> file:line:col
func (d Diagnostic) Format(file string) string {
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Kind, d.Message, d.Location(file))
	if d.Hint != "" {
		out += "\n  hint: " + d.Hint
	}
	return out
}
