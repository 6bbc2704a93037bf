package runtime

import (
	"fmt"

	"github.com/example/fnscript/token"
)

type BindingErrorKind int

const (
	DuplicateDeclaration BindingErrorKind = iota
	UnresolvedIdentifier
	ConstAssignment
)

func (k BindingErrorKind) String() string {
	switch k {
	case DuplicateDeclaration:
		return "DuplicateDeclaration"
	case UnresolvedIdentifier:
		return "UnresolvedIdentifier"
	case ConstAssignment:
		return "ConstAssignment"
	default:
		return "UnknownBindingError"
	}
}

// BindingError is returned by Environment operations. Pos is zero unless
// the evaluator filled in the location of the offending node.
type BindingError struct {
	Kind BindingErrorKind
	Name string
	Pos  token.Position
}

func (e *BindingError) Error() string {
	switch e.Kind {
	case DuplicateDeclaration:
		return fmt.Sprintf("cannot redeclare %s: already declared in this scope", e.Name)
	case UnresolvedIdentifier:
		return fmt.Sprintf("%s is not defined", e.Name)
	case ConstAssignment:
		return fmt.Sprintf("cannot assign to constant %s", e.Name)
	default:
		return "binding error: " + e.Name
	}
}
