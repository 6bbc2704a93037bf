package interpreter

import (
	"fmt"

	"github.com/go-stack/stack"

	"github.com/example/fnscript/token"
)

type ErrorKind int

const (
	InvalidAssignmentTarget ErrorKind = iota
	NotCallable
	UnsupportedNodeKind
	InvalidMemberAccess
	ArityMismatch
	NativeCallFailed
	StepBudgetExceeded
	CallDepthExceeded
	NestingExceeded
	Canceled
)

var kindNames = map[ErrorKind]string{
	InvalidAssignmentTarget: "InvalidAssignmentTarget",
	NotCallable:             "NotCallable",
	UnsupportedNodeKind:     "UnsupportedNodeKind",
	InvalidMemberAccess:     "InvalidMemberAccess",
	ArityMismatch:           "ArityMismatch",
	NativeCallFailed:        "NativeCallFailed",
	StepBudgetExceeded:      "StepBudgetExceeded",
	CallDepthExceeded:       "CallDepthExceeded",
	NestingExceeded:         "NestingExceeded",
	Canceled:                "Canceled",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// EvalError is a failure raised while evaluating a node. Err holds the
// underlying cause for NativeCallFailed and Canceled.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Pos     token.Position
	Err     error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("eval error at %s: %s", e.Pos, e.Message)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// PanicError records a panic raised inside a native function together with
// the goroutine stack at the point of recovery.
type PanicError struct {
	Value interface{}
	Stack stack.CallStack
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
