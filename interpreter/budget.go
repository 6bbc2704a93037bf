package interpreter

import (
	"context"
	"fmt"

	"github.com/example/fnscript/token"
)

// Limits bounds a single evaluation. Zero disables the steps and depth
// checks. Nesting is always bounded: zero, or anything above NestingCeiling,
// means NestingCeiling.
type Limits struct {
	MaxSteps   int64 // evaluated nodes
	MaxDepth   int   // nested user-function calls
	MaxNesting int   // nodes under evaluation at once
}

// NestingCeiling keeps evaluation well inside the goroutine stack limit.
const NestingCeiling = 100000

// DefaultLimits leaves steps unbounded and caps call depth well below what
// exhausts a goroutine stack.
var DefaultLimits = Limits{MaxDepth: 10000}

// budget tracks consumption against Limits for the evaluation in progress.
type budget struct {
	limits Limits
	ctx    context.Context
	steps   int64
	depth   int
	nesting int
}

func (b *budget) reset(ctx context.Context, limits Limits) {
	if limits.MaxNesting <= 0 || limits.MaxNesting > NestingCeiling {
		limits.MaxNesting = NestingCeiling
	}
	b.limits = limits
	b.ctx = ctx
	b.steps = 0
	b.depth = 0
	b.nesting = 0
}

// step is called on every evaluation entry.
func (b *budget) step(pos token.Position) error {
	b.steps++
	if b.limits.MaxSteps > 0 && b.steps > b.limits.MaxSteps {
		return &EvalError{
			Kind:    StepBudgetExceeded,
			Message: fmt.Sprintf("step budget exceeded (max %d)", b.limits.MaxSteps),
			Pos:     pos,
		}
	}
	if err := b.ctx.Err(); err != nil {
		return &EvalError{
			Kind:    Canceled,
			Message: fmt.Sprintf("evaluation canceled: %v", err),
			Pos:     pos,
			Err:     err,
		}
	}
	return nil
}

func (b *budget) enter(name string, pos token.Position) error {
	if b.limits.MaxDepth > 0 && b.depth >= b.limits.MaxDepth {
		return &EvalError{
			Kind:    CallDepthExceeded,
			Message: fmt.Sprintf("call depth exceeded calling %s (max %d)", name, b.limits.MaxDepth),
			Pos:     pos,
		}
	}
	b.depth++
	return nil
}

func (b *budget) leave() {
	b.depth--
}

// nest is called on entry to every node evaluation and paired with unnest.
func (b *budget) nest(pos token.Position) error {
	if b.nesting >= b.limits.MaxNesting {
		return &EvalError{
			Kind:    NestingExceeded,
			Message: fmt.Sprintf("expression nesting exceeded (max %d)", b.limits.MaxNesting),
			Pos:     pos,
		}
	}
	b.nesting++
	return nil
}

func (b *budget) unnest() {
	b.nesting--
}
