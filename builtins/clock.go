package builtins

import (
	"time"

	"github.com/example/fnscript/runtime"
)

// newClock returns milliseconds elapsed since the prelude was built. Using
// the start time's monotonic reading keeps the result non-decreasing even if
// the wall clock is adjusted.
func newClock(now func() time.Time) runtime.NativeFunc {
	start := now()
	return func(args []runtime.Value, env *runtime.Environment) (runtime.Value, error) {
		elapsed := now().Sub(start)
		return runtime.Number(float64(elapsed) / float64(time.Millisecond)), nil
	}
}
