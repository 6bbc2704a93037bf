package builtins

import (
	"fmt"
	"io"

	"github.com/example/fnscript/runtime"
)

// newPrint writes each argument on its own line and returns null. A write
// failure is reported to the caller as the native's error.
func newPrint(w io.Writer) runtime.NativeFunc {
	return func(args []runtime.Value, env *runtime.Environment) (runtime.Value, error) {
		for _, a := range args {
			if _, err := fmt.Fprintln(w, runtime.ToString(a)); err != nil {
				return nil, fmt.Errorf("print: %w", err)
			}
		}
		return runtime.NullValue, nil
	}
}
