package builtins

import (
	"io"
	"os"
	"time"

	"github.com/example/fnscript/runtime"
)

// Config parameterizes the prelude. Zero values fall back to os.Stdout and
// time.Now.
type Config struct {
	Output io.Writer
	Now    func() time.Time
}

// Prelude returns the native bindings seeded into every global environment.
// Each call builds fresh closures, so instances never share state.
func Prelude(cfg Config) map[string]runtime.NativeFunc {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return map[string]runtime.NativeFunc{
		"print": newPrint(cfg.Output),
		"time":  newClock(cfg.Now),
	}
}
