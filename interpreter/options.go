package interpreter

import (
	"io"

	"github.com/inconshreveable/log15"

	"github.com/example/fnscript/runtime"
)

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithNatives adds native bindings to the global environment. A name that
// matches a prelude native replaces it.
func WithNatives(natives map[string]runtime.NativeFunc) Option {
	return func(interp *Interpreter) {
		for name, fn := range natives {
			interp.natives[name] = fn
		}
	}
}

// WithOutput sets where print writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(interp *Interpreter) {
		interp.output = w
	}
}

// WithLimits sets the step and call-depth limits.
func WithLimits(limits Limits) Option {
	return func(interp *Interpreter) {
		interp.limits = limits
	}
}

// WithStrictArity makes calls to user functions fail with ArityMismatch when
// the argument count differs from the parameter count.
func WithStrictArity() Option {
	return func(interp *Interpreter) {
		interp.strictArity = true
	}
}

// WithParseCache sets the parse cache. Passing nil disables caching.
func WithParseCache(cache *ParseCache) Option {
	return func(interp *Interpreter) {
		interp.cache = cache
		interp.cacheSet = true
	}
}

// WithLogger sets the parent logger. The interpreter adds its own id. A nil
// logger keeps the default, which discards everything.
func WithLogger(logger log15.Logger) Option {
	return func(interp *Interpreter) {
		if logger == nil {
			return
		}
		interp.log = logger.New("module", "interpreter", "id", interp.id)
	}
}
