package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-stack/stack"
	"github.com/google/uuid"
	"github.com/inconshreveable/log15"

	"github.com/example/fnscript/ast"
	"github.com/example/fnscript/builtins"
	"github.com/example/fnscript/parser"
	"github.com/example/fnscript/runtime"
	"github.com/example/fnscript/token"
)

// Interpreter evaluates an AST using tree-walking. An Interpreter is not
// safe for concurrent use; independent instances share no state.
type Interpreter struct {
	id          string
	global      *runtime.Environment
	natives     map[string]runtime.NativeFunc
	output      io.Writer
	limits      Limits
	strictArity bool
	cache       *ParseCache
	cacheSet    bool
	log         log15.Logger
	budget      budget
	entries     int // active evaluations, more than one when a native re-enters
}

func New(opts ...Option) (*Interpreter, error) {
	interp := &Interpreter{
		id:      uuid.New().String(),
		natives: make(map[string]runtime.NativeFunc),
		limits:  DefaultLimits,
	}
	interp.log = log15.New("module", "interpreter", "id", interp.id)
	interp.log.SetHandler(log15.DiscardHandler())

	for _, opt := range opts {
		opt(interp)
	}

	natives := builtins.Prelude(builtins.Config{Output: interp.output})
	for name, fn := range interp.natives {
		natives[name] = fn
	}
	global, err := runtime.NewGlobalEnvironment(natives)
	if err != nil {
		return nil, err
	}
	interp.global = global

	if !interp.cacheSet {
		if interp.cache, err = NewParseCache(DefaultCacheSize); err != nil {
			return nil, err
		}
	}
	interp.budget.reset(context.Background(), interp.limits)
	return interp, nil
}

// ID identifies the instance in log records.
func (interp *Interpreter) ID() string {
	return interp.id
}

// Global returns the root environment of this instance.
func (interp *Interpreter) Global() *runtime.Environment {
	return interp.global
}

// Steps returns the number of nodes visited by the last evaluation,
// including any evaluation a native started from inside it.
func (interp *Interpreter) Steps() int64 {
	return interp.budget.steps
}

// Parse parses source, consulting the parse cache when one is configured.
func (interp *Interpreter) Parse(source string) (*ast.Program, error) {
	if interp.cache == nil {
		return parser.Parse(source)
	}
	program, hit, err := interp.cache.Parse(source)
	if hit {
		interp.log.Debug("Parse cache hit", "bytes", len(source))
	}
	return program, err
}

// Eval parses and evaluates source in the global environment.
func (interp *Interpreter) Eval(source string) (runtime.Value, error) {
	return interp.EvalContext(context.Background(), source)
}

func (interp *Interpreter) EvalContext(ctx context.Context, source string) (runtime.Value, error) {
	program, err := interp.Parse(source)
	if err != nil {
		return nil, err
	}
	return interp.EvaluateContext(ctx, program, interp.global)
}

// Evaluate evaluates node in env. A nil env means the global environment.
func (interp *Interpreter) Evaluate(node ast.Node, env *runtime.Environment) (runtime.Value, error) {
	return interp.EvaluateContext(context.Background(), node, env)
}

// EvaluateContext is Evaluate with cancellation. ctx is checked at every
// evaluation step, alongside the configured Limits. When called from a
// native during another evaluation, ctx is ignored and the outer budget
// keeps counting.
func (interp *Interpreter) EvaluateContext(ctx context.Context, node ast.Node, env *runtime.Environment) (runtime.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if env == nil {
		env = interp.global
	}
	if interp.entries == 0 {
		interp.budget.reset(ctx, interp.limits)
	}
	interp.entries++
	defer func() { interp.entries-- }()

	start := time.Now()
	interp.log.Debug("Evaluating", "node", ast.TypeName(node))
	val, err := interp.eval(node, env)
	if err != nil {
		interp.log.Debug("Evaluation failed", "steps", interp.budget.steps, "elapsed", time.Since(start), "err", err)
		return nil, err
	}
	interp.log.Debug("Evaluation finished", "steps", interp.budget.steps, "elapsed", time.Since(start), "type", val.Type())
	return val, nil
}

// eval dispatches on the node kind.
func (interp *Interpreter) eval(node ast.Node, env *runtime.Environment) (runtime.Value, error) {
	if node == nil {
		return nil, &EvalError{Kind: UnsupportedNodeKind, Message: "cannot evaluate a missing node"}
	}
	if err := interp.budget.step(node.Pos()); err != nil {
		return nil, err
	}
	if err := interp.budget.nest(node.Pos()); err != nil {
		return nil, err
	}
	defer interp.budget.unnest()

	switch n := node.(type) {
	case *ast.Program:
		return interp.evalStatements(n.Statements, env)
	case *ast.VariableDeclaration:
		return interp.evalVarDecl(n, env)
	case *ast.FunctionDeclaration:
		return interp.evalFunctionDecl(n, env)
	case *ast.NumberLiteral:
		return runtime.Number(n.Value), nil
	case *ast.StringLiteral:
		return runtime.String(n.Value), nil
	case *ast.Identifier:
		return interp.evalIdentifier(n, env)
	case *ast.BinaryExpression:
		return interp.evalBinary(n, env)
	case *ast.AssignmentExpression:
		return interp.evalAssignment(n, env)
	case *ast.ObjectLiteral:
		return interp.evalObjectLiteral(n, env)
	case *ast.CallExpression:
		return interp.evalCall(n, env)
	case *ast.MemberExpression:
		return interp.evalMember(n, env)
	default:
		return nil, &EvalError{
			Kind:    UnsupportedNodeKind,
			Message: fmt.Sprintf("%s cannot be evaluated on its own", ast.TypeName(node)),
			Pos:     node.Pos(),
		}
	}
}

// evalStatements runs stmts in order and yields the last value, or null for
// an empty sequence. The first error stops the sequence.
func (interp *Interpreter) evalStatements(stmts []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.NullValue
	for _, stmt := range stmts {
		val, err := interp.eval(stmt, env)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

// ---------- Statements ----------

func (interp *Interpreter) evalVarDecl(s *ast.VariableDeclaration, env *runtime.Environment) (runtime.Value, error) {
	var val runtime.Value = runtime.NullValue
	if s.Value != nil {
		v, err := interp.eval(s.Value, env)
		if err != nil {
			return nil, err
		}
		val = v
	}
	v, err := env.Declare(s.Name, val, s.Constant)
	return v, locate(err, s.Pos())
}

// Functions are bound as constants in the scope they are declared in.
func (interp *Interpreter) evalFunctionDecl(s *ast.FunctionDeclaration, env *runtime.Environment) (runtime.Value, error) {
	fn := &runtime.Function{
		Name:       s.Name,
		Parameters: s.Parameters,
		Env:        env,
		Body:       s.Body,
	}
	v, err := env.Declare(s.Name, fn, true)
	return v, locate(err, s.Pos())
}

// ---------- Expressions ----------

func (interp *Interpreter) evalIdentifier(e *ast.Identifier, env *runtime.Environment) (runtime.Value, error) {
	v, err := env.Lookup(e.Name)
	return v, locate(err, e.Pos())
}

// evalBinary evaluates left before right. Arithmetic on anything but two
// numbers yields null.
func (interp *Interpreter) evalBinary(e *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := interp.eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := interp.eval(e.Right, env)
	if err != nil {
		return nil, err
	}

	l, lok := left.(runtime.Number)
	r, rok := right.(runtime.Number)
	if !lok || !rok {
		return runtime.NullValue, nil
	}
	return applyArithmetic(e.Operator, float64(l), float64(r)), nil
}

func applyArithmetic(op string, l, r float64) runtime.Value {
	switch op {
	case "+":
		return runtime.Number(l + r)
	case "-":
		return runtime.Number(l - r)
	case "*":
		return runtime.Number(l * r)
	case "/":
		return runtime.Number(l / r)
	case "%":
		return runtime.Number(math.Mod(l, r))
	default:
		return runtime.NullValue
	}
}

func (interp *Interpreter) evalAssignment(e *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := interp.eval(e.Value, env)
	if err != nil {
		return nil, err
	}
	target, ok := e.Assignee.(*ast.Identifier)
	if !ok {
		return nil, &EvalError{
			Kind:    InvalidAssignmentTarget,
			Message: fmt.Sprintf("cannot assign to %s (%s)", e.Assignee, ast.TypeName(e.Assignee)),
			Pos:     e.Assignee.Pos(),
		}
	}
	v, err := env.Assign(target.Name, val)
	return v, locate(err, target.Pos())
}

// Shorthand properties look up the same-named variable when the literal is
// evaluated, not when it is parsed.
func (interp *Interpreter) evalObjectLiteral(e *ast.ObjectLiteral, env *runtime.Environment) (runtime.Value, error) {
	obj := runtime.NewObject()
	for _, prop := range e.Properties {
		if prop.Value == nil {
			v, err := env.Lookup(prop.Key)
			if err != nil {
				return nil, locate(err, prop.Pos())
			}
			obj.Set(prop.Key, v)
			continue
		}
		v, err := interp.eval(prop.Value, env)
		if err != nil {
			return nil, err
		}
		obj.Set(prop.Key, v)
	}
	return obj, nil
}

func (interp *Interpreter) evalMember(e *ast.MemberExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := interp.eval(e.Object, env)
	if err != nil {
		return nil, err
	}

	var key string
	if e.Computed {
		kv, err := interp.eval(e.Property, env)
		if err != nil {
			return nil, err
		}
		var ok bool
		if key, ok = runtime.ToPropertyKey(kv); !ok {
			return nil, &EvalError{
				Kind:    InvalidMemberAccess,
				Message: fmt.Sprintf("property key must be a string or number, got %s", kv.Type()),
				Pos:     e.Property.Pos(),
			}
		}
	} else {
		ident, ok := e.Property.(*ast.Identifier)
		if !ok {
			return nil, &EvalError{
				Kind:    UnsupportedNodeKind,
				Message: fmt.Sprintf("member property must be an identifier, got %s", ast.TypeName(e.Property)),
				Pos:     e.Property.Pos(),
			}
		}
		key = ident.Name
	}

	obj, ok := target.(*runtime.Object)
	if !ok {
		return nil, &EvalError{
			Kind:    InvalidMemberAccess,
			Message: fmt.Sprintf("cannot read property %s of %s", key, target.Type()),
			Pos:     e.Pos(),
		}
	}
	return obj.Get(key), nil
}

// evalCall evaluates the arguments left to right and only then the caller.
func (interp *Interpreter) evalCall(e *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	args := make([]runtime.Value, 0, len(e.Arguments))
	for _, a := range e.Arguments {
		v, err := interp.eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	callee, err := interp.eval(e.Caller, env)
	if err != nil {
		return nil, err
	}

	switch fn := callee.(type) {
	case *runtime.NativeFunction:
		return interp.callNative(fn, args, env, e.Pos())
	case *runtime.Function:
		return interp.callFunction(fn, args, e.Pos())
	default:
		return nil, &EvalError{
			Kind:    NotCallable,
			Message: fmt.Sprintf("%s is not callable (got %s)", e.Caller, callee.Type()),
			Pos:     e.Pos(),
		}
	}
}

func (interp *Interpreter) callNative(fn *runtime.NativeFunction, args []runtime.Value, env *runtime.Environment, pos token.Position) (result runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			trace := stack.Trace().TrimRuntime()
			interp.log.Error("Native function panicked", "name", fn.Name, "panic", r, "stack", fmt.Sprintf("%+v", trace))
			result = nil
			err = &EvalError{
				Kind:    NativeCallFailed,
				Message: fmt.Sprintf("native %s panicked: %v", fn.Name, r),
				Pos:     pos,
				Err:     &PanicError{Value: r, Stack: trace},
			}
		}
	}()

	val, err := fn.Call(args, env)
	if err != nil {
		return nil, &EvalError{
			Kind:    NativeCallFailed,
			Message: fmt.Sprintf("native %s failed: %v", fn.Name, err),
			Pos:     pos,
			Err:     err,
		}
	}
	if val == nil {
		val = runtime.NullValue
	}
	return val, nil
}

// callFunction runs the body in a fresh scope whose parent is the
// function's declaration environment. Missing arguments are null and extra
// ones are dropped unless strict arity is on.
func (interp *Interpreter) callFunction(fn *runtime.Function, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	if interp.strictArity && len(args) != len(fn.Parameters) {
		return nil, &EvalError{
			Kind:    ArityMismatch,
			Message: fmt.Sprintf("%s expects %d argument(s), got %d", fn.Name, len(fn.Parameters), len(args)),
			Pos:     pos,
		}
	}
	if err := interp.budget.enter(fn.Name, pos); err != nil {
		return nil, err
	}
	defer interp.budget.leave()

	scope := runtime.NewEnvironment(fn.Env)
	for i, name := range fn.Parameters {
		var arg runtime.Value = runtime.NullValue
		if i < len(args) {
			arg = args[i]
		}
		if _, err := scope.Declare(name, arg, false); err != nil {
			return nil, locate(err, pos)
		}
	}
	return interp.evalStatements(fn.Body, scope)
}

// locate stamps pos on binding errors that do not carry one yet.
func locate(err error, pos token.Position) error {
	var berr *runtime.BindingError
	if errors.As(err, &berr) && berr.Pos == (token.Position{}) {
		berr.Pos = pos
	}
	return err
}
