package runtime

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectBindingError(t *testing.T, err error, kind BindingErrorKind, name string) {
	t.Helper()
	var berr *BindingError
	require.True(t, errors.As(err, &berr), "expected *BindingError, got %T: %v", err, err)
	assert.Equal(t, kind, berr.Kind)
	assert.Equal(t, name, berr.Name)
}

// ---------- Environment ----------

func TestDeclareAndLookup(t *testing.T) {
	env := NewEnvironment(nil)
	v, err := env.Declare("x", Number(1), false)
	require.NoError(t, err)
	assert.Equal(t, Number(1), v)

	got, err := env.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, Number(1), got)
}

func TestDuplicateDeclaration(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Declare("x", Number(1), false)
	require.NoError(t, err)
	_, err = env.Declare("x", Number(2), false)
	expectBindingError(t, err, DuplicateDeclaration, "x")
}

func TestShadowingAcrossScopes(t *testing.T) {
	outer := NewEnvironment(nil)
	_, err := outer.Declare("x", Number(1), true)
	require.NoError(t, err)

	inner := NewEnvironment(outer)
	_, err = inner.Declare("x", String("inner"), false)
	require.NoError(t, err)

	v, _ := inner.Lookup("x")
	assert.Equal(t, String("inner"), v)
	v, _ = outer.Lookup("x")
	assert.Equal(t, Number(1), v)
}

func TestAssignWalksChain(t *testing.T) {
	outer := NewEnvironment(nil)
	_, _ = outer.Declare("x", Number(1), false)
	inner := NewEnvironment(outer)

	_, err := inner.Assign("x", Number(2))
	require.NoError(t, err)

	v, _ := outer.Lookup("x")
	assert.Equal(t, Number(2), v)
	owner, err := inner.Resolve("x")
	require.NoError(t, err)
	assert.Same(t, outer, owner)
}

func TestAssignUnresolved(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Assign("missing", Number(1))
	expectBindingError(t, err, UnresolvedIdentifier, "missing")
}

func TestConstAssignment(t *testing.T) {
	env := NewEnvironment(nil)
	_, _ = env.Declare("c", Number(1), true)
	_, err := NewEnvironment(env).Assign("c", Number(2))
	expectBindingError(t, err, ConstAssignment, "c")

	v, _ := env.Lookup("c")
	assert.Equal(t, Number(1), v, "failed assignment must not change the binding")
}

func TestLookupUnresolved(t *testing.T) {
	_, err := NewEnvironment(NewEnvironment(nil)).Lookup("nope")
	expectBindingError(t, err, UnresolvedIdentifier, "nope")
	assert.Equal(t, "nope is not defined", err.Error())
}

func TestGlobalEnvironmentSeeding(t *testing.T) {
	called := false
	env, err := NewGlobalEnvironment(map[string]NativeFunc{
		"ping": func(args []Value, env *Environment) (Value, error) {
			called = true
			return String("pong"), nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, env.Outer())
	assert.Equal(t, []string{"false", "null", "ping", "true"}, env.Names())

	for _, name := range env.Names() {
		assert.True(t, env.IsConstant(name), "%s should be constant", name)
	}

	v, _ := env.Lookup("true")
	assert.Equal(t, True, v)
	v, _ = env.Lookup("null")
	assert.Equal(t, NullValue, v)

	v, _ = env.Lookup("ping")
	fn, ok := v.(*NativeFunction)
	require.True(t, ok)
	assert.Equal(t, "ping", fn.Name)
	out, err := fn.Call(nil, env)
	require.NoError(t, err)
	assert.Equal(t, String("pong"), out)
	assert.True(t, called)

	_, err = env.Assign("true", False)
	expectBindingError(t, err, ConstAssignment, "true")
}

func TestGlobalEnvironmentsAreIndependent(t *testing.T) {
	a, err := NewGlobalEnvironment(nil)
	require.NoError(t, err)
	b, err := NewGlobalEnvironment(nil)
	require.NoError(t, err)

	_, err = a.Declare("x", Number(1), false)
	require.NoError(t, err)
	_, err = b.Lookup("x")
	expectBindingError(t, err, UnresolvedIdentifier, "x")
}

// ---------- Values ----------

func TestValueTypes(t *testing.T) {
	cases := []struct {
		v    Value
		want ValueType
	}{
		{NullValue, TypeNull},
		{True, TypeBoolean},
		{Number(1), TypeNumber},
		{String("s"), TypeString},
		{NewObject(), TypeObject},
		{&NativeFunction{Name: "n"}, TypeNativeFunction},
		{&Function{Name: "f"}, TypeFunction},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.Type(), "%#v", c.v)
	}
}

func TestToString(t *testing.T) {
	obj := NewObject()
	obj.Set("b", String("x"))
	obj.Set("a", Number(1))
	nested := NewObject()
	nested.Set("o", obj)

	cases := []struct {
		v    Value
		want string
	}{
		{NullValue, "null"},
		{True, "true"},
		{False, "false"},
		{Number(3), "3"},
		{Number(-0.5), "-0.5"},
		{Number(1e21), "1000000000000000000000"},
		{Number(math.NaN()), "NaN"},
		{Number(math.Inf(1)), "Infinity"},
		{Number(math.Inf(-1)), "-Infinity"},
		{Number(math.Copysign(0, -1)), "0"},
		{String("hi"), "hi"},
		{NewObject(), "{}"},
		{obj, `{ a: 1, b: "x" }`},
		{nested, `{ o: { a: 1, b: "x" } }`},
		{&NativeFunction{Name: "print"}, "<native fn print>"},
		{&Function{Name: "f"}, "<fn f>"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToString(c.v))
	}
}

func TestObjectGetMissing(t *testing.T) {
	obj := NewObject()
	assert.Equal(t, NullValue, obj.Get("nope"))
	assert.False(t, obj.Has("nope"))
	obj.Set("nope", Number(0))
	assert.True(t, obj.Has("nope"))
}

func TestToPropertyKey(t *testing.T) {
	k, ok := ToPropertyKey(String("a"))
	assert.True(t, ok)
	assert.Equal(t, "a", k)

	k, ok = ToPropertyKey(Number(2))
	assert.True(t, ok)
	assert.Equal(t, "2", k)

	_, ok = ToPropertyKey(NullValue)
	assert.False(t, ok)
	_, ok = ToPropertyKey(NewObject())
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	obj := NewObject()
	assert.True(t, Equal(NullValue, NullValue))
	assert.True(t, Equal(Number(2), Number(2)))
	assert.False(t, Equal(Number(math.NaN()), Number(math.NaN())))
	assert.False(t, Equal(Number(1), String("1")))
	assert.True(t, Equal(obj, obj))
	assert.False(t, Equal(obj, NewObject()))
}
