package runtime

import (
	"github.com/example/fnscript/ast"
)

// ValueType tags the variant of a runtime value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeNativeFunction
	TypeFunction
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeNativeFunction:
		return "native function"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value is a runtime value. The set of implementations is closed: Null,
// Boolean, Number, String, *Object, *NativeFunction and *Function.
type Value interface {
	Type() ValueType
	String() string
	value()
}

type Null struct{}

type Boolean bool

type Number float64

type String string

// Object maps property names to values. Property order is not significant.
type Object struct {
	Properties map[string]Value
}

// NativeFunc is the host callback behind a NativeFunction. env is the
// environment of the call site.
type NativeFunc func(args []Value, env *Environment) (Value, error)

type NativeFunction struct {
	Name string
	Call NativeFunc
}

// Function is a user-defined function. Env is the environment the
// declaration was evaluated in; it is shared, so later assignments to
// captured names are visible to the body.
type Function struct {
	Name       string
	Parameters []string
	Env        *Environment
	Body       []ast.Statement
}

var (
	NullValue = Null{}
	True      = Boolean(true)
	False     = Boolean(false)
)

func NewObject() *Object {
	return &Object{Properties: make(map[string]Value)}
}

// Get returns the named property, or NullValue when it is absent.
func (o *Object) Get(name string) Value {
	if v, ok := o.Properties[name]; ok {
		return v
	}
	return NullValue
}

func (o *Object) Set(name string, v Value) {
	o.Properties[name] = v
}

func (o *Object) Has(name string) bool {
	_, ok := o.Properties[name]
	return ok
}

func (Null) Type() ValueType            { return TypeNull }
func (Boolean) Type() ValueType         { return TypeBoolean }
func (Number) Type() ValueType          { return TypeNumber }
func (String) Type() ValueType          { return TypeString }
func (*Object) Type() ValueType         { return TypeObject }
func (*NativeFunction) Type() ValueType { return TypeNativeFunction }
func (*Function) Type() ValueType       { return TypeFunction }

func (Null) value()            {}
func (Boolean) value()         {}
func (Number) value()          {}
func (String) value()          {}
func (*Object) value()         {}
func (*NativeFunction) value() {}
func (*Function) value()       {}

func (Null) String() string      { return "null" }
func (b Boolean) String() string { return ToString(b) }
func (n Number) String() string  { return ToString(n) }
func (s String) String() string  { return string(s) }
func (o *Object) String() string { return ToString(o) }

func (f *NativeFunction) String() string { return "<native fn " + f.Name + ">" }
func (f *Function) String() string       { return "<fn " + f.Name + ">" }
