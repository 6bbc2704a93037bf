package runtime

import "sort"

// Environment represents a lexical scope.
type Environment struct {
	store map[string]*Binding
	outer *Environment
}

type Binding struct {
	Value    Value
	Constant bool
}

func NewEnvironment(outer *Environment) *Environment {
	return &Environment{
		store: make(map[string]*Binding),
		outer: outer,
	}
}

// NewGlobalEnvironment builds the root scope of an interpreter instance:
// constant bindings for true, false and null, followed by the given natives
// in name order.
func NewGlobalEnvironment(natives map[string]NativeFunc) (*Environment, error) {
	env := NewEnvironment(nil)
	seed := []struct {
		name string
		val  Value
	}{
		{"true", True},
		{"false", False},
		{"null", NullValue},
	}
	for _, s := range seed {
		if _, err := env.Declare(s.name, s.val, true); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(natives))
	for name := range natives {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn := &NativeFunction{Name: name, Call: natives[name]}
		if _, err := env.Declare(name, fn, true); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// Declare binds name in this scope. Shadowing an outer binding is allowed,
// redeclaring in the same scope is not.
func (e *Environment) Declare(name string, value Value, constant bool) (Value, error) {
	if _, exists := e.store[name]; exists {
		return nil, &BindingError{Kind: DuplicateDeclaration, Name: name}
	}
	e.store[name] = &Binding{Value: value, Constant: constant}
	return value, nil
}

// Assign overwrites name in the nearest scope that declares it.
func (e *Environment) Assign(name string, value Value) (Value, error) {
	owner, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}
	binding := owner.store[name]
	if binding.Constant {
		return nil, &BindingError{Kind: ConstAssignment, Name: name}
	}
	binding.Value = value
	return value, nil
}

// Lookup retrieves a variable value, walking up the scope chain.
func (e *Environment) Lookup(name string) (Value, error) {
	owner, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}
	return owner.store[name].Value, nil
}

// Resolve returns the nearest scope that declares name.
func (e *Environment) Resolve(name string) (*Environment, error) {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			return env, nil
		}
	}
	return nil, &BindingError{Kind: UnresolvedIdentifier, Name: name}
}

// IsConstant reports whether name resolves to a constant binding.
func (e *Environment) IsConstant(name string) bool {
	owner, err := e.Resolve(name)
	if err != nil {
		return false
	}
	return owner.store[name].Constant
}

// Names lists the names declared directly in this scope, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Outer returns the parent environment.
func (e *Environment) Outer() *Environment {
	return e.outer
}
