package mankai

import (
	"math"
	"sort"
)

// specialFormNames are resolved structurally by the evaluator; see evalList.
var specialFormNames = map[string]bool{
	"if!":  true,
	"set!": true,
}

// Environment is the single flat binding store of an interpreter. It also
// answers membership questions for the reserved namespaces (special forms,
// native functions, constants), which never overlap the mutable bindings.
//
// An Environment is not safe for concurrent use.
type Environment struct {
	bindings  map[string]Value
	natives   map[string]Native
	constants map[string]Value
}

func NewEnvironment() *Environment {
	return &Environment{
		bindings: make(map[string]Value),
		natives:  NativeFunctions(),
		constants: map[string]Value{
			"true":  BoolVal(true),
			"false": BoolVal(false),
			"pi":    NumberVal(math.Pi),
		},
	}
}

// Lookup returns the value bound to name.
func (e *Environment) Lookup(name string) (Value, error) {
	val, ok := e.bindings[name]
	if !ok {
		return Value{}, runtimeErrorf("unbound identifier '%s'!", name)
	}
	return val, nil
}

// Define inserts or overwrites the binding for name. Callers reject
// reserved names before calling it.
func (e *Environment) Define(name string, val Value) {
	e.bindings[name] = val
}

func (e *Environment) IsSpecialForm(name string) bool {
	return specialFormNames[name]
}

func (e *Environment) IsNativeFunction(name string) bool {
	_, ok := e.natives[name]
	return ok
}

func (e *Environment) IsConstant(name string) bool {
	_, ok := e.constants[name]
	return ok
}

// IsReserved reports whether name belongs to any reserved namespace.
func (e *Environment) IsReserved(name string) bool {
	return e.IsSpecialForm(name) || e.IsNativeFunction(name) || e.IsConstant(name)
}

func (e *Environment) Constant(name string) (Value, bool) {
	val, ok := e.constants[name]
	return val, ok
}

func (e *Environment) Native(name string) (Native, bool) {
	fn, ok := e.natives[name]
	return fn, ok
}

// ReservedNames returns every special form, native function and constant
// name in sorted order.
func (e *Environment) ReservedNames() []string {
	names := make([]string, 0, len(specialFormNames)+len(e.natives)+len(e.constants))
	for name := range specialFormNames {
		names = append(names, name)
	}
	for name := range e.natives {
		names = append(names, name)
	}
	for name := range e.constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names returns the mutable binding names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bindings returns a deep copy of the mutable bindings.
func (e *Environment) Bindings() map[string]Value {
	m := make(map[string]Value, len(e.bindings))
	for k, v := range e.bindings {
		m[k] = v.Copy()
	}
	return m
}
