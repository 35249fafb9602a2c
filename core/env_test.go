package mankai

import (
	"reflect"
	"testing"
)

func TestEnvironmentDefineLookup(t *testing.T) {
	env := NewEnvironment()
	if _, err := env.Lookup("x"); err == nil {
		t.Fatal("expected unbound identifier error")
	}
	env.Define("x", NumberVal(1))
	env.Define("x", StringVal("two"))
	val, err := env.Lookup("x")
	if err != nil {
		t.Fatal(err)
	}
	if !ValuesEqual(val, StringVal("two")) {
		t.Fatalf("expected last write to win, got %s", val)
	}
}

func TestEnvironmentReservedNamespaces(t *testing.T) {
	env := NewEnvironment()
	for _, name := range []string{"if!", "set!"} {
		if !env.IsSpecialForm(name) || env.IsNativeFunction(name) || env.IsConstant(name) {
			t.Errorf("%s should only be a special form", name)
		}
	}
	for name := range NativeFunctions() {
		if !env.IsNativeFunction(name) || env.IsSpecialForm(name) || env.IsConstant(name) {
			t.Errorf("%s should only be a native function", name)
		}
	}
	for _, name := range []string{"true", "false", "pi"} {
		if !env.IsConstant(name) || env.IsSpecialForm(name) || env.IsNativeFunction(name) {
			t.Errorf("%s should only be a constant", name)
		}
	}
	if env.IsReserved("x") {
		t.Error("x should not be reserved")
	}
}

func TestEnvironmentReservedNames(t *testing.T) {
	env := NewEnvironment()
	names := env.ReservedNames()
	if len(names) != 2+20+3 {
		t.Fatalf("expected 25 reserved names, got %d: %v", len(names), names)
	}
	for _, name := range names {
		if !env.IsReserved(name) {
			t.Errorf("%s listed but not reserved", name)
		}
	}
}

func TestEnvironmentNamesAndBindings(t *testing.T) {
	env := NewEnvironment()
	env.Define("b", nums(1))
	env.Define("a", NumberVal(2))
	if got := env.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected sorted names, got %v", got)
	}

	snapshot := env.Bindings()
	snapshot["b"].List[0] = NumberVal(99)
	b, _ := env.Lookup("b")
	if !ValuesEqual(b, nums(1)) {
		t.Fatalf("Bindings returned shared storage: %s", b)
	}
}

func TestEnvironmentConstants(t *testing.T) {
	env := NewEnvironment()
	if v, ok := env.Constant("true"); !ok || !ValuesEqual(v, BoolVal(true)) {
		t.Fatalf("true constant: %v %v", v, ok)
	}
	if _, ok := env.Constant("x"); ok {
		t.Fatal("x is not a constant")
	}
}
