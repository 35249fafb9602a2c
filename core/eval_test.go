package mankai

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func testEval(t *testing.T, input string, expected Value) {
	t.Helper()
	in := NewInterpreter()
	val, err := in.EvalString(input)
	if err != nil {
		t.Fatalf("eval %q: %v", input, err)
	}
	if !ValuesEqual(val, expected) {
		t.Fatalf("eval %q: expected %s, got %s", input, expected.String(), val.String())
	}
}

// testEvalError checks that input fails with a RuntimeError whose message
// contains want.
func testEvalError(t *testing.T, input, want string) {
	t.Helper()
	in := NewInterpreter()
	_, err := in.EvalString(input)
	if err == nil {
		t.Fatalf("expected error for %q", input)
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("eval %q: expected *RuntimeError, got %T: %v", input, err, err)
	}
	if !strings.Contains(re.Message, want) {
		t.Fatalf("eval %q: expected error containing %q, got %q", input, want, re.Message)
	}
}

func nums(ns ...float64) Value {
	elems := make([]Value, len(ns))
	for i, n := range ns {
		elems[i] = NumberVal(n)
	}
	return ListVal(elems)
}

// --- Atoms ---

func TestEvalLiterals(t *testing.T) {
	testEval(t, "42", NumberVal(42))
	testEval(t, "3.14", NumberVal(3.14))
	testEval(t, "-7", NumberVal(-7))
	testEval(t, `"hello"`, StringVal("hello"))
	testEval(t, `""`, StringVal(""))
}

func TestEvalOutOfRangeLiteral(t *testing.T) {
	testEval(t, "1e400", NumberVal(math.Inf(1)))
	testEval(t, "-1e400", NumberVal(math.Inf(-1)))
	testEval(t, "(> 1e400 1e308)", BoolVal(true))
}

func TestEvalNonFiniteNumbers(t *testing.T) {
	testEval(t, "(/ 0)", NumberVal(math.Inf(1)))
	testEval(t, "(set! x (- (/ 0) (/ 0))) (== x x)", BoolVal(true))
	testEval(t, "(set! x (- (/ 0) (/ 0))) (not (== x x))", BoolVal(false))
}

func TestEvalConstants(t *testing.T) {
	testEval(t, "true", BoolVal(true))
	testEval(t, "false", BoolVal(false))
	testEval(t, "pi", NumberVal(3.141592653589793))
}

func TestEvalUnboundIdentifier(t *testing.T) {
	testEvalError(t, "x", "unbound identifier 'x'")
}

func TestEvalReservedNamesAreNotValues(t *testing.T) {
	testEvalError(t, "+", "'+' is a native function")
	testEvalError(t, "if!", "'if!' is a special form")
	testEvalError(t, "(list car)", "'car' is a native function")
}

// --- Lists ---

func TestEvalEmptyList(t *testing.T) {
	testEvalError(t, "()", "empty list")
}

func TestEvalNonCallableHead(t *testing.T) {
	testEvalError(t, "(foo 1 2)", "'foo' is not a special form or a native function")
	testEvalError(t, "(1 2)", "head of a form must be an identifier")
	testEvalError(t, `("f" 2)`, "head of a form must be an identifier")
	testEvalError(t, "((list 1) 2)", "head of a form must be an identifier")
}

func TestEvalBoundVariableIsNotCallable(t *testing.T) {
	testEvalError(t, "(set! f 1) (f)", "'f' is not a special form or a native function")
}

func TestEvalNested(t *testing.T) {
	testEval(t, "(+ 1 (* 2 3))", NumberVal(7))
	testEval(t, "(- (/ 8 2) 1)", NumberVal(3))
	testEval(t, "(car (cdr (list 1 2 3)))", NumberVal(2))
	testEval(t, `(string-concat "a" (to-string (+ 1 1)))`, StringVal("a2"))
}

func TestEvalArgumentErrorStopsLaterArguments(t *testing.T) {
	in := NewInterpreter()
	_, err := in.EvalString("(+ 1 (car (list)) (set! x 5))")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "empty list") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := in.Env.Lookup("x"); err == nil {
		t.Fatal("argument after the failing one was evaluated")
	}
}

func TestEvalArgumentsLeftToRight(t *testing.T) {
	testEval(t, "(list (set! x 1) (set! x (+ x 1)) x)", nums(1, 2, 2))
}

func TestEvalProgramContinuesAfterError(t *testing.T) {
	forms, err := ParseAll(`(set! a 1) (car (list)) (set! b (+ a 1))`)
	if err != nil {
		t.Fatal(err)
	}
	in := NewInterpreter()
	var errs []string
	failed := in.EvalProgram(forms, func(form *Sexp, val Value, err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	})
	if failed != 1 || len(errs) != 1 {
		t.Fatalf("expected exactly one failure, got %d (%v)", failed, errs)
	}
	b, err := in.Env.Lookup("b")
	if err != nil {
		t.Fatal(err)
	}
	if !ValuesEqual(b, NumberVal(2)) {
		t.Fatalf("expected b = 2, got %s", b)
	}
}

func TestEvalStringEmpty(t *testing.T) {
	in := NewInterpreter()
	if _, err := in.EvalString("  ; only a comment\n"); err == nil {
		t.Fatal("expected error for empty program")
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	form, err := Parse("(set! x (cons (list 1) 2))")
	if err != nil {
		t.Fatal(err)
	}
	before := form.String()
	in := NewInterpreter()
	for i := 0; i < 2; i++ {
		if _, err := in.Evaluate(form); err != nil {
			t.Fatal(err)
		}
	}
	if form.String() != before {
		t.Fatalf("form changed: %s -> %s", before, form.String())
	}
}

func TestEvalMaxDepth(t *testing.T) {
	in := NewInterpreter()
	in.MaxDepth = 3
	if _, err := in.EvalString("(+ 1 (+ 1 1))"); err != nil {
		t.Fatalf("depth 3 should be allowed: %v", err)
	}
	_, err := in.EvalString("(+ 1 (+ 1 (+ 1 1)))")
	if err == nil || !strings.Contains(err.Error(), "maximum evaluation depth (3) exceeded") {
		t.Fatalf("expected depth error, got %v", err)
	}
	// The counter unwinds after an error.
	if _, err := in.EvalString("(+ 1 (+ 1 1))"); err != nil {
		t.Fatalf("depth counter leaked: %v", err)
	}
}

func TestEvaluateHandBuiltTree(t *testing.T) {
	in := NewInterpreter()
	expr := List(Ident("+"), Atom(TokenNumber, "1"), Atom(TokenNumber, "2.5"))
	val, err := in.Evaluate(expr)
	if err != nil {
		t.Fatal(err)
	}
	if !ValuesEqual(val, NumberVal(3.5)) {
		t.Fatalf("expected 3.5, got %s", val)
	}

	if _, err := in.Evaluate(Atom(TokenNumber, "twelve")); err == nil {
		t.Fatal("expected error for malformed number literal")
	}
}
