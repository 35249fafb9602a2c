package mankai

import "testing"

// --- if! ---

func TestIfSelectsBranch(t *testing.T) {
	testEval(t, `(if! true "yes" "no")`, StringVal("yes"))
	testEval(t, `(if! false "yes" "no")`, StringVal("no"))
	testEval(t, `(if! (> 2 1) (+ 1 1) (car (list)))`, NumberVal(2))
}

func TestIfNeverEvaluatesOtherBranch(t *testing.T) {
	// The untaken branch would fail or bind a variable if evaluated.
	testEval(t, `(if! true 1 (car (list)))`, NumberVal(1))
	testEval(t, `(if! false (()) 2)`, NumberVal(2))
	testEval(t, `(if! true 1 (undefined-thing 1 2)) `, NumberVal(1))

	in := NewInterpreter()
	if _, err := in.EvalString(`(if! false (set! x 1) (set! y 2))`); err != nil {
		t.Fatal(err)
	}
	if _, err := in.Env.Lookup("x"); err == nil {
		t.Fatal("then-branch was evaluated")
	}
	if _, err := in.Env.Lookup("y"); err != nil {
		t.Fatal("else-branch was not evaluated")
	}
}

func TestIfConditionMustBeBool(t *testing.T) {
	testEvalError(t, `(if! 1 "yes" "no")`, "1st argument to 'if!' must evaluate to a boolean!")
	testEvalError(t, `(if! (list) "yes" "no")`, "must evaluate to a boolean")

	in := NewInterpreter()
	if _, err := in.EvalString(`(if! "x" (set! a 1) (set! b 2))`); err == nil {
		t.Fatal("expected error")
	}
	if len(in.Env.Names()) != 0 {
		t.Fatalf("a branch was evaluated after a non-boolean condition: %v", in.Env.Names())
	}
}

func TestIfConditionErrorPropagates(t *testing.T) {
	testEvalError(t, `(if! (car (list)) 1 2)`, "can't apply 'car' to the empty list!")
}

func TestIfArity(t *testing.T) {
	testEvalError(t, `(if! true 1)`, "'if!' requires exactly three arguments!")
	testEvalError(t, `(if! true 1 2 3)`, "exactly three")
	testEvalError(t, `(if!)`, "exactly three")
}

// --- set! ---

func TestSetBindsAndReturnsValue(t *testing.T) {
	testEval(t, `(set! x 5)`, NumberVal(5))
	testEval(t, `(set! x 5) x`, NumberVal(5))
	testEval(t, `(set! x 5) (set! x 6) x`, NumberVal(6))
	testEval(t, `(+ (set! x 2) x)`, NumberVal(4))
}

func TestSetResultIsCopy(t *testing.T) {
	in := NewInterpreter()
	val, err := in.EvalString(`(set! xs (list 1 2))`)
	if err != nil {
		t.Fatal(err)
	}
	val.List[0] = NumberVal(99)
	bound, err := in.Env.Lookup("xs")
	if err != nil {
		t.Fatal(err)
	}
	if !ValuesEqual(bound, nums(1, 2)) {
		t.Fatalf("binding changed through the returned value: %s", bound)
	}
}

func TestSetReservedNames(t *testing.T) {
	testEvalError(t, `(set! + 1)`, "can't assign to '+' because the name is reserved for a native function!")
	testEvalError(t, `(set! if! 1)`, "can't assign to 'if!' because the name is reserved for a special form!")
	testEvalError(t, `(set! true 1)`, "can't assign to 'true' because the name is reserved for a constant!")
	testEvalError(t, `(set! pi 3)`, "reserved for a constant")
}

func TestSetTargetMustBeIdentifier(t *testing.T) {
	testEvalError(t, `(set! (x) 1)`, "expected identifier as 1st argument to 'set!'")
	testEvalError(t, `(set! 3 1)`, "'3' is not an identifier!")
	testEvalError(t, `(set! "x" 1)`, "'x' is not an identifier!")
}

func TestSetChecksTargetBeforeEvaluatingValue(t *testing.T) {
	in := NewInterpreter()
	if _, err := in.EvalString(`(set! car (set! y 1))`); err == nil {
		t.Fatal("expected error")
	}
	if _, err := in.Env.Lookup("y"); err == nil {
		t.Fatal("value expression was evaluated for a reserved target")
	}
}

func TestSetValueErrorLeavesBindingUntouched(t *testing.T) {
	in := NewInterpreter()
	if _, err := in.EvalString(`(set! x 1)`); err != nil {
		t.Fatal(err)
	}
	if _, err := in.EvalString(`(set! x (/ 1 0 0))`); err == nil {
		t.Fatal("expected error")
	}
	x, err := in.Env.Lookup("x")
	if err != nil {
		t.Fatal(err)
	}
	if !ValuesEqual(x, NumberVal(1)) {
		t.Fatalf("expected x = 1, got %s", x)
	}
}

func TestSetArity(t *testing.T) {
	testEvalError(t, `(set! x)`, "'set!' requires exactly two arguments!")
	testEvalError(t, `(set! x 1 2)`, "exactly two")
}

func TestSetOnDefine(t *testing.T) {
	in := NewInterpreter()
	var got []string
	in.OnDefine = func(name string, val Value) {
		got = append(got, name+"="+val.String())
	}
	if _, err := in.EvalString(`(set! a 1) (set! b (list a))`); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "a=1" || got[1] != "b=(list 1)" {
		t.Fatalf("unexpected define notifications: %v", got)
	}
}
