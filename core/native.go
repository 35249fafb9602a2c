package mankai

import "strings"

// Native is a builtin operation called with eagerly evaluated arguments.
// Natives are pure: they never touch the environment.
type Native func(args []Value) (Value, error)

// NativeFunctions returns the native function catalog.
func NativeFunctions() map[string]Native {
	return map[string]Native{
		"+":             nativeAdd,
		"-":             nativeSub,
		"*":             nativeMul,
		"/":             nativeDiv,
		"==":            nativeEq,
		">":             nativeGt,
		"<":             nativeLt,
		"and":           nativeAnd,
		"or":            nativeOr,
		"not":           nativeNot,
		"car":           nativeCar,
		"cdr":           nativeCdr,
		"cons":          nativeCons,
		"list":          nativeList,
		"boolean?":      kindPredicate("boolean?", ValBool),
		"list?":         kindPredicate("list?", ValList),
		"number?":       kindPredicate("number?", ValNumber),
		"string?":       kindPredicate("string?", ValString),
		"string-concat": nativeStringConcat,
		"to-string":     nativeToString,
	}
}

// --- Arity and type helpers ---

func atLeast(name string, args []Value, n int) error {
	if len(args) >= n {
		return nil
	}
	if n == 1 {
		return runtimeErrorf("'%s' requires at least one argument!", name)
	}
	return runtimeErrorf("'%s' requires at least %s arguments!", name, countWord(n))
}

func exactly(name string, args []Value, n int) error {
	if len(args) == n {
		return nil
	}
	return runtimeErrorf("'%s' requires exactly %s %s!", name, countWord(n), plural("argument", n))
}

func countWord(n int) string {
	switch n {
	case 1:
		return "one"
	case 2:
		return "two"
	case 3:
		return "three"
	}
	return ordinal(n)
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// numberArg returns the float at args[i], reporting its 1-based position on mismatch.
func numberArg(name string, args []Value, i int) (float64, error) {
	if args[i].Kind != ValNumber {
		return 0, runtimeErrorf("%s argument to '%s' must be a number!", ordinal(i+1), name)
	}
	return args[i].Number, nil
}

func boolArg(name string, args []Value, i int) (bool, error) {
	if args[i].Kind != ValBool {
		return false, runtimeErrorf("%s argument to '%s' is not a boolean!", ordinal(i+1), name)
	}
	return args[i].Bool, nil
}

func listArg(name string, args []Value, i int) ([]Value, error) {
	if args[i].Kind != ValList {
		return nil, runtimeErrorf("%s argument to '%s' must be a list!", ordinal(i+1), name)
	}
	return args[i].List, nil
}

// --- Arithmetic ---

func nativeAdd(args []Value) (Value, error) {
	if err := atLeast("+", args, 1); err != nil {
		return Value{}, err
	}
	sum := 0.0
	for i := range args {
		n, err := numberArg("+", args, i)
		if err != nil {
			return Value{}, err
		}
		sum += n
	}
	return NumberVal(sum), nil
}

// nativeSub negates a single argument, otherwise folds a - b - c ...
func nativeSub(args []Value) (Value, error) {
	if err := atLeast("-", args, 1); err != nil {
		return Value{}, err
	}
	result, err := numberArg("-", args, 0)
	if err != nil {
		return Value{}, err
	}
	if len(args) == 1 {
		return NumberVal(-result), nil
	}
	for i := 1; i < len(args); i++ {
		n, err := numberArg("-", args, i)
		if err != nil {
			return Value{}, err
		}
		result -= n
	}
	return NumberVal(result), nil
}

func nativeMul(args []Value) (Value, error) {
	if err := atLeast("*", args, 1); err != nil {
		return Value{}, err
	}
	product := 1.0
	for i := range args {
		n, err := numberArg("*", args, i)
		if err != nil {
			return Value{}, err
		}
		product *= n
	}
	return NumberVal(product), nil
}

// nativeDiv returns the reciprocal of a single argument, otherwise folds
// a / b / c ... A zero divisor is an error; a zero single argument is not.
func nativeDiv(args []Value) (Value, error) {
	if err := atLeast("/", args, 1); err != nil {
		return Value{}, err
	}
	result, err := numberArg("/", args, 0)
	if err != nil {
		return Value{}, err
	}
	if len(args) == 1 {
		return NumberVal(1 / result), nil
	}
	for i := 1; i < len(args); i++ {
		n, err := numberArg("/", args, i)
		if err != nil {
			return Value{}, err
		}
		if n == 0 {
			return Value{}, runtimeErrorf("can't divide by zero (%s argument to '/' is zero)!", ordinal(i+1))
		}
		result /= n
	}
	return NumberVal(result), nil
}

// --- Comparison ---

func nativeEq(args []Value) (Value, error) {
	if err := exactly("==", args, 2); err != nil {
		return Value{}, err
	}
	return BoolVal(ValuesEqual(args[0], args[1])), nil
}

func compareNumbers(name string, args []Value) (float64, float64, error) {
	if err := exactly(name, args, 2); err != nil {
		return 0, 0, err
	}
	left, err := numberArg(name, args, 0)
	if err != nil {
		return 0, 0, err
	}
	right, err := numberArg(name, args, 1)
	if err != nil {
		return 0, 0, err
	}
	return left, right, nil
}

func nativeGt(args []Value) (Value, error) {
	left, right, err := compareNumbers(">", args)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(left > right), nil
}

func nativeLt(args []Value) (Value, error) {
	left, right, err := compareNumbers("<", args)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(left < right), nil
}

// --- Logic ---

// nativeAnd stops scanning at the first false; later arguments are not
// type-checked.
func nativeAnd(args []Value) (Value, error) {
	if err := atLeast("and", args, 1); err != nil {
		return Value{}, err
	}
	for i := range args {
		b, err := boolArg("and", args, i)
		if err != nil {
			return Value{}, err
		}
		if !b {
			return BoolVal(false), nil
		}
	}
	return BoolVal(true), nil
}

func nativeOr(args []Value) (Value, error) {
	if err := atLeast("or", args, 1); err != nil {
		return Value{}, err
	}
	for i := range args {
		b, err := boolArg("or", args, i)
		if err != nil {
			return Value{}, err
		}
		if b {
			return BoolVal(true), nil
		}
	}
	return BoolVal(false), nil
}

func nativeNot(args []Value) (Value, error) {
	if err := exactly("not", args, 1); err != nil {
		return Value{}, err
	}
	b, err := boolArg("not", args, 0)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(!b), nil
}

// --- Lists ---

func nativeCar(args []Value) (Value, error) {
	if err := exactly("car", args, 1); err != nil {
		return Value{}, err
	}
	elems, err := listArg("car", args, 0)
	if err != nil {
		return Value{}, err
	}
	if len(elems) == 0 {
		return Value{}, runtimeErrorf("can't apply 'car' to the empty list!")
	}
	return elems[0].Copy(), nil
}

func nativeCdr(args []Value) (Value, error) {
	if err := exactly("cdr", args, 1); err != nil {
		return Value{}, err
	}
	elems, err := listArg("cdr", args, 0)
	if err != nil {
		return Value{}, err
	}
	if len(elems) == 0 {
		return Value{}, runtimeErrorf("can't apply 'cdr' to the empty list!")
	}
	rest := make([]Value, len(elems)-1)
	for i, e := range elems[1:] {
		rest[i] = e.Copy()
	}
	return ListVal(rest), nil
}

// nativeCons appends arguments 2..n, in order, to a copy of the list in
// argument 1.
func nativeCons(args []Value) (Value, error) {
	if err := atLeast("cons", args, 2); err != nil {
		return Value{}, err
	}
	elems, err := listArg("cons", args, 0)
	if err != nil {
		return Value{}, err
	}
	result := make([]Value, 0, len(elems)+len(args)-1)
	for _, e := range elems {
		result = append(result, e.Copy())
	}
	for _, a := range args[1:] {
		result = append(result, a.Copy())
	}
	return ListVal(result), nil
}

func nativeList(args []Value) (Value, error) {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = a.Copy()
	}
	return ListVal(elems), nil
}

// --- Predicates ---

func kindPredicate(name string, kind ValueKind) Native {
	return func(args []Value) (Value, error) {
		if err := exactly(name, args, 1); err != nil {
			return Value{}, err
		}
		return BoolVal(args[0].Kind == kind), nil
	}
}

// --- Strings ---

func nativeStringConcat(args []Value) (Value, error) {
	if err := atLeast("string-concat", args, 1); err != nil {
		return Value{}, err
	}
	var buf strings.Builder
	for i, a := range args {
		if a.Kind != ValString {
			return Value{}, runtimeErrorf("%s argument to 'string-concat' must be a string!", ordinal(i+1))
		}
		buf.WriteString(a.Str)
	}
	return StringVal(buf.String()), nil
}

func nativeToString(args []Value) (Value, error) {
	if err := exactly("to-string", args, 1); err != nil {
		return Value{}, err
	}
	if args[0].Kind == ValString {
		return args[0], nil
	}
	return StringVal(args[0].String()), nil
}
