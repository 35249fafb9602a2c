package mankai

import (
	"errors"
	"strconv"
)

// Interpreter evaluates symbolic expressions against one Environment.
// It is single-threaded; callers that share it across goroutines must
// serialize access (see Server).
type Interpreter struct {
	Env *Environment

	// MaxDepth bounds the nesting depth of Evaluate. Zero means unbounded.
	MaxDepth int

	// OnDefine, if set, is called after every successful set! binding.
	OnDefine func(name string, val Value)

	depth int
}

func NewInterpreter() *Interpreter {
	return &Interpreter{Env: NewEnvironment()}
}

// Evaluate evaluates one expression. Every failure is a *RuntimeError.
func (in *Interpreter) Evaluate(expr *Sexp) (Value, error) {
	if in.MaxDepth > 0 {
		if in.depth >= in.MaxDepth {
			return Value{}, runtimeErrorf("maximum evaluation depth (%d) exceeded!", in.MaxDepth)
		}
		in.depth++
		defer func() { in.depth-- }()
	}

	if expr.Kind == SexpList {
		return in.evalList(expr.Children)
	}
	return in.evalAtom(expr.Token)
}

func (in *Interpreter) evalAtom(tok Token) (Value, error) {
	switch tok.Kind {
	case TokenNumber:
		// Out-of-range literals overflow to an infinity.
		n, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{}, runtimeErrorf("'%s' is not a valid number!", tok.Lexeme)
		}
		return NumberVal(n), nil
	case TokenString:
		return StringVal(tok.Lexeme), nil
	case TokenIdentifier:
		return in.resolveIdentifier(tok.Lexeme)
	default:
		return Value{}, runtimeErrorf("unknown token kind %d!", tok.Kind)
	}
}

// resolveIdentifier looks a name up in value position. Special forms and
// native functions live in their own namespaces and are not values.
func (in *Interpreter) resolveIdentifier(name string) (Value, error) {
	if val, ok := in.Env.Constant(name); ok {
		return val, nil
	}
	if in.Env.IsSpecialForm(name) {
		return Value{}, runtimeErrorf("'%s' is a special form and can't be used as a value!", name)
	}
	if in.Env.IsNativeFunction(name) {
		return Value{}, runtimeErrorf("'%s' is a native function and can't be used as a value!", name)
	}
	return in.Env.Lookup(name)
}

func (in *Interpreter) evalList(children []*Sexp) (Value, error) {
	if len(children) == 0 {
		return Value{}, runtimeErrorf("can't evaluate the empty list!")
	}

	head := children[0]
	if !head.IsIdentifier() {
		return Value{}, runtimeErrorf("can't call %s: the head of a form must be an identifier!", head)
	}
	name := head.Token.Lexeme

	// Special forms
	switch name {
	case "if!":
		return in.evalIf(children[1:])
	case "set!":
		return in.evalSet(children[1:])
	}

	// Native functions
	if fn, ok := in.Env.Native(name); ok {
		return in.callNative(fn, children[1:])
	}

	return Value{}, runtimeErrorf("'%s' is not a special form or a native function!", name)
}

// callNative evaluates arguments left to right, stopping at the first error.
func (in *Interpreter) callNative(fn Native, argNodes []*Sexp) (Value, error) {
	args := make([]Value, len(argNodes))
	for i, child := range argNodes {
		val, err := in.Evaluate(child)
		if err != nil {
			return Value{}, err
		}
		args[i] = val
	}
	return fn(args)
}

// EvalString parses input and evaluates each top-level form in order,
// returning the value of the last one. It stops at the first error.
func (in *Interpreter) EvalString(input string) (Value, error) {
	forms, err := ParseAll(input)
	if err != nil {
		return Value{}, err
	}
	if len(forms) == 0 {
		return Value{}, runtimeErrorf("nothing to evaluate!")
	}
	var result Value
	for _, form := range forms {
		result, err = in.Evaluate(form)
		if err != nil {
			return Value{}, err
		}
	}
	return result, nil
}

// EvalProgram evaluates each top-level form in turn, reporting every
// outcome to report and continuing past failures. It returns the number of
// forms that failed.
func (in *Interpreter) EvalProgram(forms []*Sexp, report func(form *Sexp, val Value, err error)) int {
	failed := 0
	for _, form := range forms {
		val, err := in.Evaluate(form)
		if err != nil {
			failed++
		}
		if report != nil {
			report(form, val, err)
		}
	}
	return failed
}
