package mankai

// Special forms receive their arguments unevaluated and decide what to
// evaluate themselves.

// evalIf: (if! cond then else). Only the selected branch is evaluated.
func (in *Interpreter) evalIf(args []*Sexp) (Value, error) {
	if len(args) != 3 {
		return Value{}, runtimeErrorf("'if!' requires exactly three arguments!")
	}
	cond, err := in.Evaluate(args[0])
	if err != nil {
		return Value{}, err
	}
	if cond.Kind != ValBool {
		return Value{}, runtimeErrorf("1st argument to 'if!' must evaluate to a boolean!")
	}
	if cond.Bool {
		return in.Evaluate(args[1])
	}
	return in.Evaluate(args[2])
}

// evalSet: (set! name expr). Binds name in the environment and returns a
// copy of the bound value.
func (in *Interpreter) evalSet(args []*Sexp) (Value, error) {
	if len(args) != 2 {
		return Value{}, runtimeErrorf("'set!' requires exactly two arguments!")
	}
	target := args[0]
	if target.Kind == SexpList {
		return Value{}, runtimeErrorf("expected identifier as 1st argument to 'set!'!")
	}
	if target.Token.Kind != TokenIdentifier {
		return Value{}, runtimeErrorf("'%s' is not an identifier!", target.Token.Lexeme)
	}

	name := target.Token.Lexeme
	switch {
	case in.Env.IsSpecialForm(name):
		return Value{}, runtimeErrorf("can't assign to '%s' because the name is reserved for a special form!", name)
	case in.Env.IsNativeFunction(name):
		return Value{}, runtimeErrorf("can't assign to '%s' because the name is reserved for a native function!", name)
	case in.Env.IsConstant(name):
		return Value{}, runtimeErrorf("can't assign to '%s' because the name is reserved for a constant!", name)
	}

	val, err := in.Evaluate(args[1])
	if err != nil {
		return Value{}, err
	}
	in.Env.Define(name, val)
	if in.OnDefine != nil {
		in.OnDefine(name, val.Copy())
	}
	return val.Copy(), nil
}
