package mankai

import "time"

// Trace records one top-level evaluation: the source form, its result or
// error, and when it ran.
type Trace struct {
	Source    string // the form as text
	Result    Value  // final result value; zero when Error is set
	Error     string // non-empty on error
	Timestamp string // RFC 3339, UTC
}

// EvalTraced evaluates form and returns the trace of that evaluation
// along with the usual result.
func (in *Interpreter) EvalTraced(form *Sexp) (*Trace, Value, error) {
	trace := &Trace{
		Source:    form.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	val, err := in.Evaluate(form)
	if err != nil {
		trace.Error = err.Error()
		return trace, Value{}, err
	}
	trace.Result = val
	return trace, val, nil
}
