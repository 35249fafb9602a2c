package mankai

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ValueKind int

const (
	ValNumber ValueKind = iota
	ValBool
	ValString
	ValList
)

// Value is the result of evaluating any expression. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Value struct {
	Kind   ValueKind
	Number float64
	Bool   bool
	Str    string
	List   []Value
}

func NumberVal(n float64) Value { return Value{Kind: ValNumber, Number: n} }
func BoolVal(b bool) Value      { return Value{Kind: ValBool, Bool: b} }
func StringVal(s string) Value  { return Value{Kind: ValString, Str: s} }
func ListVal(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: ValList, List: elems}
}

// Copy returns a value that shares no list storage with v.
func (v Value) Copy() Value {
	if v.Kind != ValList {
		return v
	}
	elems := make([]Value, len(v.List))
	for i, e := range v.List {
		elems[i] = e.Copy()
	}
	return ListVal(elems)
}

// String is the canonical textual form used by to-string and diagnostics.
// Strings pass through unchanged at the top level and are quoted inside lists.
func (v Value) String() string {
	switch v.Kind {
	case ValNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValString:
		return v.Str
	case ValList:
		if len(v.List) == 0 {
			return "(list)"
		}
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			switch e.Kind {
			case ValString:
				parts[i] = strconv.Quote(e.Str)
			default:
				parts[i] = e.String()
			}
		}
		return "(list " + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("<unknown:%d>", v.Kind)
	}
}

func (v Value) KindName() string {
	switch v.Kind {
	case ValNumber:
		return "Number"
	case ValBool:
		return "Bool"
	case ValString:
		return "String"
	case ValList:
		return "List"
	default:
		return "Unknown"
	}
}

// ValuesEqual compares two Values for deep equality. Values of different
// kinds are never equal. NaN is equal to NaN so that equality stays reflexive.
func ValuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValNumber:
		if math.IsNaN(a.Number) && math.IsNaN(b.Number) {
			return true
		}
		return a.Number == b.Number
	case ValBool:
		return a.Bool == b.Bool
	case ValString:
		return a.Str == b.Str
	case ValList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !ValuesEqual(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// nonFiniteKey tags numbers JSON cannot carry: {"num": "+Inf"}.
const nonFiniteKey = "num"

// ValueToGo converts a Value to a native Go value for JSON serialization.
// Infinities and NaN become a one-key object, see nonFiniteKey.
func ValueToGo(v Value) (any, error) {
	switch v.Kind {
	case ValNumber:
		switch {
		case math.IsNaN(v.Number):
			return map[string]any{nonFiniteKey: "NaN"}, nil
		case math.IsInf(v.Number, 1):
			return map[string]any{nonFiniteKey: "+Inf"}, nil
		case math.IsInf(v.Number, -1):
			return map[string]any{nonFiniteKey: "-Inf"}, nil
		}
		return v.Number, nil
	case ValBool:
		return v.Bool, nil
	case ValString:
		return v.Str, nil
	case ValList:
		arr := make([]any, len(v.List))
		for i, e := range v.List {
			j, err := ValueToGo(e)
			if err != nil {
				return nil, err
			}
			arr[i] = j
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}

// GoToValue converts a native Go value (from JSON) back to a Value.
func GoToValue(v any) (Value, error) {
	switch val := v.(type) {
	case bool:
		return BoolVal(val), nil
	case float64:
		return NumberVal(val), nil
	case int:
		return NumberVal(float64(val)), nil
	case int64:
		return NumberVal(float64(val)), nil
	case string:
		return StringVal(val), nil
	case []any:
		elems := make([]Value, len(val))
		for i, e := range val {
			ev, err := GoToValue(e)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return ListVal(elems), nil
	case map[string]any:
		return nonFiniteToValue(val)
	default:
		return Value{}, fmt.Errorf("cannot convert %T to a value", v)
	}
}

func nonFiniteToValue(m map[string]any) (Value, error) {
	tag, ok := m[nonFiniteKey].(string)
	if !ok || len(m) != 1 {
		return Value{}, fmt.Errorf("cannot convert object to a value")
	}
	switch tag {
	case "NaN":
		return NumberVal(math.NaN()), nil
	case "+Inf":
		return NumberVal(math.Inf(1)), nil
	case "-Inf":
		return NumberVal(math.Inf(-1)), nil
	default:
		return Value{}, fmt.Errorf("unknown number %q", tag)
	}
}
