package machine

import (
	"strconv"

	"github.com/mna/ember/lang/value"
)

// formatOperand renders the non-string operand of a string concatenation
// as text: numbers with %g-style formatting, booleans as true/false, and
// nil as "(nil)" (print shows nil as "nil"); objects use their String form.
func formatOperand(v value.Value) string {
	switch {
	case v.IsNil():
		return "(nil)"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		return strconv.FormatFloat(v.AsNumber(), 'g', 6, 64)
	default:
		return v.String()
	}
}

func asArray(v value.Value) (*value.Array, bool) {
	if !v.IsObj() {
		return nil, false
	}
	a, ok := v.AsObject().(*value.Array)
	return a, ok
}

func asString(v value.Value) (*value.String, bool) {
	if !v.IsObj() {
		return nil, false
	}
	s, ok := v.AsObject().(*value.String)
	return s, ok
}

// add implements the polymorphic ADD opcode: numeric add, string
// concatenation (either side a string, the other formatted as text),
// array append-all (array+array), prepend (non-array+array) and append
// (array+non-array).
func (th *Thread) add(a, b value.Value) (value.Value, *RuntimeError) {
	if a.IsNumber() && b.IsNumber() {
		return value.Number(a.AsNumber() + b.AsNumber()), nil
	}

	if sa, ok := asString(a); ok {
		var text string
		if sb, ok := asString(b); ok {
			text = sa.String() + sb.String()
		} else {
			text = sa.String() + formatOperand(b)
		}
		return value.NewObject(th.internString([]byte(text))), nil
	}
	if sb, ok := asString(b); ok {
		text := formatOperand(a) + sb.String()
		return value.NewObject(th.internString([]byte(text))), nil
	}

	if aa, ok := asArray(a); ok {
		if ba, ok := asArray(b); ok {
			elems := make([]value.Value, 0, len(aa.Elems)+len(ba.Elems))
			elems = append(elems, aa.Elems...)
			elems = append(elems, ba.Elems...)
			arr := value.NewArray(elems)
			th.allocate(arr)
			return value.NewObject(arr), nil
		}
		elems := make([]value.Value, 0, len(aa.Elems)+1)
		elems = append(elems, aa.Elems...)
		elems = append(elems, b)
		arr := value.NewArray(elems)
		th.allocate(arr)
		return value.NewObject(arr), nil
	}
	if ba, ok := asArray(b); ok {
		elems := make([]value.Value, 0, len(ba.Elems)+1)
		elems = append(elems, a)
		elems = append(elems, ba.Elems...)
		arr := value.NewArray(elems)
		th.allocate(arr)
		return value.NewObject(arr), nil
	}

	return value.Nil, th.runtimeError("Operands must be two numbers, strings or arrays for '+'.")
}

// numericBinary implements the non-polymorphic arithmetic ops, which
// require both operands to be numbers.
func (th *Thread) numericBinary(op func(a, b float64) (float64, *RuntimeError), a, b value.Value) (value.Value, *RuntimeError) {
	if !a.IsNumber() || !b.IsNumber() {
		return value.Nil, th.runtimeError("Operands must be numbers.")
	}
	r, err := op(a.AsNumber(), b.AsNumber())
	if err != nil {
		return value.Nil, err
	}
	return value.Number(r), nil
}

func (th *Thread) sub(a, b value.Value) (value.Value, *RuntimeError) {
	return th.numericBinary(func(a, b float64) (float64, *RuntimeError) { return a - b, nil }, a, b)
}

func (th *Thread) mul(a, b value.Value) (value.Value, *RuntimeError) {
	return th.numericBinary(func(a, b float64) (float64, *RuntimeError) { return a * b, nil }, a, b)
}

func (th *Thread) div(a, b value.Value) (value.Value, *RuntimeError) {
	if !a.IsNumber() || !b.IsNumber() {
		return value.Nil, th.runtimeError("Operands must be numbers.")
	}
	if b.AsNumber() == 0 {
		return value.Nil, th.runtimeError("Division by zero.")
	}
	return value.Number(a.AsNumber() / b.AsNumber()), nil
}

// mod truncates both operands to int before computing the remainder.
func (th *Thread) mod(a, b value.Value) (value.Value, *RuntimeError) {
	if !a.IsNumber() || !b.IsNumber() {
		return value.Nil, th.runtimeError("Operands must be numbers.")
	}
	bi := int64(b.AsNumber())
	if bi == 0 {
		return value.Nil, th.runtimeError("Division by zero.")
	}
	ai := int64(a.AsNumber())
	return value.Number(float64(ai % bi)), nil
}

func (th *Thread) compare(op func(a, b float64) bool, a, b value.Value) (value.Value, *RuntimeError) {
	if !a.IsNumber() || !b.IsNumber() {
		return value.Nil, th.runtimeError("Operands must be numbers.")
	}
	return value.Bool(op(a.AsNumber(), b.AsNumber())), nil
}
