//go:build !nanbox

package value

// Type discriminates the variant held by a Value.
type Type uint8

const (
	TNil Type = iota
	TBool
	TNumber
	TObj
)

// Value is a discriminated union over {number, boolean, nil, object
// reference}, the default tagged-struct encoding.
// A second, build-tag-selected encoding (value_nanbox.go, build tag "nanbox")
// NaN-boxes the same four variants into a single uint64 and exposes the
// identical method set, so callers in lang/compiler and lang/machine never
// need to know which encoding is active.
type Value struct {
	typ Type
	num float64
	obj Obj
}

// Nil is the singleton nil value.
var Nil = Value{typ: TNil}

// Bool returns a boxed boolean.
func Bool(b bool) Value {
	v := Value{typ: TBool}
	if b {
		v.num = 1
	}
	return v
}

// Number returns a boxed float64.
func Number(n float64) Value { return Value{typ: TNumber, num: n} }

// NewObject returns a boxed heap object reference.
func NewObject(o Obj) Value { return Value{typ: TObj, obj: o} }

func (v Value) IsNil() bool    { return v.typ == TNil }
func (v Value) IsBool() bool   { return v.typ == TBool }
func (v Value) IsNumber() bool { return v.typ == TNumber }
func (v Value) IsObj() bool    { return v.typ == TObj }

func (v Value) AsBool() bool     { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObject() Obj    { return v.obj }

// Truthy implements the language's falsey semantics: nil and false are
// falsey, everything else (including 0 and "") is truthy.
func (v Value) Truthy() bool {
	switch v.typ {
	case TNil:
		return false
	case TBool:
		return v.num != 0
	default:
		return true
	}
}

// Equal implements values_equal: numbers by IEEE equality, booleans by
// value, nil equals nil, objects by identity (strings compare equal by
// identity too, since they are interned).
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TNil:
		return true
	case TBool, TNumber:
		return v.num == o.num
	case TObj:
		return v.obj == o.obj
	}
	return false
}

func (v Value) String() string {
	switch v.typ {
	case TNil:
		return "nil"
	case TBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case TNumber:
		return formatNumber(v.num)
	case TObj:
		return v.obj.String()
	}
	return "?"
}

// ForgetObject is a no-op in the default struct encoding, which holds
// object references directly and needs no side table. It exists so
// lang/machine's sweep phase can call it unconditionally regardless of
// which Value encoding the binary was built with; the nanbox encoding
// (value_nanbox.go) gives it a real body.
func ForgetObject(o Obj) {}
