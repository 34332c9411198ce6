//go:build nanbox

package value

import (
	"math"
	"unsafe"
)

// Value is a NaN-boxed 64-bit encoding: object
// pointers live in the payload of a quiet NaN with the sign bit set (the
// quiet bit is set, so an object Value is not a signaling NaN);
// nil, true and false occupy three reserved quiet-NaN payloads; everything
// else is a plain float64 bit pattern. Building with -tags nanbox swaps this
// file in for value.go; both expose the identical method set so the rest of
// the module is encoding-agnostic.
//
// Safety note: the uintptr embedded in an object Value is not, by itself, a
// GC root from Go's runtime point of view. Liveness of the referenced Obj is
// guaranteed instead by objRegistry below, which NewObject fills and which
// keeps a real Obj reference until lang/machine's sweep calls ForgetObject;
// the language's own mark-sweep collector, not Go's, governs when it is
// safe to let that reference go.
type Value uint64

const (
	qnan    = uint64(0x7ff8000000000000)
	signBit = uint64(0x8000000000000000)

	tagNil   = uint64(1)
	tagFalse = uint64(2)
	tagTrue  = uint64(3)
)

var (
	nilBits   = Value(qnan | tagNil)
	falseBits = Value(qnan | tagFalse)
	trueBits  = Value(qnan | tagTrue)
)

// Nil is the singleton nil value.
var Nil = nilBits

func Bool(b bool) Value {
	if b {
		return trueBits
	}
	return falseBits
}

func Number(n float64) Value {
	return Value(math.Float64bits(n))
}

// objRegistry keeps the Obj behind each live NaN-boxed pointer reachable
// from Go's perspective, indexed by the uintptr packed into the Value. The
// language GC (not Go's) decides when an entry may be dropped, at which
// point the corresponding bit pattern must never be dereferenced again.
var objRegistry = map[uintptr]Obj{}

func NewObject(o Obj) Value {
	ptr := objPtr(o)
	objRegistry[ptr] = o
	return Value(signBit | qnan | uint64(ptr))
}

func objPtr(o Obj) uintptr {
	return uintptr(unsafe.Pointer(o.Header()))
}

// ForgetObject removes an object from the registry once the language GC has
// swept it; called from lang/machine's sweep phase.
func ForgetObject(o Obj) {
	delete(objRegistry, objPtr(o))
}

func (v Value) IsNumber() bool { return (uint64(v) & qnan) != qnan }
func (v Value) IsNil() bool    { return v == nilBits }
func (v Value) IsObj() bool    { return uint64(v)&(qnan|signBit) == (qnan | signBit) }
func (v Value) IsBool() bool   { return v == trueBits || v == falseBits }

func (v Value) AsNumber() float64 { return math.Float64frombits(uint64(v)) }
func (v Value) AsBool() bool      { return v == trueBits }
func (v Value) AsObject() Obj {
	ptr := uintptr(uint64(v) &^ (signBit | qnan))
	return objRegistry[ptr]
}

func (v Value) Truthy() bool {
	if v.IsNil() || v == falseBits {
		return false
	}
	return true
}

func (v Value) Equal(o Value) bool {
	if v.IsNumber() && o.IsNumber() {
		return v.AsNumber() == o.AsNumber()
	}
	return v == o
}

func (v Value) String() string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		return formatNumber(v.AsNumber())
	case v.IsObj():
		return v.AsObject().String()
	}
	return "?"
}
