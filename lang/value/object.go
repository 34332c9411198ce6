// Package value defines the tagged Value representation and the heap object
// model shared by lang/compiler (which builds constant pools) and
// lang/machine (which executes them): a value vocabulary usable without
// pulling in the interpreter.
package value

// Kind identifies the concrete heap-allocated type behind an Obj.
type Kind uint8

const (
	KindString Kind = iota
	KindArray
	KindFunction
	KindNative
	KindUpvalue
	KindClosure
	KindClass
	KindInstance
	KindBoundMethod
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindNative:
		return "native"
	case KindUpvalue:
		return "upvalue"
	case KindClosure:
		return "closure"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	}
	return "unknown"
}

// Object is the common header every heap-allocated value carries: a type
// tag, a GC mark bit, and the intrusive pointer threading every live object
// into the VM's object list. Every concrete object type embeds Object as its first
// field so that its methods (promoted via embedding) satisfy Obj.
type Object struct {
	Kind   Kind
	Marked bool
	Next   Obj
}

// Header returns the object's own header; it is the anchor method that lets
// every embedding type satisfy Obj without restating bookkeeping fields.
func (o *Object) Header() *Object { return o }

// Obj is implemented by every heap-allocated language value: String, Array,
// Function, Native, Upvalue, Closure, Class, Instance, BoundMethod.
type Obj interface {
	Header() *Object
	String() string
	TypeName() string
}
