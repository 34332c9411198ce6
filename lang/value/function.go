package value

import "fmt"

// Function is a compiled unit: its arity, the number of upvalues its
// closures must allocate, an optional name (empty for the top-level
// script), and the chunk holding its code, constants and line table.
type Function struct {
	Object
	Name        string
	Arity       int
	UpvalueCount int
	Chunk       Chunk
}

var _ Obj = (*Function)(nil)

func NewFunction(name string, arity int) *Function {
	f := &Function{Name: name, Arity: arity}
	f.Kind = KindFunction
	return f
}

func (f *Function) TypeName() string { return "function" }
func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// NativeFunc is the Go function signature backing a Native value. args is
// the slice of the argc arguments pushed on the stack (stack[sp-argc:sp]);
// a non-nil error is surfaced as a runtime error by the VM's CALL handler.
type NativeFunc func(args []Value) (Value, error)

// Native wraps a host routine with its fixed arity.
type Native struct {
	Object
	Name  string
	Arity int
	Fn    NativeFunc
}

var _ Obj = (*Native)(nil)

func NewNative(name string, arity int, fn NativeFunc) *Native {
	n := &Native{Name: name, Arity: arity, Fn: fn}
	n.Kind = KindNative
	return n
}

func (n *Native) TypeName() string { return "native" }
func (n *Native) String() string   { return fmt.Sprintf("<native fn %s>", n.Name) }
