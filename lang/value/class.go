package value

import "fmt"

// Class is a class declaration's runtime representation: its name, method
// table (name -> Closure, stored as Value so blackening is uniform), and a
// dedicated Init slot caching the `init` method for O(1) construction
// dispatch without a table probe on every instantiation.
type Class struct {
	Object
	Name    *String
	Methods *Table
	Init    *Closure // nil if the class defines no initializer
}

var _ Obj = (*Class)(nil)

func NewClass(name *String) *Class {
	c := &Class{Name: name, Methods: NewTable(8)}
	c.Kind = KindClass
	return c
}

func (c *Class) TypeName() string { return "class" }
func (c *Class) String() string   { return fmt.Sprintf("<class %s>", c.Name.String()) }

// BindMethod looks up name in the method table, used both by GET_PROP's
// bound-method fallback and by INVOKE/SUPER_INVOKE's fused dispatch.
func (c *Class) BindMethod(name *String) (*Closure, bool) {
	v, ok := c.Methods.Get(name)
	if !ok {
		return nil, false
	}
	return v.AsObject().(*Closure), true
}

// Instance is an allocation of a Class: the class reference plus a mutable
// field table.
type Instance struct {
	Object
	Class  *Class
	Fields *Table
}

var _ Obj = (*Instance)(nil)

func NewInstance(class *Class) *Instance {
	i := &Instance{Class: class, Fields: NewTable(4)}
	i.Kind = KindInstance
	return i
}

func (i *Instance) TypeName() string { return "instance" }
func (i *Instance) String() string   { return fmt.Sprintf("<%s instance>", i.Class.Name.String()) }

// BoundMethod pairs a receiver with one of its class's method closures,
// produced by a plain (non-fused) GET_PROP on a method name.
type BoundMethod struct {
	Object
	Receiver Value
	Method   *Closure
}

var _ Obj = (*BoundMethod)(nil)

func NewBoundMethod(receiver Value, method *Closure) *BoundMethod {
	b := &BoundMethod{Receiver: receiver, Method: method}
	b.Kind = KindBoundMethod
	return b
}

func (b *BoundMethod) TypeName() string { return "bound method" }
func (b *BoundMethod) String() string   { return b.Method.String() }
