package value

import "fmt"

// Upvalue is a reference to a variable captured by a closure. While its
// owning stack frame is alive it is open (Location points at a live stack
// slot); once the frame returns it is closed (Location points at Closed,
// the upvalue's own boxed copy of the value). Open upvalues for a given
// thread are linked in descending stack-address order via NextOpen.
type Upvalue struct {
	Object
	Location *Value
	Closed   Value
	NextOpen *Upvalue // only meaningful while open
}

var _ Obj = (*Upvalue)(nil)

// NewOpenUpvalue creates an open upvalue pointing at a live stack slot.
func NewOpenUpvalue(slot *Value) *Upvalue {
	u := &Upvalue{Location: slot}
	u.Kind = KindUpvalue
	return u
}

func (u *Upvalue) TypeName() string { return "upvalue" }
func (u *Upvalue) String() string   { return "<upvalue>" }

// IsOpen reports whether this upvalue still points into a live stack
// region rather than its own Closed field.
func (u *Upvalue) IsOpen() bool { return u.Location != &u.Closed }

// Close copies the current value into the upvalue's own storage and
// rewrites Location to point there, detaching it from the stack.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
	u.NextOpen = nil
}

// Closure pairs a compiled Function with the fixed-length vector of
// upvalues it captured at creation time.
type Closure struct {
	Object
	Fn       *Function
	Upvalues []*Upvalue
}

var _ Obj = (*Closure)(nil)

func NewClosure(fn *Function) *Closure {
	c := &Closure{Fn: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
	c.Kind = KindClosure
	return c
}

func (c *Closure) TypeName() string { return "closure" }
func (c *Closure) String() string   { return fmt.Sprintf("<closure %s>", c.Fn.String()) }
