// Package machine implements the stack-based virtual machine that executes
// compiled chunks: call frames, the open-upvalue chain, string interning,
// a globals table, and the allocation choke point the garbage collector
// hangs off of.
package machine

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mna/ember/lang/value"
)

const (
	defaultMaxFrames   = 64
	defaultStackSlots  = defaultMaxFrames * 256

	defaultHeapGrowFactor = 2
	initialNextGC         = 1 << 20
)

// CallFrame is one active invocation: the closure being run, its program
// counter, and the index into the value stack where its locals begin
// (slot 0 holds the receiver for methods/initializers or the closure
// itself for plain functions).
type CallFrame struct {
	closure *value.Closure
	ip      int
	slots   int
}

// Thread is the VM: a singleton with exclusive access to its stack, frame
// stack, globals, string table, object list and open-upvalue list. It is
// not safe for concurrent use, matching the language's single-threaded,
// cooperative execution model.
type Thread struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// GCStress forces a collection at the instruction boundary following
	// every allocation; used by tests that assert live values survive
	// aggressive collection.
	GCStress bool

	// HeapGrowFactor scales bytesAllocated into the next collection
	// threshold after each sweep. Zero means defaultHeapGrowFactor.
	HeapGrowFactor int64

	// Ctx is checked for cancellation every 256 dispatched instructions, nil
	// meaning no cooperative cancellation is in effect. MaxSteps, if
	// positive, aborts the run after that many dispatched instructions,
	// guarding against runaway scripts (e.g. an infinite loop) regardless
	// of Ctx.
	Ctx      context.Context
	MaxSteps int64

	steps int64

	stack []value.Value
	sp    int

	frames     []CallFrame
	frameCount int

	globals *value.Table
	strings map[string]*value.String

	openUpvalues *value.Upvalue

	objects        value.Obj
	bytesAllocated int64
	nextGC         int64
	grayStack      []value.Obj
	gcPending      bool

	startTime time.Time
}

// New builds a Thread sized and tuned with the library defaults, with its
// globals populated with the standard native builtins (clock, sqrt, input,
// len).
func New() *Thread {
	return NewSized(defaultMaxFrames, defaultStackSlots)
}

// NewSized builds a Thread with the given frame and value-stack capacities,
// letting internal/config drive sizing from EMBER_FRAME_MAX and
// EMBER_STACK_SLOTS without the package depending on internal/config.
func NewSized(maxFrames, stackSlots int) *Thread {
	th := &Thread{
		stack:     make([]value.Value, stackSlots),
		frames:    make([]CallFrame, maxFrames),
		globals:   value.NewTable(16),
		strings:   make(map[string]*value.String, 64),
		nextGC:    initialNextGC,
		startTime: time.Now(),
	}
	th.Stdout = os.Stdout
	th.Stderr = os.Stderr
	th.Stdin = os.Stdin
	installNatives(th)
	return th
}

func (th *Thread) heapGrowFactor() int64 {
	if th.HeapGrowFactor <= 0 {
		return defaultHeapGrowFactor
	}
	return th.HeapGrowFactor
}

// internString is the one place byte sequences become canonical *String
// objects: every string-producing operation (constant load, concatenation,
// native return, single-character indexing) must route through it so that
// equality and table lookups can rely on pointer identity.
func (th *Thread) internString(chars []byte) *value.String {
	key := string(chars)
	if s, ok := th.strings[key]; ok {
		return s
	}
	s := value.NewStringUninterned(chars)
	th.strings[key] = s
	th.allocate(s)
	return s
}

// allocate is the GC's allocation choke point: every heap object (other
// than interned strings, which call it themselves via internString) must
// pass through here exactly once, right after construction.
//
// Collection itself is deferred to the next instruction boundary (checked
// at the top of the run loop) rather than happening synchronously inside
// allocate: an opcode handler is often mid-way through rearranging the
// stack when it allocates (e.g. OP_ARRAY has already popped its elements
// off the root-visible region before building the Array that references
// them), so collecting right here would require a stack-shield push at
// every single call site. Deferring to the instruction boundary, where
// every root (stack, frames, globals, open upvalues) is known-consistent,
// gets the same "collect only when needed" behavior without that
// bookkeeping burden.
func (th *Thread) allocate(o value.Obj) {
	h := o.Header()
	h.Next = th.objects
	th.objects = o
	th.bytesAllocated += sizeOf(o)
	if th.GCStress || th.bytesAllocated > th.nextGC {
		th.gcPending = true
	}
}

// sizeOf is a coarse accounting unit for heap-growth pacing; it need not be
// exact, only monotonic in the object's actual footprint.
func sizeOf(o value.Obj) int64 {
	switch v := o.(type) {
	case *value.String:
		return int64(32 + len(v.Chars))
	case *value.Array:
		return int64(32 + 16*len(v.Elems))
	case *value.Function:
		return int64(64 + len(v.Chunk.Code) + 16*len(v.Chunk.Constants))
	case *value.Closure:
		return int64(32 + 8*len(v.Upvalues))
	case *value.Class:
		return 64
	case *value.Instance:
		return 48
	default:
		return 32
	}
}

func (th *Thread) push(v value.Value) {
	th.stack[th.sp] = v
	th.sp++
}

func (th *Thread) pop() value.Value {
	th.sp--
	return th.stack[th.sp]
}

func (th *Thread) peek(distance int) value.Value {
	return th.stack[th.sp-1-distance]
}

func (th *Thread) resetStack() {
	th.sp = 0
	th.frameCount = 0
	th.openUpvalues = nil
}

// Globals exposes the globals table, mainly so embedders can pre-seed
// additional host bindings before calling Interpret or RunChunk.
func (th *Thread) Globals() *value.Table { return th.globals }
