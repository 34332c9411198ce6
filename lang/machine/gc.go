package machine

import "github.com/mna/ember/lang/value"

// collectGarbage runs one precise tri-color mark-sweep cycle: mark roots,
// trace the gray worklist to blacken everything reachable, drop
// now-dead entries from the string table (a weak reference, not a root),
// sweep the object list, and grow the next collection threshold.
func (th *Thread) collectGarbage() {
	th.markRoots()
	th.trace()
	th.sweepStrings()
	th.sweep()
	th.nextGC = th.bytesAllocated * th.heapGrowFactor()
}

func (th *Thread) markValue(v value.Value) {
	if v.IsObj() {
		th.markObject(v.AsObject())
	}
}

func (th *Thread) markObject(o value.Obj) {
	if o == nil {
		return
	}
	h := o.Header()
	if h.Marked {
		return
	}
	h.Marked = true
	th.grayStack = append(th.grayStack, o)
}

// markRoots enumerates every root named by the collector design: live
// stack slots, each frame's closure, the open-upvalue list, and the
// globals table. The compiler never allocates through the Thread (its
// constant-pool objects enter the object list only when loaded at run
// time), so there are no compiler-side roots to mark here.
func (th *Thread) markRoots() {
	for i := 0; i < th.sp; i++ {
		th.markValue(th.stack[i])
	}
	for i := 0; i < th.frameCount; i++ {
		th.markObject(th.frames[i].closure)
	}
	for uv := th.openUpvalues; uv != nil; uv = uv.NextOpen {
		th.markObject(uv)
	}
	th.globals.Iterate(func(key *value.String, v value.Value) bool {
		th.markObject(key)
		th.markValue(v)
		return true
	})
}

// trace drains the gray worklist, blackening each object: marking every
// object (or value) it directly references and enqueuing any that aren't
// already marked.
func (th *Thread) trace() {
	for len(th.grayStack) > 0 {
		n := len(th.grayStack) - 1
		o := th.grayStack[n]
		th.grayStack = th.grayStack[:n]
		th.blacken(o)
	}
}

func (th *Thread) blacken(o value.Obj) {
	switch v := o.(type) {
	case *value.String, *value.Native:
		// no outgoing references
	case *value.Array:
		for _, e := range v.Elems {
			th.markValue(e)
		}
	case *value.Function:
		th.markObject(stringObjOrNil(v.Name, th))
		for _, c := range v.Chunk.Constants {
			th.markValue(c)
		}
	case *value.Closure:
		th.markObject(v.Fn)
		for _, uv := range v.Upvalues {
			th.markObject(uv)
		}
	case *value.Upvalue:
		th.markValue(*v.Location)
	case *value.Class:
		th.markObject(v.Name)
		if v.Init != nil {
			th.markObject(v.Init)
		}
		v.Methods.Iterate(func(key *value.String, m value.Value) bool {
			th.markObject(key)
			th.markValue(m)
			return true
		})
	case *value.Instance:
		th.markObject(v.Class)
		v.Fields.Iterate(func(key *value.String, f value.Value) bool {
			th.markObject(key)
			th.markValue(f)
			return true
		})
	case *value.BoundMethod:
		th.markValue(v.Receiver)
		th.markObject(v.Method)
	}
}

// stringObjOrNil looks a function's plain Go-string name back up in the
// intern table, if it was ever interned, so the GC can mark it; an
// un-interned name (e.g. an empty top-level script name) marks nothing.
func stringObjOrNil(name string, th *Thread) value.Obj {
	if name == "" {
		return nil
	}
	if s, ok := th.strings[name]; ok {
		return s
	}
	return nil
}

// sweepStrings drops intern-table entries whose key string was not
// marked, so a dead String is never resurrected by a later lookup before
// sweep actually frees its slot in the object list.
func (th *Thread) sweepStrings() {
	for k, s := range th.strings {
		if !s.Marked {
			delete(th.strings, k)
		}
	}
}

// sweep walks the object list, unlinking and dropping every unmarked
// object and clearing the mark bit on survivors.
func (th *Thread) sweep() {
	var prev value.Obj
	cur := th.objects
	for cur != nil {
		h := cur.Header()
		next := h.Next
		if h.Marked {
			h.Marked = false
			prev = cur
		} else {
			if prev == nil {
				th.objects = next
			} else {
				prev.Header().Next = next
			}
			value.ForgetObject(cur)
		}
		cur = next
	}
}
