package machine

import (
	"unsafe"

	"github.com/mna/ember/lang/value"
)

// addr turns a stack-slot pointer into a comparable address; Go forbids
// ordering comparisons between pointers directly, but open upvalues must
// stay sorted by descending stack depth, so comparisons go through uintptr.
func addr(p *value.Value) uintptr { return uintptr(unsafe.Pointer(p)) }

// captureUpvalue walks the open-upvalue list, which is sorted in strictly
// descending stack-slot order, and either returns the existing entry for
// slot or inserts a fresh open upvalue at the right position so the
// invariant is preserved.
func (th *Thread) captureUpvalue(slot *value.Value) *value.Upvalue {
	var prev *value.Upvalue
	cur := th.openUpvalues
	for cur != nil && addr(cur.Location) > addr(slot) {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Location == slot {
		return cur
	}

	created := value.NewOpenUpvalue(slot)
	th.allocate(created)
	created.NextOpen = cur
	if prev == nil {
		th.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose location is at or above
// boundary, copying the live value into the upvalue's own storage and
// unlinking it from the open list.
func (th *Thread) closeUpvalues(boundary *value.Value) {
	for th.openUpvalues != nil && addr(th.openUpvalues.Location) >= addr(boundary) {
		uv := th.openUpvalues
		uv.Close()
		th.openUpvalues = uv.NextOpen
	}
}
