package value

// fnv1a hashes a byte slice with the 32-bit FNV-1a algorithm, cached in
// String.Hash. The VM's intern table is a Go map keyed by content and Table
// is keyed by pointer, so neither reads Hash.
func fnv1a(b []byte) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for _, c := range b {
		h ^= uint32(c)
		h *= prime32
	}
	return h
}

// String is an interned byte sequence. Every distinct byte sequence has
// exactly one live String, enforced by the VM's string table; consequently
// String equality and comparison reduce to pointer identity. SET_INDEX on a
// string edits Chars in place (see lang/machine's setIndex).
type String struct {
	Object
	Chars []byte
	Hash  uint32
}

var _ Obj = (*String)(nil)

// NewStringUninterned builds a String object directly, bypassing the intern
// table. The VM's internString calls it for strings it interns; the
// compiler and assembler call it for constant-pool strings, which the VM
// re-interns through internString when it loads them.
func NewStringUninterned(chars []byte) *String {
	s := &String{Chars: chars, Hash: fnv1a(chars)}
	s.Kind = KindString
	return s
}

func (s *String) String() string   { return string(s.Chars) }
func (s *String) TypeName() string { return "string" }

// Len returns the byte length, used by the len() native and by GET_INDEX's
// single-character string semantics.
func (s *String) Len() int { return len(s.Chars) }
