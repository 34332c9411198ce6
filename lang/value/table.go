package value

import "github.com/dolthub/swiss"

// Table is the open-addressed, linear-probing hash table from interned
// string to Value that backs globals, instance fields and class method
// tables. It is a thin wrapper over swiss.Map, keyed by *String pointer
// identity rather than by raw Go string, so lookups never rehash string
// content — the whole point of interning.
type Table struct {
	m *swiss.Map[*String, Value]
}

// NewTable returns a table with initial capacity for at least size entries.
func NewTable(size int) *Table {
	if size < 1 {
		size = 1
	}
	return &Table{m: swiss.NewMap[*String, Value](uint32(size))}
}

func (t *Table) Get(key *String) (Value, bool) {
	return t.m.Get(key)
}

func (t *Table) Set(key *String, v Value) {
	t.m.Put(key, v)
}

func (t *Table) Delete(key *String) {
	t.m.Delete(key)
}

func (t *Table) Count() int {
	return int(t.m.Count())
}

// Iterate calls fn for every entry; fn returning false stops iteration
// early. Used by the GC to blacken table contents and by INHERIT to copy a
// superclass's method table.
func (t *Table) Iterate(fn func(key *String, v Value) bool) {
	t.m.Iter(func(k *String, v Value) (stop bool) {
		return !fn(k, v)
	})
}
