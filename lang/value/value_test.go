package value_test

import (
	"testing"

	"github.com/mna/ember/lang/value"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	require.False(t, value.Nil.Truthy())
	require.False(t, value.Bool(false).Truthy())
	require.True(t, value.Bool(true).Truthy())
	require.True(t, value.Number(0).Truthy())
	require.True(t, value.NewObject(value.NewStringUninterned(nil)).Truthy())
}

func TestEqual(t *testing.T) {
	require.True(t, value.Number(1).Equal(value.Number(1)))
	require.False(t, value.Number(1).Equal(value.Number(2)))
	require.True(t, value.Nil.Equal(value.Nil))
	require.False(t, value.Nil.Equal(value.Bool(false)))

	a := value.NewStringUninterned([]byte("hi"))
	b := value.NewStringUninterned([]byte("hi"))
	// distinct allocations compare unequal: identity semantics, interning is
	// what makes equal-content strings compare equal (see lang/machine).
	require.False(t, value.NewObject(a).Equal(value.NewObject(b)))
	require.True(t, value.NewObject(a).Equal(value.NewObject(a)))
}

func TestNumberFormatting(t *testing.T) {
	require.Equal(t, "7", value.Number(7).String())
	require.Equal(t, "1.5", value.Number(1.5).String())
}

func TestArrayString(t *testing.T) {
	arr := value.NewArray([]value.Value{value.Number(1), value.Number(9), value.Number(3)})
	require.Equal(t, "[ 1, 9, 3 ]", arr.String())
}

func TestChunkLineTable(t *testing.T) {
	var c value.Chunk
	c.Write(0x01, 1)
	c.Write(0x02, 1)
	c.Write(0x03, 2)
	require.Equal(t, 1, c.LineFor(0))
	require.Equal(t, 1, c.LineFor(1))
	require.Equal(t, 2, c.LineFor(2))
	require.Equal(t, []value.LineRun{{Line: 1, Count: 2}, {Line: 2, Count: 1}}, c.Lines)
}
