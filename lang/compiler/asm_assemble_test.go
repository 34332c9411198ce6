package compiler_test

import (
	"testing"

	"github.com/mna/ember/lang/compiler"
	"github.com/stretchr/testify/require"
)

func TestAssembleRoundTripsThroughDisassemble(t *testing.T) {
	src := `
.constants
number 1
number 2
.code
constant 0
constant 1
add
print
nil
return
`
	chunk, err := compiler.Assemble(src)
	require.NoError(t, err)
	require.Equal(t, 2, len(chunk.Constants))

	dis := compiler.Disassemble(chunk, "test")
	require.Contains(t, dis, "constant")
	require.Contains(t, dis, "add")
	require.Contains(t, dis, "print")
	require.Contains(t, dis, "return")
}

func TestAssembleRejectsUnknownMnemonic(t *testing.T) {
	_, err := compiler.Assemble(".code\nbogus\n")
	require.Error(t, err)
}

func TestAssembleRejectsClosure(t *testing.T) {
	_, err := compiler.Assemble(".code\nclosure 0\n")
	require.Error(t, err)
}
