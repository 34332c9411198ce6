package compiler

import (
	"fmt"
	"strings"

	"github.com/mna/ember/lang/value"
)

// Disassemble renders chunk as a human-readable instruction listing, one
// line per instruction with its offset, source line, mnemonic, operand and
// (for constant-table references) the constant's printed value.
func Disassemble(chunk *value.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = disassembleInstruction(&b, chunk, offset)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, chunk *value.Chunk, offset int) int {
	fmt.Fprintf(b, "%04d %4d ", offset, chunk.LineFor(offset))

	op := Opcode(chunk.Code[offset])
	switch op.Width() {
	case NoOperand:
		fmt.Fprintf(b, "%s\n", op)
		return offset + 1
	case U8Operand:
		arg := int(chunk.Code[offset+1])
		fmt.Fprintf(b, "%-16s %4d", op, arg)
		annotateConstant(b, op, chunk, arg)
		return offset + 2
	case U24Operand:
		arg := readU24(chunk.Code[offset+1:])
		fmt.Fprintf(b, "%-16s %4d", op, arg)
		annotateConstant(b, op, chunk, arg)
		return offset + 4
	case U8U8Operand:
		name := int(chunk.Code[offset+1])
		argc := int(chunk.Code[offset+2])
		fmt.Fprintf(b, "%-16s %4d %4d\n", op, name, argc)
		return offset + 3
	}
	fmt.Fprintf(b, "%s\n", op)
	return offset + 1
}

func isConstantOp(op Opcode) bool {
	switch op {
	case OP_CONSTANT, OP_CONSTANT_LONG,
		OP_DEFINE_GLOBAL, OP_DEFINE_GLOBAL_LONG,
		OP_GET_GLOBAL, OP_GET_GLOBAL_LONG,
		OP_SET_GLOBAL, OP_SET_GLOBAL_LONG,
		OP_GET_PROP, OP_GET_PROP_LONG,
		OP_SET_PROP, OP_SET_PROP_LONG,
		OP_CLASS, OP_METHOD, OP_GET_SUPER:
		return true
	}
	return false
}

func annotateConstant(b *strings.Builder, op Opcode, chunk *value.Chunk, idx int) {
	if isConstantOp(op) && idx < len(chunk.Constants) {
		fmt.Fprintf(b, " ; %s", chunk.Constants[idx].String())
	}
	b.WriteByte('\n')
}

func readU24(b []byte) int {
	return int(b[0])<<16 | int(b[1])<<8 | int(b[2])
}
