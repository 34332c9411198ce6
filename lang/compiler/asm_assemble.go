package compiler

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/ember/lang/value"
)

// mnemonics maps the lowercase opcode names Disassemble prints back to
// their Opcode, the inverse of opcodeNames, so Assemble can parse
// hand-written text built by reading a disassembly listing.
var mnemonics = func() map[string]Opcode {
	m := make(map[string]Opcode, int(opcodeMax))
	for op, name := range opcodeNames {
		if name != "" {
			m[name] = Opcode(op)
		}
	}
	return m
}()

// Assemble builds a Chunk directly from a small hand-written text format,
// bypassing the Pratt compiler entirely — meant for VM unit tests that
// need to drive specific instruction sequences (e.g. exercising an opcode
// the surface grammar can't reach directly) without going through source
// text. It does not support OP_CLOSURE's variable-length upvalue-capture
// trailer, the one instruction Disassemble also can't fully render.
//
// Format:
//
//	.constants
//	number 1.5
//	string "hello"
//	.code
//	constant 0
//	print
//	nil
//	return
//
// Each code line is "mnemonic [operand...]"; mnemonics match opcodeNames.
// U8U8Operand opcodes (invoke, super_invoke) take two operands. Blank
// lines and lines starting with '#' are ignored. Every instruction is
// attributed to the line number it appears on in the assembly text.
func Assemble(source string) (*value.Chunk, error) {
	chunk := &value.Chunk{}
	sc := bufio.NewScanner(strings.NewReader(source))

	section := ""
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if text == ".constants" || text == ".code" {
			section = text
			continue
		}

		switch section {
		case ".constants":
			if err := assembleConstant(chunk, text); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		case ".code":
			if err := assembleInstruction(chunk, text, line); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		default:
			return nil, fmt.Errorf("line %d: instruction outside .constants/.code section", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return chunk, nil
}

func assembleConstant(chunk *value.Chunk, text string) error {
	fields := strings.SplitN(text, " ", 2)
	if len(fields) != 2 {
		return fmt.Errorf("malformed constant directive %q", text)
	}
	switch fields[0] {
	case "number":
		n, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return err
		}
		chunk.AddConstant(value.Number(n))
	case "string":
		s, err := strconv.Unquote(strings.TrimSpace(fields[1]))
		if err != nil {
			return err
		}
		chunk.AddConstant(value.NewObject(value.NewStringUninterned([]byte(s))))
	case "nil":
		chunk.AddConstant(value.Nil)
	case "true":
		chunk.AddConstant(value.Bool(true))
	case "false":
		chunk.AddConstant(value.Bool(false))
	default:
		return fmt.Errorf("unknown constant kind %q", fields[0])
	}
	return nil
}

func assembleInstruction(chunk *value.Chunk, text string, line int) error {
	fields := strings.Fields(text)
	op, ok := mnemonics[fields[0]]
	if !ok {
		return fmt.Errorf("unknown mnemonic %q", fields[0])
	}
	if op == OP_CLOSURE || op == OP_CLOSURE_LONG {
		return fmt.Errorf("%q is not supported by the assembler", fields[0])
	}

	chunk.Write(byte(op), line)
	operands := fields[1:]

	switch op.Width() {
	case NoOperand:
		if len(operands) != 0 {
			return fmt.Errorf("%s takes no operand", fields[0])
		}
	case U8Operand:
		n, err := parseOperand(operands, 0)
		if err != nil {
			return err
		}
		chunk.Write(byte(n), line)
	case U24Operand:
		n, err := parseOperand(operands, 0)
		if err != nil {
			return err
		}
		writeU24(chunk, n, line)
	case U8U8Operand:
		a, err := parseOperand(operands, 0)
		if err != nil {
			return err
		}
		b, err := parseOperand(operands, 1)
		if err != nil {
			return err
		}
		chunk.Write(byte(a), line)
		chunk.Write(byte(b), line)
	}
	return nil
}

func parseOperand(operands []string, i int) (int, error) {
	if i >= len(operands) {
		return 0, fmt.Errorf("missing operand %d", i)
	}
	return strconv.Atoi(operands[i])
}

func writeU24(chunk *value.Chunk, n int, line int) {
	chunk.Write(byte(n>>16), line)
	chunk.Write(byte(n>>8), line)
	chunk.Write(byte(n), line)
}
