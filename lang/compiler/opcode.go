// Package compiler turns ember source text directly into bytecode chunks: a
// single-pass Pratt parser with lexical scope resolution and upvalue
// capture analysis.
package compiler

import "fmt"

// Opcode is a single bytecode instruction tag: an iota enum with a name
// table backing its String method and a per-opcode operand-width table.
type Opcode uint8

//nolint:revive
const (
	OP_ADD Opcode = iota
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_NEGATE

	OP_NOT
	OP_EQUAL
	OP_NOT_EQUAL
	OP_LESS
	OP_LESS_EQUAL
	OP_GREATER
	OP_GREATER_EQUAL

	OP_NIL
	OP_TRUE
	OP_FALSE
	OP_CONSTANT
	OP_CONSTANT_LONG

	OP_POP
	OP_POPN

	OP_DEFINE_GLOBAL
	OP_DEFINE_GLOBAL_LONG
	OP_GET_GLOBAL
	OP_GET_GLOBAL_LONG
	OP_SET_GLOBAL
	OP_SET_GLOBAL_LONG
	OP_GET_LOCAL
	OP_SET_LOCAL
	OP_GET_UPVALUE
	OP_SET_UPVALUE
	OP_CLOSE_UPVALUE

	OP_ARRAY
	OP_ARRAY_LONG
	OP_GET_INDEX
	OP_SET_INDEX

	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_LOOP

	OP_CALL
	OP_CLOSURE
	OP_CLOSURE_LONG
	OP_RETURN

	OP_CLASS
	OP_METHOD
	OP_GET_PROP
	OP_GET_PROP_LONG
	OP_SET_PROP
	OP_SET_PROP_LONG
	OP_INVOKE
	OP_INHERIT
	OP_GET_SUPER
	OP_SUPER_INVOKE

	// OP_PRINT pops one value, formats it, and writes it followed by a
	// newline to the VM's configured output (see DESIGN.md).
	OP_PRINT

	opcodeMax
)

var opcodeNames = [...]string{
	OP_ADD:                "add",
	OP_SUB:                "sub",
	OP_MUL:                "mul",
	OP_DIV:                "div",
	OP_MOD:                "mod",
	OP_NEGATE:             "negate",
	OP_NOT:                "not",
	OP_EQUAL:              "equal",
	OP_NOT_EQUAL:          "not_equal",
	OP_LESS:               "less",
	OP_LESS_EQUAL:         "less_equal",
	OP_GREATER:            "greater",
	OP_GREATER_EQUAL:      "greater_equal",
	OP_NIL:                "nil",
	OP_TRUE:               "true",
	OP_FALSE:              "false",
	OP_CONSTANT:           "constant",
	OP_CONSTANT_LONG:      "constant_long",
	OP_POP:                "pop",
	OP_POPN:               "popn",
	OP_DEFINE_GLOBAL:      "define_global",
	OP_DEFINE_GLOBAL_LONG: "define_global_long",
	OP_GET_GLOBAL:         "get_global",
	OP_GET_GLOBAL_LONG:    "get_global_long",
	OP_SET_GLOBAL:         "set_global",
	OP_SET_GLOBAL_LONG:    "set_global_long",
	OP_GET_LOCAL:          "get_local",
	OP_SET_LOCAL:          "set_local",
	OP_GET_UPVALUE:        "get_upvalue",
	OP_SET_UPVALUE:        "set_upvalue",
	OP_CLOSE_UPVALUE:      "close_upvalue",
	OP_ARRAY:              "array",
	OP_ARRAY_LONG:         "array_long",
	OP_GET_INDEX:          "get_index",
	OP_SET_INDEX:          "set_index",
	OP_JUMP:               "jump",
	OP_JUMP_IF_FALSE:      "jump_if_false",
	OP_LOOP:               "loop",
	OP_CALL:               "call",
	OP_CLOSURE:            "closure",
	OP_CLOSURE_LONG:       "closure_long",
	OP_RETURN:             "return",
	OP_CLASS:              "class",
	OP_METHOD:             "method",
	OP_GET_PROP:           "get_prop",
	OP_GET_PROP_LONG:      "get_prop_long",
	OP_SET_PROP:           "set_prop",
	OP_SET_PROP_LONG:      "set_prop_long",
	OP_INVOKE:             "invoke",
	OP_INHERIT:            "inherit",
	OP_GET_SUPER:          "get_super",
	OP_SUPER_INVOKE:       "super_invoke",
	OP_PRINT:              "print",
}

func (op Opcode) String() string {
	if op < Opcode(len(opcodeNames)) {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", byte(op))
}

// OperandWidth describes how many immediate bytes follow an opcode and how
// they are interpreted.
type OperandWidth int

const (
	NoOperand  OperandWidth = iota
	U8Operand               // a single byte: constant index, local/arg count, etc.
	U24Operand              // a 24-bit big-endian value: long constant/local/jump index
	U8U8Operand             // two bytes: INVOKE/SUPER_INVOKE's (name, argc) pair
)

// operandWidths records the operand shape of every opcode that isn't
// NoOperand; opcodes absent from the map take no operand.
var operandWidths = map[Opcode]OperandWidth{
	OP_CONSTANT:           U8Operand,
	OP_CONSTANT_LONG:      U24Operand,
	OP_POPN:               U24Operand,
	OP_DEFINE_GLOBAL:      U8Operand,
	OP_DEFINE_GLOBAL_LONG: U24Operand,
	OP_GET_GLOBAL:         U8Operand,
	OP_GET_GLOBAL_LONG:    U24Operand,
	OP_SET_GLOBAL:         U8Operand,
	OP_SET_GLOBAL_LONG:    U24Operand,
	OP_GET_LOCAL:          U24Operand,
	OP_SET_LOCAL:          U24Operand,
	OP_GET_UPVALUE:        U24Operand,
	OP_SET_UPVALUE:        U24Operand,
	OP_ARRAY:              U8Operand,
	OP_ARRAY_LONG:         U24Operand,
	OP_JUMP:               U24Operand,
	OP_JUMP_IF_FALSE:      U24Operand,
	OP_LOOP:               U24Operand,
	OP_CALL:               U8Operand,
	OP_CLOSURE:            U8Operand,
	OP_CLOSURE_LONG:       U24Operand,
	OP_CLASS:              U8Operand,
	OP_METHOD:             U8Operand,
	OP_GET_PROP:           U8Operand,
	OP_GET_PROP_LONG:      U24Operand,
	OP_SET_PROP:           U8Operand,
	OP_SET_PROP_LONG:      U24Operand,
	OP_INVOKE:             U8U8Operand,
	OP_GET_SUPER:          U8Operand,
	OP_SUPER_INVOKE:       U8U8Operand,
}

// Width returns op's operand shape.
func (op Opcode) Width() OperandWidth { return operandWidths[op] }
