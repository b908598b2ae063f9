// Package compiler lowers a type-resolved expression tree to bytecode for
// the VM.
//
// Every implicit conversion the type rules call for (numeric promotion,
// ternary joins, boxing and unboxing) is emitted as an explicit Convert
// instruction, so Program.Disassemble shows exactly what a compiled
// expression does at run time.
package compiler

import (
	"fmt"

	"github.com/kolkov/uexpr/internal/token"
)

// Opcode represents a virtual machine instruction or an inline operand.
// Operands (pool indices, kinds, counts, jump offsets) follow their opcode
// in the code stream.
type Opcode int32

const (
	// Nop does nothing.
	Nop Opcode = iota

	// Stack operations
	Const // Push constant: Const constIndex
	Dupe  // Duplicate top of stack
	Drop  // Discard top of stack

	// Context access
	Load     // Push named value: Load nameIndex
	Property // Replace receiver with property: Property nameIndex
	Invoke   // Call method on receiver: Invoke nameIndex argCount (receiver, args on stack)
	Call     // Call root function: Call nameIndex argCount (args on stack)

	// Conversions
	Convert   // Widen, narrow, box or unbox top of stack: Convert typeIndex
	CheckCast // Checked reference cast: CheckCast typeIndex
	Truthy    // Replace top of stack with its truthiness

	// Arithmetic operators (numeric kind operand)
	Add      // a + b: Add kind
	Subtract // a - b: Subtract kind
	Multiply // a * b: Multiply kind
	Divide   // a / b: Divide kind
	Modulo   // a % b: Modulo kind
	Negate   // -a: Negate kind

	// String concatenation
	Concat // a + b with at least one String operand

	// Comparison operators
	Equal        // a == b
	NotEqual     // a != b
	Less         // a < b: Less kind
	LessEqual    // a <= b: LessEqual kind
	Greater      // a > b: Greater kind
	GreaterEqual // a >= b: GreaterEqual kind

	// Logical operators
	Not // !a

	// Control flow
	Jump      // Unconditional jump: Jump offset
	JumpTrue  // Pop and jump if true: JumpTrue offset
	JumpFalse // Pop and jump if false: JumpFalse offset

	// opcodeCount is the number of opcodes (for validation).
	opcodeCount
)

var opcodeNames = [...]string{
	Nop:          "Nop",
	Const:        "Const",
	Dupe:         "Dupe",
	Drop:         "Drop",
	Load:         "Load",
	Property:     "Property",
	Invoke:       "Invoke",
	Call:         "Call",
	Convert:      "Convert",
	CheckCast:    "CheckCast",
	Truthy:       "Truthy",
	Add:          "Add",
	Subtract:     "Subtract",
	Multiply:     "Multiply",
	Divide:       "Divide",
	Modulo:       "Modulo",
	Negate:       "Negate",
	Concat:       "Concat",
	Equal:        "Equal",
	NotEqual:     "NotEqual",
	Less:         "Less",
	LessEqual:    "LessEqual",
	Greater:      "Greater",
	GreaterEqual: "GreaterEqual",
	Not:          "Not",
	Jump:         "Jump",
	JumpTrue:     "JumpTrue",
	JumpFalse:    "JumpFalse",
}

// String returns a human-readable name for the opcode.
func (op Opcode) String() string {
	if op >= 0 && op < opcodeCount {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int32(op))
}

// Operands returns the number of inline operands that follow op.
func (op Opcode) Operands() int {
	switch op {
	case Invoke, Call:
		return 2
	case Const, Load, Property, Convert, CheckCast,
		Add, Subtract, Multiply, Divide, Modulo, Negate,
		Less, LessEqual, Greater, GreaterEqual,
		Jump, JumpTrue, JumpFalse:
		return 1
	}
	return 0
}

// IsJump returns true for the jump instructions.
func (op Opcode) IsJump() bool {
	return op == Jump || op == JumpTrue || op == JumpFalse
}

// IsKinded returns true for instructions whose operand is a numeric kind.
func (op Opcode) IsKinded() bool {
	switch op {
	case Add, Subtract, Multiply, Divide, Modulo, Negate,
		Less, LessEqual, Greater, GreaterEqual:
		return true
	}
	return false
}

// Token returns the source operator of an arithmetic or comparison
// instruction, or token.ILLEGAL.
func (op Opcode) Token() token.Token {
	switch op {
	case Add:
		return token.ADD
	case Subtract:
		return token.SUB
	case Multiply:
		return token.MUL
	case Divide:
		return token.DIV
	case Modulo:
		return token.MOD
	case Less:
		return token.LESS
	case LessEqual:
		return token.LTE
	case Greater:
		return token.GREATER
	case GreaterEqual:
		return token.GTE
	}
	return token.ILLEGAL
}
