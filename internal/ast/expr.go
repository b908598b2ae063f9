package ast

import (
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// -----------------------------------------------------------------------------
// Literals
// -----------------------------------------------------------------------------

// Literal represents a literal value.
// Examples: 42, 42L, 1.5f, 2.0, "text", true, null
type Literal struct {
	BaseExpr
	Value any        // Go value in the runtime representation of Type
	Type  types.Type // Fixed type of the literal form
	Raw   string     // Original source text
}

// -----------------------------------------------------------------------------
// References
// -----------------------------------------------------------------------------

// VariableRef represents a named value of the root context.
// Examples: user, timeout
type VariableRef struct {
	BaseExpr
	Name string
}

// PropertyAccess represents reading a property of a receiver.
// Examples: user.name, a.b.c
type PropertyAccess struct {
	BaseExpr
	Receiver Expr
	Name     string
}

// MethodCall represents a method call on a receiver, or a call of a root
// context function when Receiver is nil.
// Examples: name.trim(), max(a, b)
type MethodCall struct {
	BaseExpr
	Receiver Expr   // nil for root functions
	Name     string // Method name
	Args     []Expr // Arguments (may be empty)
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// UnaryOp represents a prefix operation.
// Examples: -x, +x, !flag
type UnaryOp struct {
	BaseExpr
	Op      token.Token // SUB, ADD or NOT
	Operand Expr
}

// BinaryOp represents a binary operation.
// Examples: a + b, x == y, p && q
type BinaryOp struct {
	BaseExpr
	Op    token.Token
	OpPos token.Position // Position of the operator
	Left  Expr
	Right Expr
}

// Ternary represents a conditional expression.
// Example: cond ? whenTrue : whenFalse
type Ternary struct {
	BaseExpr
	Cond      Expr
	WhenTrue  Expr
	WhenFalse Expr
}

// Cast represents an explicit conversion.
// Examples: (int) x, (long) 1, (com.acme.User) bean
type Cast struct {
	BaseExpr
	Target     types.Type // Declared target type
	TargetName string     // Type name as written
	Operand    Expr
}

// -----------------------------------------------------------------------------
// Compile-time checks
// -----------------------------------------------------------------------------

// Ensure all expression types implement Expr interface.
var (
	_ Expr = (*Literal)(nil)
	_ Expr = (*VariableRef)(nil)
	_ Expr = (*PropertyAccess)(nil)
	_ Expr = (*MethodCall)(nil)
	_ Expr = (*UnaryOp)(nil)
	_ Expr = (*BinaryOp)(nil)
	_ Expr = (*Ternary)(nil)
	_ Expr = (*Cast)(nil)
)
