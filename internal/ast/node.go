// Package ast defines the abstract syntax tree for expressions.
//
// The AST is a closed set of expression variants. Nodes are immutable once
// the parser returns them: later stages never modify a node, they record
// facts about it in side tables keyed by node identity.
//
// Node hierarchy:
//
//	Node (interface)
//	└── Expr (interface) - expressions that produce values
//	    ├── Literal - numeric, string, boolean and null literals
//	    ├── VariableRef, PropertyAccess - references
//	    ├── MethodCall - method and root function calls
//	    ├── UnaryOp, BinaryOp, Ternary - operations
//	    └── Cast - explicit type conversion
package ast

import "github.com/kolkov/uexpr/internal/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	// Pos returns the position of the first character belonging to this node.
	Pos() token.Position

	// End returns the position of the first character immediately after this node.
	End() token.Position
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	exprNode() // marker method to prevent external implementations
}

// BaseExpr provides common fields for all expression nodes.
// Embedded in concrete expression types for position tracking.
type BaseExpr struct {
	StartPos token.Position // Position of first token
	EndPos   token.Position // Position after last token
}

func (b *BaseExpr) Pos() token.Position { return b.StartPos }
func (b *BaseExpr) End() token.Position { return b.EndPos }
func (b *BaseExpr) exprNode()           {}

// MakeBaseExpr creates a BaseExpr with the given positions.
func MakeBaseExpr(start, end token.Position) BaseExpr {
	return BaseExpr{StartPos: start, EndPos: end}
}

// IsConstant reports whether e is built from literals and operators only.
func IsConstant(e Expr) bool {
	constant := true
	Walk(e, func(n Node) bool {
		switch n.(type) {
		case *VariableRef, *PropertyAccess, *MethodCall:
			constant = false
		}
		return constant
	})
	return constant
}
