package ast

// Visitor defines the generic visitor pattern for AST traversal.
// Type parameter T is the return type of visit methods.
type Visitor[T any] interface {
	VisitLiteral(*Literal) T
	VisitVariableRef(*VariableRef) T
	VisitPropertyAccess(*PropertyAccess) T
	VisitMethodCall(*MethodCall) T
	VisitUnaryOp(*UnaryOp) T
	VisitBinaryOp(*BinaryOp) T
	VisitTernary(*Ternary) T
	VisitCast(*Cast) T
}

// Accept dispatches e to the matching method of v.
func Accept[T any](e Expr, v Visitor[T]) T {
	switch n := e.(type) {
	case *Literal:
		return v.VisitLiteral(n)
	case *VariableRef:
		return v.VisitVariableRef(n)
	case *PropertyAccess:
		return v.VisitPropertyAccess(n)
	case *MethodCall:
		return v.VisitMethodCall(n)
	case *UnaryOp:
		return v.VisitUnaryOp(n)
	case *BinaryOp:
		return v.VisitBinaryOp(n)
	case *Ternary:
		return v.VisitTernary(n)
	case *Cast:
		return v.VisitCast(n)
	}
	panic("ast: unknown expression type")
}

// Walk traverses an AST in depth-first order.
// For each node, it calls fn(node). If fn returns false,
// the children of that node are not visited.
//
// Example: Count all variable references
//
//	count := 0
//	ast.Walk(expr, func(n ast.Node) bool {
//	    if _, ok := n.(*ast.VariableRef); ok {
//	        count++
//	    }
//	    return true // continue traversal
//	})
func Walk(node Node, fn func(Node) bool) {
	Inspect(node, func(n, _ Node) bool { return fn(n) })
}

// Inspect traverses an AST with parent tracking.
// For each node, it calls fn(node, parent). The parent is nil for the root node.
// If fn returns false, the children of that node are not visited.
func Inspect(node Node, fn func(node, parent Node) bool) {
	inspect(node, nil, fn)
}

func inspect(node, parent Node, fn func(node, parent Node) bool) {
	if node == nil || !fn(node, parent) {
		return
	}

	switch n := node.(type) {
	case *Literal, *VariableRef:
		// no children

	case *PropertyAccess:
		inspect(n.Receiver, n, fn)

	case *MethodCall:
		if n.Receiver != nil {
			inspect(n.Receiver, n, fn)
		}
		for _, arg := range n.Args {
			inspect(arg, n, fn)
		}

	case *UnaryOp:
		inspect(n.Operand, n, fn)

	case *BinaryOp:
		inspect(n.Left, n, fn)
		inspect(n.Right, n, fn)

	case *Ternary:
		inspect(n.Cond, n, fn)
		inspect(n.WhenTrue, n, fn)
		inspect(n.WhenFalse, n, fn)

	case *Cast:
		inspect(n.Operand, n, fn)
	}
}
