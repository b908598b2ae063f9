package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

func lit(v int32) *ast.Literal {
	return &ast.Literal{Value: v, Type: types.IntType}
}

func ref(name string) *ast.VariableRef {
	return &ast.VariableRef{Name: name}
}

// TestNodeInterface verifies all node types implement Node interface correctly.
func TestNodeInterface(t *testing.T) {
	t.Parallel()
	pos := token.Position{Line: 1, Column: 1, Offset: 0}
	endPos := token.Position{Line: 1, Column: 10, Offset: 9}

	nodes := []ast.Expr{
		&ast.Literal{BaseExpr: ast.MakeBaseExpr(pos, endPos)},
		&ast.VariableRef{BaseExpr: ast.MakeBaseExpr(pos, endPos)},
		&ast.PropertyAccess{BaseExpr: ast.MakeBaseExpr(pos, endPos)},
		&ast.MethodCall{BaseExpr: ast.MakeBaseExpr(pos, endPos)},
		&ast.UnaryOp{BaseExpr: ast.MakeBaseExpr(pos, endPos)},
		&ast.BinaryOp{BaseExpr: ast.MakeBaseExpr(pos, endPos)},
		&ast.Ternary{BaseExpr: ast.MakeBaseExpr(pos, endPos)},
		&ast.Cast{BaseExpr: ast.MakeBaseExpr(pos, endPos)},
	}
	for _, n := range nodes {
		assert.Equal(t, pos, n.Pos())
		assert.Equal(t, endPos, n.End())
	}
}

// TestWalk verifies AST walking visits every node once in source order.
func TestWalk(t *testing.T) {
	t.Parallel()
	// a.b(c) ? -d : (int) 1
	expr := &ast.Ternary{
		Cond: &ast.MethodCall{
			Receiver: ref("a"),
			Name:     "b",
			Args:     []ast.Expr{ref("c")},
		},
		WhenTrue:  &ast.UnaryOp{Op: token.SUB, Operand: ref("d")},
		WhenFalse: &ast.Cast{Target: types.IntType, TargetName: "int", Operand: lit(1)},
	}

	var names []string
	count := 0
	ast.Walk(expr, func(n ast.Node) bool {
		count++
		if r, ok := n.(*ast.VariableRef); ok {
			names = append(names, r.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a", "c", "d"}, names)
	assert.Equal(t, 8, count)
}

func TestWalkStops(t *testing.T) {
	t.Parallel()
	expr := &ast.BinaryOp{Op: token.ADD, Left: ref("a"), Right: ref("b")}
	count := 0
	ast.Walk(expr, func(ast.Node) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestInspectParents(t *testing.T) {
	t.Parallel()
	inner := &ast.PropertyAccess{Receiver: ref("user"), Name: "name"}
	expr := &ast.MethodCall{Name: "upper", Args: []ast.Expr{inner}}

	parents := map[ast.Node]ast.Node{}
	ast.Inspect(expr, func(n, parent ast.Node) bool {
		parents[n] = parent
		return true
	})
	assert.Nil(t, parents[expr])
	assert.Same(t, expr, parents[inner])
	assert.Same(t, inner, parents[inner.Receiver])
}

func TestIsConstant(t *testing.T) {
	t.Parallel()
	assert.True(t, ast.IsConstant(&ast.BinaryOp{Op: token.MUL, Left: lit(2), Right: lit(3)}))
	assert.True(t, ast.IsConstant(&ast.Cast{Target: types.LongType, Operand: lit(2)}))
	assert.False(t, ast.IsConstant(&ast.BinaryOp{Op: token.MUL, Left: lit(2), Right: ref("x")}))
	assert.False(t, ast.IsConstant(&ast.MethodCall{Name: "now"}))
}

type countVisitor struct{}

func (countVisitor) VisitLiteral(*ast.Literal) string               { return "literal" }
func (countVisitor) VisitVariableRef(*ast.VariableRef) string       { return "variable" }
func (countVisitor) VisitPropertyAccess(*ast.PropertyAccess) string { return "property" }
func (countVisitor) VisitMethodCall(*ast.MethodCall) string         { return "call" }
func (countVisitor) VisitUnaryOp(*ast.UnaryOp) string               { return "unary" }
func (countVisitor) VisitBinaryOp(*ast.BinaryOp) string             { return "binary" }
func (countVisitor) VisitTernary(*ast.Ternary) string               { return "ternary" }
func (countVisitor) VisitCast(*ast.Cast) string                     { return "cast" }

func TestAccept(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "literal", ast.Accept[string](lit(1), countVisitor{}))
	assert.Equal(t, "ternary", ast.Accept[string](&ast.Ternary{}, countVisitor{}))
	assert.Equal(t, "cast", ast.Accept[string](&ast.Cast{}, countVisitor{}))
}

func TestString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{
			"precedence kept",
			&ast.BinaryOp{Op: token.ADD, Left: lit(1), Right: &ast.BinaryOp{Op: token.MUL, Left: lit(2), Right: lit(3)}},
			"1 + 2 * 3",
		},
		{
			"grouping restored",
			&ast.BinaryOp{Op: token.MUL, Left: &ast.BinaryOp{Op: token.ADD, Left: lit(1), Right: lit(2)}, Right: lit(3)},
			"(1 + 2) * 3",
		},
		{
			"left associativity",
			&ast.BinaryOp{Op: token.SUB, Left: lit(1), Right: &ast.BinaryOp{Op: token.SUB, Left: lit(2), Right: lit(3)}},
			"1 - (2 - 3)",
		},
		{
			"nested ternary",
			&ast.Ternary{Cond: ref("a"), WhenTrue: lit(1), WhenFalse: &ast.Ternary{Cond: ref("b"), WhenTrue: lit(2), WhenFalse: lit(3)}},
			"a ? 1 : b ? 2 : 3",
		},
		{
			"ternary condition",
			&ast.Ternary{Cond: &ast.Ternary{Cond: ref("a"), WhenTrue: ref("b"), WhenFalse: ref("c")}, WhenTrue: lit(1), WhenFalse: lit(2)},
			"(a ? b : c) ? 1 : 2",
		},
		{
			"calls and properties",
			&ast.MethodCall{Receiver: &ast.PropertyAccess{Receiver: ref("user"), Name: "name"}, Name: "trim"},
			"user.name.trim()",
		},
		{
			"root function",
			&ast.MethodCall{Name: "max", Args: []ast.Expr{lit(1), ref("x")}},
			"max(1, x)",
		},
		{
			"unary",
			&ast.UnaryOp{Op: token.SUB, Operand: &ast.UnaryOp{Op: token.SUB, Operand: ref("x")}},
			"- -x",
		},
		{
			"not",
			&ast.UnaryOp{Op: token.NOT, Operand: &ast.BinaryOp{Op: token.AND, Left: ref("a"), Right: ref("b")}},
			"!(a && b)",
		},
		{
			"cast",
			&ast.Cast{Target: types.LongType, TargetName: "long", Operand: ref("x")},
			"(long) x",
		},
		{
			"class cast of negation",
			&ast.Cast{Target: types.ClassOf("Num"), TargetName: "Num", Operand: &ast.UnaryOp{Op: token.SUB, Operand: ref("x")}},
			"(Num) (-x)",
		},
		{
			"string and null literals",
			&ast.BinaryOp{Op: token.EQUALS, Left: &ast.Literal{Value: "a\"b", Type: types.StringType}, Right: &ast.Literal{Type: types.NullType}},
			`"a\"b" == null`,
		},
		{
			"raw literal",
			&ast.Literal{Value: int64(5), Type: types.LongType, Raw: "5L"},
			"5L",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ast.String(tt.expr))
		})
	}
}
