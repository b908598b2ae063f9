package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/lexer"
	"github.com/kolkov/uexpr/internal/parser"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// TestParsePrecedence checks grouping by printing the parsed tree with
// explicit structure.
func TestParsePrecedence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1 - 2 - 3", "1 - 2 - 3"},
		{"1 - (2 - 3)", "1 - (2 - 3)"},
		{"a || b && c", "a || b && c"},
		{"(a || b) && c", "(a || b) && c"},
		{"a == b < c", "a == b < c"},
		{"!a && b", "!a && b"},
		{"!(a && b)", "!(a && b)"},
		{"a ? b : c ? d : e", "a ? b : c ? d : e"},
		{"(a ? b : c) ? d : e", "(a ? b : c) ? d : e"},
		{"a || b ? 1 : 2", "a || b ? 1 : 2"},
		{"x.y.z", "x.y.z"},
		{"x.f(1, 2).g()", "x.f(1, 2).g()"},
		{"max(a, b + 1)", "max(a, b + 1)"},
		{"now()", "now()"},
		{"-x * 2", "-x * 2"},
		{"- -x", "- -x"},
		{"2 * -3", "2 * -3"},
		{"a % b / c", "a % b / c"},
		{"(long) x + 1", "(long) x + 1"},
		{"(long) (x + 1)", "(long) (x + 1)"},
		{`'it''s'`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			expr, err := parser.Parse(tt.src)
			if tt.want == "" {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.String(expr))
		})
	}
}

func TestParseStructure(t *testing.T) {
	t.Parallel()
	expr, err := parser.Parse("a ? b : c ? d : e")
	require.NoError(t, err)

	outer, ok := expr.(*ast.Ternary)
	require.True(t, ok)
	assert.IsType(t, &ast.VariableRef{}, outer.Cond)
	inner, ok := outer.WhenFalse.(*ast.Ternary)
	require.True(t, ok, "ternary must be right-associative")
	assert.Equal(t, "c", inner.Cond.(*ast.VariableRef).Name)

	expr, err = parser.Parse("user.name.trim()")
	require.NoError(t, err)
	call, ok := expr.(*ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "trim", call.Name)
	assert.Empty(t, call.Args)
	prop, ok := call.Receiver.(*ast.PropertyAccess)
	require.True(t, ok)
	assert.Equal(t, "name", prop.Name)

	expr, err = parser.Parse("max(1, 2)")
	require.NoError(t, err)
	call, ok = expr.(*ast.MethodCall)
	require.True(t, ok)
	assert.Nil(t, call.Receiver)
	assert.Len(t, call.Args, 2)
}

func TestParseLiterals(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src   string
		value any
		typ   types.Type
	}{
		{"42", int32(42), types.IntType},
		{"42L", int64(42), types.LongType},
		{"0x10", int32(16), types.IntType},
		{"0xFFFFFFFF", int32(-1), types.IntType},
		{"2147483647", int32(2147483647), types.IntType},
		{"-2147483648", int32(-2147483648), types.IntType},
		{"9223372036854775807L", int64(9223372036854775807), types.LongType},
		{"-9223372036854775808L", int64(-9223372036854775808), types.LongType},
		{"1.5", 1.5, types.DoubleType},
		{".5", 0.5, types.DoubleType},
		{"1e3", 1000.0, types.DoubleType},
		{"2d", 2.0, types.DoubleType},
		{"1.5f", float32(1.5), types.FloatType},
		{`"text"`, "text", types.StringType},
		{`'text'`, "text", types.StringType},
		{"true", true, types.BooleanType},
		{"false", false, types.BooleanType},
		{"null", nil, types.NullType},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			expr, err := parser.Parse(tt.src)
			require.NoError(t, err)
			lit, ok := expr.(*ast.Literal)
			require.True(t, ok, "got %T", expr)
			assert.Equal(t, tt.value, lit.Value)
			assert.Equal(t, tt.typ, lit.Type)
		})
	}
}

func TestParseCasts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src    string
		cast   bool
		target types.Type
	}{
		{"(int) x", true, types.IntType},
		{"(long) -x", true, types.LongType},
		{"(double) 1", true, types.DoubleType},
		{"(Integer) x", true, types.IntType.Box()},
		{"(String) x", true, types.StringType},
		{"(com.acme.User) bean", true, types.ClassOf("com.acme.User")},
		{"(Base) (x)", true, types.ClassOf("Base")},
		{"(Base) !x", true, types.ClassOf("Base")},
		{"(a) - b", false, types.Type{}},
		{"(a) + b", false, types.Type{}},
		{"(a)", false, types.Type{}},
		{"(a.b)", false, types.Type{}},
		{"(a) ? b : c", false, types.Type{}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			expr, err := parser.Parse(tt.src)
			require.NoError(t, err)
			cast, ok := expr.(*ast.Cast)
			require.Equal(t, tt.cast, ok, "got %T", expr)
			if ok {
				assert.Equal(t, tt.target, cast.Target)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src     string
		offset  int
		message string
	}{
		{"", 0, "empty expression"},
		{"1 +", 3, "unterminated expression"},
		{"(1 + 2", 6, "unbalanced parentheses"},
		{"1 + 2)", 5, "unbalanced parentheses"},
		{"f(1, 2", 6, "unbalanced parentheses"},
		{"a ? b", 5, "malformed ternary"},
		{"a ? b c", 6, "malformed ternary"},
		{"a b", 2, "expected end of expression"},
		{"1 2", 2, "expected end of expression"},
		{"a.", 2, "after '.'"},
		{"a.1", 1, "expected end of expression"},
		{"* 2", 0, "expected operand"},
		{"f(1 2)", 4, "in argument list"},
		{"2147483648", 0, "out of range for int"},
		{"-2147483649", 1, "out of range for int"},
		{"9223372036854775808L", 0, "out of range for long"},
		{"1e999", 0, "out of range for double"},
		{"1e99f", 0, "out of range for float"},
		{"a = 1", 2, "unexpected '='"},
		{`"open`, 0, "unterminated string"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			_, err := parser.Parse(tt.src)
			var parseErr *parser.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.offset, parseErr.Pos.Offset)
			assert.Contains(t, parseErr.Error(), tt.message)
		})
	}
}

func TestParseWrapsLexError(t *testing.T) {
	t.Parallel()
	_, err := parser.Parse("a # b")
	var lexErr *lexer.LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 2, lexErr.Pos.Offset)
}

func TestParseTokens(t *testing.T) {
	t.Parallel()
	toks, err := lexer.Tokenize("a + 1")
	require.NoError(t, err)
	expr, err := parser.ParseTokens(toks)
	require.NoError(t, err)
	assert.IsType(t, &ast.BinaryOp{}, expr)

	_, err = parser.ParseTokens(toks[:len(toks)-1])
	require.Error(t, err)
	_, err = parser.ParseTokens(nil)
	require.Error(t, err)
}

func TestParsePositions(t *testing.T) {
	t.Parallel()
	expr, err := parser.Parse(`a + "xy"`)
	require.NoError(t, err)
	bin := expr.(*ast.BinaryOp)
	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, bin.Pos())
	assert.Equal(t, 8, bin.End().Offset)
	assert.Equal(t, 4, bin.Right.Pos().Offset)
	assert.Equal(t, token.Position{Line: 1, Column: 3, Offset: 2}, bin.OpPos)
}

func TestParseNegatedReceiver(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"5.foo()", "5.foo()"},
		{"-5.foo()", "-5.foo()"},
		{"-5L.bar", "-5L.bar"},
		{"-5 + 1", "-5 + 1"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			expr, err := parser.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.String(expr))
		})
	}

	// The minus applies to the call, not to the receiver.
	expr, err := parser.Parse("-5.foo()")
	require.NoError(t, err)
	neg, ok := expr.(*ast.UnaryOp)
	require.True(t, ok, "got %T", expr)
	assert.Equal(t, token.SUB, neg.Op)
	call, ok := neg.Operand.(*ast.MethodCall)
	require.True(t, ok, "got %T", neg.Operand)
	assert.Equal(t, int32(5), call.Receiver.(*ast.Literal).Value)
}

func TestParseReprint(t *testing.T) {
	t.Parallel()
	// Printing and reparsing is stable.
	srcs := []string{
		"a.b(c, d ? 1 : 2L) + -3.5f * (x - y)",
		"!(a || b) && c != null",
		"(com.acme.Base) obj.parent ? 'x' : \"y\"",
		"(int) (a / b) % 7",
	}
	for _, src := range srcs {
		expr, err := parser.Parse(src)
		require.NoError(t, err, src)
		printed := ast.String(expr)
		again, err := parser.Parse(printed)
		require.NoError(t, err, printed)
		assert.Equal(t, printed, ast.String(again))
	}
}
