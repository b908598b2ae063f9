package uexpr_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kolkov/uexpr"
	"github.com/kolkov/uexpr/binding"
	"github.com/kolkov/uexpr/internal/runtime"
	"github.com/kolkov/uexpr/internal/semantic"
	"github.com/kolkov/uexpr/types"
)

func testScope() *binding.Map {
	return binding.NewMap().
		Class("Base", "", map[string]types.Type{"id": types.LongType}).
		Class("Derived", "Base", nil).
		Set("cond", types.BooleanType, true).
		Set("retries", types.IntType, int32(3)).
		Set("zero", types.IntType, int32(0)).
		Set("ratio", types.DoubleType, 0.25).
		Set("name", types.StringType, "svc").
		Set("derived", types.ClassOf("Derived"), &binding.Object{Class: "Derived", Fields: map[string]any{"id": int64(2)}}).
		Set("base", types.ClassOf("Base"), &binding.Object{Class: "Base", Fields: map[string]any{"id": int64(1)}})
}

func TestCompileAndEvaluate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text string
		want any
	}{
		{"1 + 2", int32(3)},
		{"#{1 + 2}", int32(3)},
		{"retries * 2 + 1L", int64(7)},
		{"retries / 2.0", 1.5},
		{"ratio * 4 == 1", true},
		{`name + "-" + retries`, "svc-3"},
		{"name.length() > 2 && cond", true},
		{"cond ? derived.id : base.id", int64(2)},
		{"(byte) (retries * 100)", int8(44)},
		{"null", nil},
	}

	c := uexpr.New()
	scope := testScope()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			expr, err := c.Compile("Test#value", tt.text, scope)
			require.NoError(t, err)
			got, err := expr.Evaluate(scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResultTypes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text string
		want types.Type
	}{
		{"true ? 1 : 2", types.IntType},
		{"true ? 1 : 2.0", types.DoubleType},
		{`cond ? "a" : 1`, types.ObjectType},
		{"cond ? derived : base", types.ClassOf("Base")},
		{"cond ? base : derived", types.ClassOf("Base")},
		{"retries + 1L", types.LongType},
		{"(Integer) retries", types.IntType.Box()},
	}

	c := uexpr.New()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			expr, err := c.Compile("Test#type", tt.text, testScope())
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.Type())
		})
	}
}

// TestRoundTrip checks that recompiling a declaration and text yields the
// same identity and artifact.
func TestRoundTrip(t *testing.T) {
	t.Parallel()
	scope := testScope()
	c := uexpr.New()

	a, err := c.Compile("Client#timeout", "retries * 1000", scope)
	require.NoError(t, err)
	b, err := c.Compile("Client#timeout", "retries * 1000", scope)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Regexp(t, `^Client_timeout\$Expr[0-9a-f]{16}$`, a.Name())
	assert.Equal(t, "Client#timeout", a.Declaration())
	assert.Equal(t, "retries * 1000", a.Source())

	// A fresh compiler derives the same identity and an equivalent program.
	other, err := uexpr.New().Compile("Client#timeout", "retries * 1000", scope)
	require.NoError(t, err)
	assert.Equal(t, a.Name(), other.Name())
	assert.Equal(t, a.Disassemble(), other.Disassemble())

	va, err := a.Evaluate(scope)
	require.NoError(t, err)
	vo, err := other.Evaluate(scope)
	require.NoError(t, err)
	assert.Equal(t, va, vo)

	d, err := c.Compile("Client#retries", "retries * 1000", scope)
	require.NoError(t, err)
	assert.NotEqual(t, a.Name(), d.Name())
}

func TestCacheManagement(t *testing.T) {
	t.Parallel()
	scope := testScope()
	c := uexpr.New()

	a := c.MustCompile("D", "1", scope)
	c.MustCompile("D", "2", scope)
	assert.Equal(t, 2, c.Len())

	got, ok := c.Lookup("D", "1")
	assert.True(t, ok)
	assert.Same(t, a, got)

	c.Forget("D", "1")
	_, ok = c.Lookup("D", "1")
	assert.False(t, ok)
	assert.NotSame(t, a, c.MustCompile("D", "1", scope))

	c.Reset()
	assert.Equal(t, 0, c.Len())

	assert.Panics(t, func() { c.MustCompile("D", "1 +", scope) })
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text   string
		offset int
	}{
		{"1 +", 3},
		{"(1 + 2", 6},
		{"a ? b", 5},
		{"1 $ 2", 2},
	}

	c := uexpr.New()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			_, err := c.Compile("Test#parse", tt.text, testScope())
			var pe *uexpr.ExpressionParsingError
			require.ErrorAs(t, err, &pe)
			assert.ErrorIs(t, err, uexpr.ErrParse)
			assert.NotErrorIs(t, err, uexpr.ErrCompile)
			assert.Equal(t, tt.offset, pe.Offset())
			assert.Equal(t, tt.text, pe.Source)
			assert.Contains(t, pe.Error(), `"Test#parse"`)
		})
	}
}

func TestCompilationErrors(t *testing.T) {
	t.Parallel()
	c := uexpr.New()

	_, err := c.Compile("Test#cond", "1 ? 2 : 3", testScope())
	var ce *uexpr.ExpressionCompilationError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, uexpr.ErrCompile)
	var tre *semantic.TypeResolutionError
	assert.ErrorAs(t, err, &tre)
	assert.Contains(t, ce.Message, "condition must be boolean")
	assert.Equal(t, 0, ce.Offset())

	_, err = c.Compile("Test#unknown", "retries + missing", testScope())
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 10, ce.Offset())
	assert.Equal(t, "unknown name \"missing\"\nretries + missing\n..........^", ce.Pretty())

	// Failures are not cached.
	assert.Equal(t, 0, c.Len())
}

func TestMaxExpressionLength(t *testing.T) {
	t.Parallel()
	c := uexpr.New(uexpr.WithMaxExpressionLength(5))
	_, err := c.Compile("D", "1 + 2 + 3", nil)
	assert.ErrorIs(t, err, uexpr.ErrParse)

	_, err = c.Compile("D", "#{1+2}", nil)
	assert.NoError(t, err)
}

func TestEvaluationErrors(t *testing.T) {
	t.Parallel()
	scope := testScope()
	expr := uexpr.New().MustCompile("Test#div", "1 + retries / zero", scope)

	_, err := expr.Evaluate(scope)
	var ee *uexpr.EvaluationError
	require.ErrorAs(t, err, &ee)
	assert.ErrorIs(t, err, uexpr.ErrEvaluation)
	assert.ErrorIs(t, err, runtime.ErrDivideByZero)
	assert.NotErrorIs(t, err, uexpr.ErrCompile)
	assert.Equal(t, expr.Name(), ee.Name)
	// "1 + retries / zero" fails at the division operator.
	assert.Equal(t, 12, ee.Offset())
	assert.Equal(t, 1, ee.Line)
	assert.Equal(t, 13, ee.Column)
	assert.True(t, strings.HasSuffix(ee.Pretty(), "\n1 + retries / zero\n"+strings.Repeat(".", 12)+"^"), ee.Pretty())
}

func TestEvaluateBool(t *testing.T) {
	t.Parallel()
	scope := testScope()

	strict := uexpr.New()
	ok, err := strict.MustCompile("D", "retries > 2", scope).EvaluateBool(scope)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = strict.MustCompile("D", "retries", scope).EvaluateBool(scope)
	assert.ErrorIs(t, err, uexpr.ErrEvaluation)

	_, err = strict.Compile("D", "zero ? 1 : 2", scope)
	assert.ErrorIs(t, err, uexpr.ErrCompile)

	lenient := uexpr.New(uexpr.WithCoerceTruthiness(true))
	ok, err = lenient.MustCompile("D", "zero", scope).EvaluateBool(scope)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := lenient.MustCompile("D", "name && retries ? 'on' : 'off'", scope).Evaluate(scope)
	require.NoError(t, err)
	assert.Equal(t, "on", v)
}

// TestShortCircuit counts host calls made by the untaken side of &&, ||
// and ?:, which must be zero.
func TestShortCircuit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text  string
		want  bool
		calls int32
	}{
		{"cond && touch()", false, 0},
		{"!cond || touch()", true, 0},
		{"cond ? touch() : false", false, 0},
		{"!cond ? touch() : touch()", true, 1},
		{"!cond && touch() || touch()", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			scope := binding.NewMap().
				Set("cond", types.BooleanType, false).
				Define("touch", binding.Func{
					Result: types.BooleanType,
					Params: []types.Type{},
					Call: func(any, []any) (any, error) {
						calls.Add(1)
						return true, nil
					},
				})

			expr, err := uexpr.New().Compile("Test#sc", tt.text, scope)
			require.NoError(t, err)
			got, err := expr.EvaluateBool(scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.calls, calls.Load())
		})
	}
}

// TestConcurrentCompile checks that N concurrent requests for one pair
// publish exactly one artifact and all callers observe it.
func TestConcurrentCompile(t *testing.T) {
	t.Parallel()
	const n = 50

	var published atomic.Int32
	c := uexpr.New(uexpr.WithOnPublish(func(*uexpr.Expression) { published.Add(1) }))
	scope := testScope()

	start := make(chan struct{})
	exprs := make([]*uexpr.Expression, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			expr, err := c.Compile("Concurrent#value", "retries * (cond ? 2 : 3)", scope)
			assert.NoError(t, err)
			exprs[i] = expr
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), published.Load())
	assert.Equal(t, 1, c.Len())
	for _, e := range exprs {
		assert.Same(t, exprs[0], e)
	}

	// Evaluation of the shared artifact is concurrency-safe too.
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := exprs[0].Evaluate(scope)
			assert.NoError(t, err)
			assert.Equal(t, int32(6), v)
		}()
	}
	wg.Wait()
}

func TestConstantFolding(t *testing.T) {
	t.Parallel()
	folded := uexpr.New().MustCompile("D", "2 * 3 + retries", testScope())
	assert.NotContains(t, folded.Disassemble(), "Multiply")

	plain := uexpr.New(uexpr.WithConstantFolding(false)).MustCompile("D", "2 * 3 + retries", testScope())
	assert.Contains(t, plain.Disassemble(), "Multiply")
	assert.Equal(t, "2 * 3 + retries", plain.AST())
}

func TestTemplate(t *testing.T) {
	t.Parallel()
	scope := testScope()
	c := uexpr.New()

	tmpl, err := c.CompileTemplate("Client#url", "http://#{name}:#{8000 + retries}/#{ratio}", scope)
	require.NoError(t, err)
	assert.Len(t, tmpl.Expressions(), 3)

	got, err := tmpl.Evaluate(scope)
	require.NoError(t, err)
	assert.Equal(t, "http://svc:8003/0.25", got)

	_, err = c.CompileTemplate("Client#url", "a=#{1 +}", scope)
	assert.ErrorIs(t, err, uexpr.ErrParse)

	_, err = c.CompileTemplate("Client#url", "a=#{1", scope)
	assert.ErrorIs(t, err, uexpr.ErrParse)
}

func TestCompileAll(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)
	c := uexpr.New(uexpr.WithWorkers(3), uexpr.WithLogger(zap.New(core).Sugar()))

	var requests []uexpr.Request
	for i := range 10 {
		requests = append(requests, uexpr.Request{Declaration: fmt.Sprintf("Bean%d#value", i), Text: fmt.Sprintf("retries + %d", i)})
	}
	requests = append(requests,
		uexpr.Request{Declaration: "Broken#parse", Text: "1 +"},
		uexpr.Request{Declaration: "Broken#type", Text: "1 ? 2 : 3"},
	)

	report := c.CompileAll(context.Background(), requests, testScope())
	require.Len(t, report.Results, len(requests))
	for _, res := range report.Results[:10] {
		assert.NoError(t, res.Err)
		assert.NotNil(t, res.Expression)
	}

	failed := report.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, "Broken#parse", failed[0].Declaration)
	assert.ErrorIs(t, report.Err(), uexpr.ErrParse)
	assert.ErrorIs(t, report.Err(), uexpr.ErrCompile)

	entries := logs.FilterMessage("expression compilation failed").All()
	require.Len(t, entries, 2)
	declarations := []any{entries[0].ContextMap()["declaration"], entries[1].ContextMap()["declaration"]}
	assert.ElementsMatch(t, []any{"Broken#parse", "Broken#type"}, declarations)
}

func TestCompileAllCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := uexpr.New(uexpr.WithLogger(zap.NewNop().Sugar()))
	report := c.CompileAll(ctx, []uexpr.Request{{Declaration: "D", Text: "1"}}, nil)
	require.Len(t, report.Results, 1)
	assert.True(t, errors.Is(report.Err(), context.Canceled))
	assert.Equal(t, 0, c.Len())
}

func TestLogr(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)
	c := uexpr.New(uexpr.WithLogger(zap.New(core).Sugar()))

	c.Logr().WithName("host").Info("through logr", "declaration", "Bean#value")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "through logr", entries[0].Message)
	assert.Equal(t, "host", entries[0].LoggerName)
	assert.Equal(t, "Bean#value", entries[0].ContextMap()["declaration"])
}

func TestOnPublishSeesCachedExpression(t *testing.T) {
	t.Parallel()
	var (
		c     *uexpr.Compiler
		calls int
		found *uexpr.Expression
	)
	c = uexpr.New(uexpr.WithOnPublish(func(e *uexpr.Expression) {
		calls++
		found, _ = c.Lookup("Bean#value", "retries + 1")
	}))

	expr, err := c.Compile("Bean#value", "retries + 1", testScope())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Same(t, expr, found)
}
