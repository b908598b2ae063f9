package uexpr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kolkov/uexpr/binding"
	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/compiler"
	"github.com/kolkov/uexpr/internal/marker"
	"github.com/kolkov/uexpr/internal/runtime"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/internal/vm"
	"github.com/kolkov/uexpr/types"
)

// Expression is a compiled expression.
// It is immutable and safe for concurrent evaluation.
type Expression struct {
	name        string
	declaration string
	source      string
	typ         types.Type
	tree        ast.Expr
	program     *compiler.Program
	pool        *vm.Pool
	coerce      bool
}

// Name returns the expression's identity, derived from its declaration and
// source text.
func (e *Expression) Name() string {
	return e.name
}

// Declaration returns the declaration the expression was compiled for.
func (e *Expression) Declaration() string {
	return e.declaration
}

// Source returns the expression text without markers.
func (e *Expression) Source() string {
	return e.source
}

// Type returns the static result type.
func (e *Expression) Type() types.Type {
	return e.typ
}

// AST returns the parsed expression printed back as source text.
func (e *Expression) AST() string {
	return ast.String(e.tree)
}

// Disassemble returns a human-readable listing of the compiled code.
func (e *Expression) Disassemble() string {
	return e.program.Disassemble()
}

// Evaluate runs the expression against ctx. Numeric and boolean results
// use the Go representation of Type: bool, int8 (byte), int16 (short),
// uint16 (char), int32 (int), int64 (long), float32 and float64.
// Failures are reported as *EvaluationError.
func (e *Expression) Evaluate(ctx binding.Context) (any, error) {
	v, err := e.pool.Run(ctx)
	if err != nil {
		return nil, e.evaluationError(err)
	}
	return v, nil
}

// EvaluateBool runs an expression used as a condition. With truthiness
// coercion any result is accepted; otherwise it must be a non-null boolean.
func (e *Expression) EvaluateBool(ctx binding.Context) (bool, error) {
	v, err := e.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	if e.coerce {
		return runtime.Truthy(v), nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, e.evaluationError(fmt.Errorf("%w: %s result is not boolean", vm.ErrCondition, e.typ))
	}
	return b, nil
}

func (e *Expression) evaluationError(err error) error {
	pos := token.NoPos
	msg := err.Error()
	var rt *vm.RuntimeError
	if errors.As(err, &rt) {
		pos = rt.Pos
		msg = rt.Message
		if rt.Err != nil {
			msg += ": " + rt.Err.Error()
		}
	}
	return &EvaluationError{
		SourceError: newSourceError(e.declaration, e.source, pos, msg, err),
		Name:        e.name,
	}
}

// Template is a string mixing literal text with embedded expressions, such
// as "timeout=#{t * 1000}ms".
type Template struct {
	source string
	parts  []templatePart
}

type templatePart struct {
	text string
	expr *Expression
}

// CompileTemplate compiles every expression embedded in text. The
// expressions are cached individually.
func (c *Compiler) CompileTemplate(declaration, text string, scope binding.TypeScope) (*Template, error) {
	segs, err := marker.Split(text)
	if err != nil {
		return nil, &ExpressionParsingError{newSourceError(declaration, text, token.NoPos, err.Error(), err)}
	}
	t := &Template{source: text}
	for _, seg := range segs {
		if !seg.Expr {
			t.parts = append(t.parts, templatePart{text: seg.Text})
			continue
		}
		expr, err := c.Compile(declaration, seg.Text, scope)
		if err != nil {
			return nil, err
		}
		t.parts = append(t.parts, templatePart{expr: expr})
	}
	return t, nil
}

// Source returns the template text.
func (t *Template) Source() string {
	return t.source
}

// Expressions returns the embedded expressions in source order.
func (t *Template) Expressions() []*Expression {
	var out []*Expression
	for _, p := range t.parts {
		if p.expr != nil {
			out = append(out, p.expr)
		}
	}
	return out
}

// Evaluate renders the template, converting expression values to strings.
func (t *Template) Evaluate(ctx binding.Context) (string, error) {
	var sb strings.Builder
	for _, p := range t.parts {
		if p.expr == nil {
			sb.WriteString(p.text)
			continue
		}
		v, err := p.expr.Evaluate(ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(runtime.ToString(v))
	}
	return sb.String(), nil
}
