package uexpr

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/kolkov/uexpr/binding"
	"github.com/kolkov/uexpr/internal/cache"
	"github.com/kolkov/uexpr/internal/compiler"
	"github.com/kolkov/uexpr/internal/logging"
	"github.com/kolkov/uexpr/internal/marker"
	"github.com/kolkov/uexpr/internal/parser"
	"github.com/kolkov/uexpr/internal/semantic"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/internal/vm"
)

// Version is the uexpr version string.
const Version = "0.1.0"

// Compiler compiles expressions and caches them by identity.
// A Compiler is safe for concurrent use. It assumes that a declaration is
// always compiled against the same type scope.
type Compiler struct {
	config   Config
	registry *cache.Registry[*Expression]
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(&c.config)
	}
	c.config.applyDefaults()
	c.registry = cache.NewRegistry(c.published)
	return c
}

// Config returns the effective configuration.
func (c *Compiler) Config() Config {
	return c.config
}

func (c *Compiler) log() *zap.SugaredLogger {
	if c.config.Logger != nil {
		return c.config.Logger
	}
	return logging.Sugared()
}

// Logr returns the Compiler's logger as a logr.Logger, for hosts that log
// through logr.
func (c *Compiler) Logr() logr.Logger {
	return zapr.NewLogger(c.log().Desugar())
}

func (c *Compiler) published(id string, expr *Expression) {
	c.log().Debugw("expression published",
		"name", id,
		"declaration", expr.declaration,
		"type", expr.typ.String(),
	)
	if c.config.OnPublish != nil {
		c.config.OnPublish(expr)
	}
}

// Compile compiles the expression text found in declaration, resolving
// names against scope. text may be bare ("a + b") or wrapped in markers
// ("#{a + b}"). Compiling the same declaration and text again returns the
// cached *Expression.
//
// Errors are *ExpressionParsingError or *ExpressionCompilationError.
func (c *Compiler) Compile(declaration, text string, scope binding.TypeScope) (*Expression, error) {
	id := cache.Identity(declaration, text)
	expr, _, err := c.registry.GetOrCompile(id, func() (*Expression, error) {
		return c.build(id, declaration, text, scope)
	})
	return expr, err
}

// Lookup returns a previously compiled expression.
func (c *Compiler) Lookup(declaration, text string) (*Expression, bool) {
	return c.registry.Get(cache.Identity(declaration, text))
}

// Forget drops a cached expression so the next Compile builds it again.
func (c *Compiler) Forget(declaration, text string) {
	c.registry.Invalidate(cache.Identity(declaration, text))
}

// Reset drops every cached expression.
func (c *Compiler) Reset() {
	c.registry.Clear()
}

// Len returns the number of cached expressions.
func (c *Compiler) Len() int {
	return c.registry.Len()
}

// MustCompile is like Compile but panics if the expression cannot be
// compiled. It simplifies initialization of global expressions.
func (c *Compiler) MustCompile(declaration, text string, scope binding.TypeScope) *Expression {
	expr, err := c.Compile(declaration, text, scope)
	if err != nil {
		panic(err)
	}
	return expr
}

// build runs the pipeline for one expression.
func (c *Compiler) build(id, declaration, text string, scope binding.TypeScope) (*Expression, error) {
	source := text
	if inner, ok := marker.Strip(text); ok {
		source = inner
	}
	if len(source) > c.config.MaxExpressionLength {
		return nil, &ExpressionParsingError{newSourceError(declaration, "", token.NoPos,
			fmt.Sprintf("expression length %d exceeds maximum of %d", len(source), c.config.MaxExpressionLength), nil)}
	}

	tree, err := parser.Parse(source)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return nil, &ExpressionParsingError{newSourceError(declaration, source, pe.Pos, pe.Message, err)}
		}
		return nil, &ExpressionParsingError{newSourceError(declaration, source, token.NoPos, err.Error(), err)}
	}

	info, err := semantic.Resolve(tree, scope, semantic.Options{CoerceTruthiness: c.config.CoerceTruthiness})
	if err != nil {
		return nil, compilationError(declaration, source, err)
	}

	prog, err := compiler.Generate(tree, info)
	if err != nil {
		return nil, compilationError(declaration, source, err)
	}
	if *c.config.ConstantFolding {
		compiler.Optimize(prog)
	}

	return &Expression{
		name:        id,
		declaration: declaration,
		source:      source,
		typ:         prog.Result,
		tree:        tree,
		program:     prog,
		pool:        vm.NewPool(prog),
		coerce:      c.config.CoerceTruthiness,
	}, nil
}

func compilationError(declaration, source string, err error) error {
	var (
		tre *semantic.TypeResolutionError
		cge *compiler.CodeGenerationError
	)
	switch {
	case errors.As(err, &tre):
		return &ExpressionCompilationError{newSourceError(declaration, source, tre.Pos, tre.Message, err)}
	case errors.As(err, &cge):
		return &ExpressionCompilationError{newSourceError(declaration, source, cge.Pos, cge.Message, err)}
	}
	return &ExpressionCompilationError{newSourceError(declaration, source, token.NoPos, err.Error(), err)}
}
