package uexpr

import "go.uber.org/zap"

// DefaultMaxExpressionLength bounds the length of expression source text.
const DefaultMaxExpressionLength = 10000

// Config holds the options of a Compiler.
type Config struct {
	// CoerceTruthiness lets non-boolean values appear where a condition is
	// expected (!, &&, || and the ternary condition). Null, false, zero,
	// NaN and empty strings are false; everything else is true.
	// When false (default), conditions must be boolean.
	CoerceTruthiness bool

	// ConstantFolding evaluates constant subexpressions at compile time
	// (default: true).
	ConstantFolding *bool

	// MaxExpressionLength is the longest accepted source text in bytes
	// (default: DefaultMaxExpressionLength).
	MaxExpressionLength int

	// Workers limits how many expressions CompileAll compiles at once
	// (default: 4).
	Workers int

	// Logger receives compilation diagnostics. If nil, the global zap
	// logger is used.
	Logger *zap.SugaredLogger

	// OnPublish is called once for every expression the Compiler caches.
	// The expression is already visible to Lookup when it runs, and the
	// Compile call that built it returns after the hook.
	OnPublish func(*Expression)
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.ConstantFolding == nil {
		fold := true
		c.ConstantFolding = &fold
	}
	if c.MaxExpressionLength <= 0 {
		c.MaxExpressionLength = DefaultMaxExpressionLength
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// Option configures a Compiler.
type Option func(*Config)

// WithCoerceTruthiness enables truthiness coercion of conditions.
func WithCoerceTruthiness(enabled bool) Option {
	return func(c *Config) { c.CoerceTruthiness = enabled }
}

// WithConstantFolding enables or disables compile-time constant folding.
func WithConstantFolding(enabled bool) Option {
	return func(c *Config) { c.ConstantFolding = &enabled }
}

// WithMaxExpressionLength sets the longest accepted source text.
func WithMaxExpressionLength(n int) Option {
	return func(c *Config) { c.MaxExpressionLength = n }
}

// WithWorkers sets the CompileAll concurrency limit.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// WithLogger sets the logger for compilation diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithOnPublish registers a hook called once per cached expression.
func WithOnPublish(fn func(*Expression)) Option {
	return func(c *Config) { c.OnPublish = fn }
}
