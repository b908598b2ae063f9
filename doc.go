// Package uexpr compiles small, statically typed expressions embedded in
// configuration values and evaluates them against a host context.
//
// Expressions use a Java-like syntax: literals of the primitive types,
// strings and null; variables, properties and method calls; arithmetic,
// relational, equality and logical operators; the ternary operator; and
// casts. Every expression is type-checked before it runs, with numeric
// promotion (byte < short < char < int < long < float < double), boxed
// primitives, and class assignability answered by the host.
//
// # Quick Start
//
//	scope := binding.NewMap().
//	    Set("retries", types.IntType, int32(3)).
//	    Set("verbose", types.BooleanType, true)
//
//	c := uexpr.New()
//	expr, err := c.Compile("com.example.Client#timeout", "#{verbose ? retries * 2 : 1L}", scope)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := expr.Evaluate(scope) // int64(6)
//
// The type scope used for compiling and the context used for evaluation are
// separate interfaces in package binding; binding.Map implements both.
//
// # Caching
//
// A Compiler caches compiled expressions by identity, a name derived from
// the declaration and the source text (see [Expression.Name]). Concurrent
// requests for the same pair compile once and all receive the same
// *Expression. [Compiler.CompileAll] compiles many declarations in parallel
// and reports failures without stopping the others.
//
// # Templates
//
// [Compiler.CompileTemplate] handles strings mixing literal text with
// several expressions, as in "timeout=#{t * 1000}ms".
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [ExpressionParsingError]: malformed source text (matches [ErrParse])
//   - [ExpressionCompilationError]: type errors (matches [ErrCompile])
//   - [EvaluationError]: failures while running (matches [ErrEvaluation])
//
// Compile-time errors carry the offending position; Pretty renders it
// below the source.
package uexpr
