package uexpr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kolkov/uexpr/internal/token"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrParse matches every *ExpressionParsingError.
	ErrParse = errors.New("expression parsing failed")

	// ErrCompile matches every *ExpressionCompilationError.
	ErrCompile = errors.New("expression compilation failed")

	// ErrEvaluation matches every *EvaluationError.
	ErrEvaluation = errors.New("expression evaluation failed")
)

// SourceError locates a failure in an expression's source text.
type SourceError struct {
	Declaration string // Declaration the expression came from
	Source      string // Expression source without markers
	Line        int    // 1-based line number, 0 if unknown
	Column      int    // 1-based column number, 0 if unknown
	Message     string // Error description
	Err         error  // Underlying error

	offset int
}

func newSourceError(declaration, source string, pos token.Position, msg string, err error) SourceError {
	return SourceError{
		Declaration: declaration,
		Source:      source,
		Line:        pos.Line,
		Column:      pos.Column,
		Message:     msg,
		Err:         err,
		offset:      pos.Offset,
	}
}

// Offset returns the byte offset of the error within the source.
func (e *SourceError) Offset() int {
	return e.offset
}

// Pretty returns the message followed by the source and a pointer to the
// error location.
func (e *SourceError) Pretty() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteByte('\n')
	sb.WriteString(e.Source)
	sb.WriteByte('\n')
	col := e.offset
	if col <= len(e.Source) {
		col = utf8.RuneCountInString(e.Source[:col])
	}
	sb.WriteString(strings.Repeat(".", col))
	sb.WriteByte('^')
	return sb.String()
}

func (e *SourceError) describe(kind string) string {
	where := ""
	if e.Line > 0 {
		where = fmt.Sprintf(" at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("%s error in %q%s: %s", kind, e.Declaration, where, e.Message)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// ExpressionParsingError reports source text that is not a well-formed
// expression.
type ExpressionParsingError struct {
	SourceError
}

func (e *ExpressionParsingError) Error() string {
	return e.describe("parse")
}

// Is reports whether target is ErrParse.
func (e *ExpressionParsingError) Is(target error) bool {
	return target == ErrParse
}

// ExpressionCompilationError reports a well-formed expression that has no
// valid static type or cannot be lowered to code.
type ExpressionCompilationError struct {
	SourceError
}

func (e *ExpressionCompilationError) Error() string {
	return e.describe("compile")
}

// Is reports whether target is ErrCompile.
func (e *ExpressionCompilationError) Is(target error) bool {
	return target == ErrCompile
}

// EvaluationError reports a failure while evaluating a compiled expression.
type EvaluationError struct {
	SourceError

	// Name is the identity of the failing expression.
	Name string
}

func (e *EvaluationError) Error() string {
	return e.describe("evaluation")
}

// Is reports whether target is ErrEvaluation.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}
