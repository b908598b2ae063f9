// Package marker recognizes expressions embedded in configuration strings.
//
// An expression is wrapped in "#{" and "}". A whole string may be one
// expression ("#{a + b}") or a template that mixes literal text with several
// expressions ("timeout=#{t}ms"). Braces inside quoted string literals do
// not close an expression.
package marker

import (
	"errors"
	"fmt"

	"github.com/kolkov/uexpr/internal/runtime"
)

const (
	// Open starts an embedded expression.
	Open = "#{"

	// Close ends an embedded expression.
	Close = "}"
)

// ErrUnterminated is returned when an opened expression has no matching close.
var ErrUnterminated = errors.New("unterminated expression")

var openPattern = runtime.MustCompile(`#\{`)

// Segment is one piece of a split string.
type Segment struct {
	// Text is literal text, or the expression source without its markers.
	Text string

	// Expr reports whether Text is an expression.
	Expr bool

	// Offset is the byte offset of Text in the original string.
	Offset int
}

// IsExpression reports whether s as a whole is a single wrapped expression.
func IsExpression(s string) bool {
	loc := openPattern.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return false
	}
	end, ok := closeIndex(s, len(Open))
	return ok && end == len(s)-1
}

// Strip returns the expression inside s if s is a single wrapped
// expression, and s itself otherwise.
func Strip(s string) (string, bool) {
	if !IsExpression(s) {
		return s, false
	}
	return s[len(Open) : len(s)-len(Close)], true
}

// HasExpression reports whether s contains an expression opener.
func HasExpression(s string) bool {
	return openPattern.MatchString(s)
}

// Split breaks s into literal and expression segments in source order.
// Empty literal segments are omitted.
func Split(s string) ([]Segment, error) {
	var segs []Segment
	pos := 0
	for _, loc := range openPattern.FindAllStringIndex(s, -1) {
		if loc[0] < pos {
			// opener inside a previous expression
			continue
		}
		end, ok := closeIndex(s, loc[1])
		if !ok {
			return nil, fmt.Errorf("%w at offset %d", ErrUnterminated, loc[0])
		}
		if loc[0] > pos {
			segs = append(segs, Segment{Text: s[pos:loc[0]], Offset: pos})
		}
		segs = append(segs, Segment{Text: s[loc[1]:end], Expr: true, Offset: loc[1]})
		pos = end + len(Close)
	}
	if pos < len(s) {
		segs = append(segs, Segment{Text: s[pos:], Offset: pos})
	}
	return segs, nil
}

// closeIndex finds the brace closing an expression whose body starts at i.
func closeIndex(s string, i int) (int, bool) {
	depth := 0
	var quote byte
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return i, true
			}
			depth--
		}
	}
	return 0, false
}
