package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kolkov/uexpr/types"
)

// Truthy reports whether a value counts as true where a condition is
// expected and truthiness coercion is enabled. Booleans are themselves,
// numbers are true unless zero or NaN, strings are true unless empty,
// slices and maps are true unless empty, null is false and any other host
// value is true.
func Truthy(v any) bool {
	switch n := v.(type) {
	case nil:
		return false
	case bool:
		return n
	case string:
		return n != ""
	case []byte:
		return len(n) > 0
	case []any:
		return len(n) > 0
	case map[string]any:
		return len(n) > 0
	case float32:
		return n != 0 && !math.IsNaN(float64(n))
	case float64:
		return n != 0 && !math.IsNaN(n)
	}
	if types.IsNumber(v) {
		n, _ := types.As[int64](v)
		return n != 0
	}
	return true
}

// ToString returns the text of a value as string concatenation shows it.
// null prints as "null", chars print as their character and floating-point
// values always carry a fraction or exponent.
func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return "null"
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case uint16:
		return string(rune(s))
	case float32:
		return formatFloat(float64(s), 32)
	case float64:
		return formatFloat(s, 64)
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

// Concat joins the string forms of two values.
func Concat(a, b any) string {
	var sb strings.Builder
	sb.WriteString(ToString(a))
	sb.WriteString(ToString(b))
	return sb.String()
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
