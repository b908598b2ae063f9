package runtime

import (
	"fmt"
	"reflect"

	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// Compare applies an ordered comparison (< <= > >=) to two operands of
// numeric kind k. Comparisons involving NaN are false.
func Compare(op token.Token, k types.Kind, a, b any) (bool, error) {
	switch k {
	case types.Byte:
		return compare[int8](op, a, b)
	case types.Short:
		return compare[int16](op, a, b)
	case types.Char:
		return compare[uint16](op, a, b)
	case types.Int:
		return compare[int32](op, a, b)
	case types.Long:
		return compare[int64](op, a, b)
	case types.Float:
		return compare[float32](op, a, b)
	case types.Double:
		return compare[float64](op, a, b)
	}
	return false, fmt.Errorf("%w: operator %s on %s", ErrOperand, op, k)
}

func compare[T types.Number](op token.Token, a, b any) (bool, error) {
	x, y, err := operands[T](a, b)
	if err != nil {
		return false, err
	}
	switch op {
	case token.LESS:
		return x < y, nil
	case token.LTE:
		return x <= y, nil
	case token.GREATER:
		return x > y, nil
	case token.GTE:
		return x >= y, nil
	}
	return false, fmt.Errorf("%w: operator %s", ErrOperand, op)
}

// Equal reports whether two values are equal. Numbers compare by value
// whatever their representation; other values use Go equality, and values
// of uncomparable types are never equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if types.IsNumber(a) && types.IsNumber(b) {
		if isFloat(a) || isFloat(b) {
			x, _ := types.As[float64](a)
			y, _ := types.As[float64](b)
			return x == y
		}
		if isUnsigned(a) && isUnsigned(b) {
			x, _ := types.As[uint64](a)
			y, _ := types.As[uint64](b)
			return x == y
		}
		x, _ := types.As[int64](a)
		y, _ := types.As[int64](b)
		return x == y
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}

func isUnsigned(v any) bool {
	switch v.(type) {
	case uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}
