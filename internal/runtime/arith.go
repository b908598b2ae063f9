// Package runtime provides the value operations compiled expressions are
// evaluated with: arithmetic, comparison, equality, truthiness, string
// conversion and regular expressions.
//
// Operations take the static kind the compiler chose for an operator.
// Operands are expected to already hold the Go representation of that kind;
// other numeric representations are converted with Go semantics.
package runtime

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

var (
	// ErrDivideByZero is returned by integer division or remainder by zero.
	ErrDivideByZero = errors.New("division by zero")

	// ErrOperand is returned when an operand does not fit the operation.
	ErrOperand = errors.New("invalid operand")
)

// Arith applies a binary arithmetic operator (+ - * / %) to two operands of
// numeric kind k. Integer arithmetic wraps around on overflow; floating-point
// arithmetic follows IEEE 754.
func Arith(op token.Token, k types.Kind, a, b any) (any, error) {
	switch k {
	case types.Byte:
		return intArith[int8](op, a, b)
	case types.Short:
		return intArith[int16](op, a, b)
	case types.Char:
		return intArith[uint16](op, a, b)
	case types.Int:
		return intArith[int32](op, a, b)
	case types.Long:
		return intArith[int64](op, a, b)
	case types.Float:
		return floatArith[float32](op, a, b)
	case types.Double:
		return floatArith[float64](op, a, b)
	}
	return nil, fmt.Errorf("%w: operator %s on %s", ErrOperand, op, k)
}

// Negate returns -a for a numeric operand of kind k.
func Negate(k types.Kind, a any) (any, error) {
	switch k {
	case types.Byte:
		return negate[int8](a)
	case types.Short:
		return negate[int16](a)
	case types.Char:
		return negate[uint16](a)
	case types.Int:
		return negate[int32](a)
	case types.Long:
		return negate[int64](a)
	case types.Float:
		return negate[float32](a)
	case types.Double:
		return negate[float64](a)
	}
	return nil, fmt.Errorf("%w: negation of %s", ErrOperand, k)
}

func operands[T types.Number](a, b any) (T, T, error) {
	x, ok := a.(T)
	if !ok {
		if x, ok = types.As[T](a); !ok {
			return 0, 0, fmt.Errorf("%w: %T", ErrOperand, a)
		}
	}
	y, ok := b.(T)
	if !ok {
		if y, ok = types.As[T](b); !ok {
			return 0, 0, fmt.Errorf("%w: %T", ErrOperand, b)
		}
	}
	return x, y, nil
}

func intArith[T constraints.Integer](op token.Token, a, b any) (any, error) {
	x, y, err := operands[T](a, b)
	if err != nil {
		return nil, err
	}
	switch op {
	case token.ADD:
		return x + y, nil
	case token.SUB:
		return x - y, nil
	case token.MUL:
		return x * y, nil
	case token.DIV:
		if y == 0 {
			return nil, ErrDivideByZero
		}
		return x / y, nil
	case token.MOD:
		if y == 0 {
			return nil, ErrDivideByZero
		}
		return x % y, nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrOperand, op)
}

func floatArith[T constraints.Float](op token.Token, a, b any) (any, error) {
	x, y, err := operands[T](a, b)
	if err != nil {
		return nil, err
	}
	switch op {
	case token.ADD:
		return x + y, nil
	case token.SUB:
		return x - y, nil
	case token.MUL:
		return x * y, nil
	case token.DIV:
		return x / y, nil
	case token.MOD:
		return T(math.Mod(float64(x), float64(y))), nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrOperand, op)
}

func negate[T types.Number](a any) (any, error) {
	x, ok := a.(T)
	if !ok {
		if x, ok = types.As[T](a); !ok {
			return nil, fmt.Errorf("%w: %T", ErrOperand, a)
		}
	}
	return -x, nil
}
