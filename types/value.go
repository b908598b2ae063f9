package types

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Go representation of expression values:
//
//	boolean  bool      byte   int8     short  int16    char   uint16
//	int      int32     long   int64    float  float32  double float64
//	String   string    null   nil      objects: any other Go value
//
// Boxed values use the same representation as their primitive, except that a
// boxed value may also be nil.

// ErrConversion is returned when a value cannot be converted to a type.
var ErrConversion = errors.New("value conversion failed")

// Number is the set of Go types that can carry a numeric expression value.
type Number interface {
	constraints.Integer | constraints.Float
}

// Of returns the descriptor that best describes a Go value.
// Host-defined values are reported as Object; hosts that know better answer
// through their evaluation context.
func Of(v any) Type {
	switch v.(type) {
	case nil:
		return NullType
	case bool:
		return BooleanType
	case int8:
		return ByteType
	case int16, uint8:
		return ShortType
	case uint16:
		return CharType
	case int32:
		return IntType
	case int, int64, uint32, uint, uint64:
		return LongType
	case float32:
		return FloatType
	case float64:
		return DoubleType
	case string:
		return StringType
	}
	return ObjectType
}

// IsNumber reports whether v holds a Go numeric value.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// As converts any Go numeric value to T with Go conversion semantics
// (truncation towards zero, wrap-around on overflow).
func As[T Number](v any) (T, bool) {
	switch n := v.(type) {
	case int:
		return T(n), true
	case int8:
		return T(n), true
	case int16:
		return T(n), true
	case int32:
		return T(n), true
	case int64:
		return T(n), true
	case uint:
		return T(n), true
	case uint8:
		return T(n), true
	case uint16:
		return T(n), true
	case uint32:
		return T(n), true
	case uint64:
		return T(n), true
	case float32:
		return T(n), true
	case float64:
		return T(n), true
	}
	return 0, false
}

// Convert returns v in the runtime representation of t. Numeric values are
// widened or narrowed; reference types are passed through unchanged since
// checked casts need the host. Converting nil to an unboxed primitive fails.
func Convert(v any, t Type) (any, error) {
	if v == nil {
		if t.IsPrimitive() {
			return nil, fmt.Errorf("%w: null cannot be unboxed to %s", ErrConversion, t)
		}
		return nil, nil
	}

	switch t.Kind {
	case Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Byte:
		return numeric[int8](v, t)
	case Short:
		return numeric[int16](v, t)
	case Char:
		return numeric[uint16](v, t)
	case Int:
		return numeric[int32](v, t)
	case Long:
		return numeric[int64](v, t)
	case Float:
		return numeric[float32](v, t)
	case Double:
		return numeric[float64](v, t)
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Object, Class, Null:
		return v, nil
	}
	return nil, fmt.Errorf("%w: cannot convert %T to %s", ErrConversion, v, t)
}

func numeric[T Number](v any, t Type) (any, error) {
	n, ok := As[T](v)
	if !ok {
		return nil, fmt.Errorf("%w: cannot convert %T to %s", ErrConversion, v, t)
	}
	return n, nil
}
