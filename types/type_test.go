package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		typ  Type
		want string
	}{
		{IntType, "int"},
		{IntType.Box(), "Integer"},
		{CharType.Box(), "Character"},
		{BooleanType.Box(), "Boolean"},
		{StringType, "String"},
		{ObjectType, "Object"},
		{NullType, "null"},
		{ClassOf("com.example.Endpoint"), "com.example.Endpoint"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	for _, typ := range []Type{BooleanType, ByteType, ShortType, CharType, IntType, LongType, FloatType, DoubleType} {
		got, ok := Parse(typ.String())
		assert.True(t, ok)
		assert.Equal(t, typ, got)

		got, ok = Parse(typ.Box().String())
		assert.True(t, ok)
		assert.Equal(t, typ.Box(), got)
	}

	got, ok := Parse("Endpoint")
	assert.True(t, ok)
	assert.Equal(t, ClassOf("Endpoint"), got)

	_, ok = Parse("")
	assert.False(t, ok)
}

func TestPromote(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b, want Type
	}{
		{IntType, IntType, IntType},
		{ByteType, ShortType, ShortType},
		{CharType, IntType, IntType},
		{IntType, LongType, LongType},
		{LongType, FloatType, FloatType},
		{FloatType, DoubleType, DoubleType},
		{IntType.Box(), LongType, LongType},
		{DoubleType.Box(), IntType.Box(), DoubleType},
		{IntType, StringType, Type{}},
		{BooleanType, IntType, Type{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Promote(tt.a, tt.b), "%s, %s", tt.a, tt.b)
		assert.Equal(t, tt.want, Promote(tt.b, tt.a), "%s, %s", tt.b, tt.a)
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()
	assert.True(t, IntType.Box().IsNumeric())
	assert.False(t, IntType.Box().IsPrimitive())
	assert.True(t, IntType.Box().IsReference())
	assert.True(t, BooleanType.Box().IsBoolean())
	assert.False(t, Type{}.IsValid())
	assert.False(t, Type{}.IsReference())
	assert.Equal(t, IntType, IntType.Box().Unboxed())
	assert.Equal(t, StringType, StringType.Box())
	assert.Equal(t, -1, StringType.Rank())
	assert.Less(t, CharType.Rank(), IntType.Rank())
	assert.True(t, IsPrimitiveName("double"))
	assert.False(t, IsPrimitiveName("Double"))
}

func TestBuiltinAssignable(t *testing.T) {
	t.Parallel()
	base, derived := ClassOf("Base"), ClassOf("Derived")
	tests := []struct {
		from, to         Type
		assignable, done bool
	}{
		{IntType, IntType, true, true},
		{derived, ObjectType, true, true},
		{IntType, ObjectType, true, true},
		{NullType, StringType, true, true},
		{NullType, IntType.Box(), true, true},
		{NullType, IntType, false, true},
		{IntType, IntType.Box(), true, true},
		{IntType.Box(), IntType, true, true},
		{IntType, LongType, false, true},
		{IntType, StringType, false, true},
		{ObjectType, StringType, false, true},
		{Type{}, IntType, false, true},
		{derived, base, false, false},
		{StringType, base, false, false},
	}
	for _, tt := range tests {
		ok, decided := BuiltinAssignable(tt.from, tt.to)
		assert.Equal(t, tt.done, decided, "%s -> %s", tt.from, tt.to)
		if decided {
			assert.Equal(t, tt.assignable, ok, "%s -> %s", tt.from, tt.to)
		}
	}
}
