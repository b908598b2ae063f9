// Package binding defines the evaluation context expressions are compiled
// against and evaluated in.
//
// The context is split in two halves. A TypeScope answers static questions
// while an expression is being type-resolved; a Context supplies values while
// a compiled expression runs. Hosts usually implement both on one type.
package binding

//go:generate mockgen -source=binding.go -destination=mocks/mock_binding.go -package=mocks TypeScope Context

import "github.com/kolkov/uexpr/types"

// TypeScope answers static type queries during type resolution.
type TypeScope interface {
	// ResolveType returns the declared type of a named value.
	ResolveType(name string) (types.Type, bool)

	// PropertyType returns the type of property name on receiver.
	PropertyType(receiver types.Type, name string) (types.Type, bool)

	// MethodType returns the result type of calling method name on receiver
	// with arguments of the given types. A zero receiver means a function
	// of the root context.
	MethodType(receiver types.Type, name string, args []types.Type) (types.Type, bool)

	// IsAssignable reports whether a value of type from may be used where
	// type to is expected.
	IsAssignable(from, to types.Type) bool
}

// Context supplies runtime values to a compiled expression.
// Implementations must be safe for the concurrency their host needs; the
// compiled expression itself holds no mutable state.
type Context interface {
	// Lookup returns the value bound to name.
	Lookup(name string) (any, error)

	// Property reads property name from a non-nil receiver.
	Property(receiver any, name string) (any, error)

	// Invoke calls method on receiver. A nil receiver calls a function of
	// the root context.
	Invoke(receiver any, method string, args []any) (any, error)

	// TypeOf returns the runtime type of a value, used by checked casts.
	TypeOf(value any) types.Type

	// IsAssignable reports whether a value of type from may be used where
	// type to is expected.
	IsAssignable(from, to types.Type) bool
}
