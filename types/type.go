// Package types defines the nominal type descriptors used by the expression
// compiler and the Go value model expressions evaluate to.
//
// Primitive numeric kinds are ranked for promotion:
//
//	byte < short < char < int < long < float < double
//
// Every primitive kind also has a boxed (reference) form. Object is the top
// type and the fallback of type resolution; Class names a host type whose
// relationships are answered by the host.
package types

import "fmt"

// Kind identifies the shape of a type descriptor.
type Kind uint8

const (
	Invalid Kind = iota // invalid
	Boolean             // boolean
	Byte                // byte
	Short               // short
	Char                // char
	Int                 // int
	Long                // long
	Float               // float
	Double              // double
	String              // String
	Null                // null
	Object              // Object
	Class               // class
)

var kindNames = [...]string{
	Invalid: "invalid",
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Char:    "char",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	String:  "String",
	Null:    "null",
	Object:  "Object",
	Class:   "class",
}

var boxNames = [...]string{
	Boolean: "Boolean",
	Byte:    "Byte",
	Short:   "Short",
	Char:    "Character",
	Int:     "Integer",
	Long:    "Long",
	Float:   "Float",
	Double:  "Double",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsNumeric returns true for byte through double.
func (k Kind) IsNumeric() bool {
	return k >= Byte && k <= Double
}

// IsPrimitive returns true for boolean and the numeric kinds.
func (k Kind) IsPrimitive() bool {
	return k >= Boolean && k <= Double
}

// Type is a nominal type descriptor. Descriptors are compared with ==.
type Type struct {
	Kind  Kind
	Boxed bool   // reference form of a primitive kind
	Name  string // class name, only for Kind == Class
}

// Common descriptors.
var (
	BooleanType = Type{Kind: Boolean}
	ByteType    = Type{Kind: Byte}
	ShortType   = Type{Kind: Short}
	CharType    = Type{Kind: Char}
	IntType     = Type{Kind: Int}
	LongType    = Type{Kind: Long}
	FloatType   = Type{Kind: Float}
	DoubleType  = Type{Kind: Double}
	StringType  = Type{Kind: String}
	NullType    = Type{Kind: Null}
	ObjectType  = Type{Kind: Object}
)

// ClassOf returns the descriptor of a named host class.
func ClassOf(name string) Type {
	return Type{Kind: Class, Name: name}
}

// IsValid returns false for the zero descriptor.
func (t Type) IsValid() bool {
	return t.Kind != Invalid
}

// IsNumeric returns true for numeric kinds, boxed or not.
func (t Type) IsNumeric() bool {
	return t.Kind.IsNumeric()
}

// IsBoolean returns true for boolean and Boolean.
func (t Type) IsBoolean() bool {
	return t.Kind == Boolean
}

// IsPrimitive returns true for unboxed boolean and numeric types.
func (t Type) IsPrimitive() bool {
	return t.Kind.IsPrimitive() && !t.Boxed
}

// IsReference returns true for every valid non-primitive type.
func (t Type) IsReference() bool {
	return t.IsValid() && !t.IsPrimitive()
}

// Unboxed returns the primitive form of a boxed type; other types are
// returned unchanged.
func (t Type) Unboxed() Type {
	if t.Kind.IsPrimitive() {
		return Type{Kind: t.Kind}
	}
	return t
}

// Box returns the reference form of a primitive type; other types are
// returned unchanged.
func (t Type) Box() Type {
	if t.Kind.IsPrimitive() {
		return Type{Kind: t.Kind, Boxed: true}
	}
	return t
}

// Rank returns the promotion rank of a numeric type, or -1.
func (t Type) Rank() int {
	if !t.IsNumeric() {
		return -1
	}
	return int(t.Kind - Byte)
}

// String returns the source-level type name.
func (t Type) String() string {
	switch {
	case t.Kind == Class:
		return t.Name
	case t.Boxed && t.Kind.IsPrimitive():
		return boxNames[t.Kind]
	default:
		return t.Kind.String()
	}
}

// Promote returns the unboxed higher-ranked type of two numeric types.
// It returns the zero Type if either side is not numeric.
func Promote(a, b Type) Type {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Type{}
	}
	if a.Rank() >= b.Rank() {
		return a.Unboxed()
	}
	return b.Unboxed()
}

// IsPrimitiveName reports whether name is a primitive type keyword.
func IsPrimitiveName(name string) bool {
	switch name {
	case "boolean", "byte", "short", "char", "int", "long", "float", "double":
		return true
	}
	return false
}

// Parse maps a source-level type name to its descriptor. Unknown names are
// host classes.
func Parse(name string) (Type, bool) {
	if name == "" {
		return Type{}, false
	}
	for k := Boolean; k <= Double; k++ {
		if kindNames[k] == name {
			return Type{Kind: k}, true
		}
		if boxNames[k] == name {
			return Type{Kind: k, Boxed: true}, true
		}
	}
	switch name {
	case "String":
		return StringType, true
	case "Object":
		return ObjectType, true
	}
	return ClassOf(name), true
}

// BuiltinAssignable answers assignability questions that need no knowledge
// of the host's class hierarchy. decided is false when only the host can
// tell, which happens when a class is involved on both sides or a class
// meets String.
func BuiltinAssignable(from, to Type) (assignable, decided bool) {
	switch {
	case !from.IsValid() || !to.IsValid():
		return false, true
	case from == to:
		return true, true
	case to.Kind == Object:
		return true, true
	case from.Kind == Null:
		return to.IsReference(), true
	case from.Kind.IsPrimitive() && from.Unboxed() == to.Unboxed():
		// boxing or unboxing of the same primitive
		return true, true
	case from.Kind.IsPrimitive() || to.Kind.IsPrimitive():
		return false, true
	case from.Kind == Object:
		return false, true
	}
	return false, false
}
