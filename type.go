package hostbind

import (
	"strings"
)

// Kind identifies the variant of a [TypeDescriptor].
type Kind int

const (
	KindDynamic   Kind = iota // Untyped value; the script runtime performs no checks
	KindPrimitive             // Built-in scalar (see PrimitiveKind)
	KindList                  // Ordered collection of one element type
	KindMap                   // Key/value collection
	KindOpaque                // User-defined or unrecognized host type, carried by name
	KindNullable              // Wraps another descriptor, admitting null
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDynamic:
		return "Dynamic"
	case KindPrimitive:
		return "Primitive"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindOpaque:
		return "Opaque"
	case KindNullable:
		return "Nullable"
	default:
		return "Unknown"
	}
}

// PrimitiveKind identifies a scalar type known to the script runtime.
type PrimitiveKind int

const (
	Bool PrimitiveKind = iota
	Null
	Integer
	Float
	Number // Integer or Float
	String
)

// String returns the string representation of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case Bool:
		return "Bool"
	case Null:
		return "Null"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Number:
		return "Number"
	case String:
		return "String"
	default:
		return "Unknown"
	}
}

// TypeDescriptor is the dynamic representation of a host type.
//
// All implementations are comparable value types: two descriptors built
// independently from equal inputs are == to each other. Use [EqualType]
// when a nil-safe comparison reads better.
type TypeDescriptor interface {
	// Kind returns the descriptor kind for type switching.
	Kind() Kind

	// String returns a compact human-readable form, e.g. "List<Integer?>".
	String() string

	// Ensure only types in this package can implement TypeDescriptor.
	sealed()
}

// DynamicType accepts any value.
type DynamicType struct{}

// PrimitiveType is a built-in scalar.
type PrimitiveType struct {
	Primitive PrimitiveKind
}

// ListType is an ordered collection.
type ListType struct {
	Element TypeDescriptor
}

// MapType is a key/value collection.
type MapType struct {
	Key   TypeDescriptor
	Value TypeDescriptor
}

// OpaqueType is a host type the runtime does not look into.
// Name is the type's printed form in the declaring package.
type OpaqueType struct {
	Name string
}

// NullableType admits null in addition to the values of Inner.
type NullableType struct {
	Inner TypeDescriptor
}

func (DynamicType) Kind() Kind   { return KindDynamic }
func (PrimitiveType) Kind() Kind { return KindPrimitive }
func (ListType) Kind() Kind      { return KindList }
func (MapType) Kind() Kind       { return KindMap }
func (OpaqueType) Kind() Kind    { return KindOpaque }
func (NullableType) Kind() Kind  { return KindNullable }

func (DynamicType) sealed()   {}
func (PrimitiveType) sealed() {}
func (ListType) sealed()      {}
func (MapType) sealed()       {}
func (OpaqueType) sealed()    {}
func (NullableType) sealed()  {}

func (DynamicType) String() string     { return "Dynamic" }
func (t PrimitiveType) String() string { return t.Primitive.String() }
func (t ListType) String() string      { return "List<" + typeString(t.Element) + ">" }
func (t MapType) String() string {
	return "Map<" + typeString(t.Key) + ", " + typeString(t.Value) + ">"
}
func (t OpaqueType) String() string   { return t.Name }
func (t NullableType) String() string { return typeString(t.Inner) + "?" }

func typeString(t TypeDescriptor) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// Dynamic returns the descriptor for an untyped value.
func Dynamic() TypeDescriptor { return DynamicType{} }

// Primitive returns the descriptor for a built-in scalar.
func Primitive(kind PrimitiveKind) TypeDescriptor { return PrimitiveType{Primitive: kind} }

// List returns the descriptor for an ordered collection of element.
func List(element TypeDescriptor) TypeDescriptor { return ListType{Element: element} }

// Map returns the descriptor for a key/value collection.
func Map(key, value TypeDescriptor) TypeDescriptor { return MapType{Key: key, Value: value} }

// Opaque returns the descriptor for a host type carried by name.
func Opaque(name string) TypeDescriptor { return OpaqueType{Name: name} }

// Nullable wraps inner so that it admits null.
//
// Descriptors that already admit null are returned unchanged: nullable
// descriptors, Dynamic and Primitive(Null).
func Nullable(inner TypeDescriptor) TypeDescriptor {
	switch t := inner.(type) {
	case NullableType, DynamicType:
		return inner
	case PrimitiveType:
		if t.Primitive == Null {
			return inner
		}
	}
	return NullableType{Inner: inner}
}

// EqualType reports whether a and b describe the same type.
func EqualType(a, b TypeDescriptor) bool {
	return a == b
}

// IsNullable reports whether t admits null.
func IsNullable(t TypeDescriptor) bool {
	switch t := t.(type) {
	case NullableType, DynamicType:
		return true
	case PrimitiveType:
		return t.Primitive == Null
	}
	return false
}

// Unwrap strips a Nullable wrapper, if any.
func Unwrap(t TypeDescriptor) TypeDescriptor {
	if n, ok := t.(NullableType); ok {
		return n.Inner
	}
	return t
}

// Depth returns the number of List/Map levels enclosing the innermost
// element of t. Nullable wrappers do not count.
func Depth(t TypeDescriptor) int {
	switch t := Unwrap(t).(type) {
	case ListType:
		return 1 + Depth(t.Element)
	case MapType:
		return 1 + Depth(t.Value)
	}
	return 0
}

// ParsePrimitiveKind returns the PrimitiveKind with the given name,
// case-insensitively.
func ParsePrimitiveKind(s string) (PrimitiveKind, bool) {
	for k := Bool; k <= String; k++ {
		if strings.EqualFold(k.String(), s) {
			return k, true
		}
	}
	return 0, false
}
