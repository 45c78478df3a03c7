// Package translate converts static declaration types into dynamic
// hostbind type descriptors.
package translate

import (
	"fmt"

	"github.com/broady/hostbind"
	"github.com/broady/hostbind/bindgen/decl"
)

// InvalidTypeError reports an asynchronous wrapper type in a position where
// it cannot be represented: anywhere except the outermost shape of a
// method's return type.
type InvalidTypeError struct {
	// Type is the printed form of the offending wrapper type.
	Type string

	// In is the printed form of the type being translated when the wrapper
	// is nested inside it; empty when the wrapper was translated directly.
	In string

	// ByValue is set for a return type holding the wrapper by value rather
	// than through a pointer.
	ByValue bool
}

func (e *InvalidTypeError) Error() string {
	if e.ByValue {
		return fmt.Sprintf("invalid return type %s: asynchronous results must be returned as *%s", e.Type, e.Type)
	}
	if e.In != "" && e.In != e.Type {
		return fmt.Sprintf("invalid type %s in %s: asynchronous values may only be the outermost return type", e.Type, e.In)
	}
	return fmt.Sprintf("invalid type %s: asynchronous values may only be the outermost return type", e.Type)
}

// Known maps qualified type names to the primitive they translate to.
var Known = map[string]hostbind.PrimitiveKind{
	"bool": hostbind.Bool,

	"untyped nil":                          hostbind.Null,
	"github.com/broady/hostbind.NullValue": hostbind.Null,

	"int":     hostbind.Integer,
	"int8":    hostbind.Integer,
	"int16":   hostbind.Integer,
	"int32":   hostbind.Integer,
	"int64":   hostbind.Integer,
	"uint":    hostbind.Integer,
	"uint8":   hostbind.Integer,
	"uint16":  hostbind.Integer,
	"uint32":  hostbind.Integer,
	"uint64":  hostbind.Integer,
	"uintptr": hostbind.Integer,
	"byte":    hostbind.Integer,
	"rune":    hostbind.Integer,

	"float32": hostbind.Float,
	"float64": hostbind.Float,

	"encoding/json.Number":                   hostbind.Number,
	"github.com/broady/hostbind.NumberValue": hostbind.Number,

	"string": hostbind.String,
}

// Translate returns the descriptor for t.
//
// It fails with *InvalidTypeError when t is, or contains, an asynchronous
// wrapper. Unrecognized types translate to Opaque and never fail.
func Translate(t decl.Type) (hostbind.TypeDescriptor, error) {
	return translate(t, t.String())
}

// TranslateReturn returns the descriptor for a method's return type.
// A pointer to an asynchronous wrapper at the outermost position is
// unwrapped exactly once; the wrapped type is then translated like any
// other. A wrapper returned by value fails with *InvalidTypeError.
func TranslateReturn(t decl.Type) (hostbind.TypeDescriptor, error) {
	if t.Kind == decl.KindFuture && t.Elem != nil {
		if !t.Nullable {
			return nil, &InvalidTypeError{Type: t.Name, ByValue: true}
		}
		return Translate(*t.Elem)
	}
	return Translate(t)
}

func translate(t decl.Type, root string) (hostbind.TypeDescriptor, error) {
	base, err := translateBase(t, root)
	if err != nil {
		return nil, err
	}
	if t.Nullable {
		return hostbind.Nullable(base), nil
	}
	return base, nil
}

func translateBase(t decl.Type, root string) (hostbind.TypeDescriptor, error) {
	if t.Kind == decl.KindFuture {
		return nil, &InvalidTypeError{Type: t.String(), In: root}
	}

	if t.Kind == decl.KindInterface && t.Empty {
		return hostbind.Dynamic(), nil
	}

	if kind, ok := Known[t.QualifiedName()]; ok {
		return hostbind.Primitive(kind), nil
	}

	switch t.Kind {
	case decl.KindList:
		if t.Elem == nil {
			break
		}
		elem, err := translate(*t.Elem, root)
		if err != nil {
			return nil, err
		}
		return hostbind.List(elem), nil

	case decl.KindMap:
		if t.Key == nil || t.Elem == nil {
			break
		}
		key, err := translate(*t.Key, root)
		if err != nil {
			return nil, err
		}
		value, err := translate(*t.Elem, root)
		if err != nil {
			return nil, err
		}
		return hostbind.Map(key, value), nil
	}

	return hostbind.Opaque(t.Name), nil
}
