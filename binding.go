package hostbind

import (
	"slices"
)

// NamedParamPrefix marks named parameter keys so they cannot collide with
// positional parameters of the same name.
const NamedParamPrefix = "#"

// Param is one entry of an ordered parameter map.
type Param struct {
	Name string
	Type TypeDescriptor
}

// Params is an ordered mapping from parameter name to type.
// Order is declaration order.
type Params []Param

// Equal reports whether p and q have the same names and types in the same order.
// A nil Params equals an empty one.
func (p Params) Equal(q Params) bool {
	return slices.EqualFunc(p, q, func(a, b Param) bool {
		return a.Name == b.Name && EqualType(a.Type, b.Type)
	})
}

// Lookup returns the type of the parameter with the given name.
func (p Params) Lookup(name string) (TypeDescriptor, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Type, true
		}
	}
	return nil, false
}

// Names returns the parameter names in order.
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.Name
	}
	return names
}

// MarshalJSON encodes p as a JSON object whose keys keep declaration order.
func (p Params) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, param := range p {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(param.Name)
		stream.WriteVal(param.Type)
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, stream.Error
	}
	return slices.Clone(stream.Buffer()), nil
}

// RawExpr is an unevaluated expression captured verbatim from source.
// Hosts interpret it; the generator never does.
type RawExpr struct {
	// Text is the expression source text.
	Text string

	// Pos is the "file:line:col" location the text was taken from.
	Pos string
}

// String returns the expression text.
func (e RawExpr) String() string { return e.Text }

// EqualPermissions reports whether a and b hold the same expression texts in
// the same order. Positions are ignored.
func EqualPermissions(a, b []RawExpr) bool {
	return slices.EqualFunc(a, b, func(x, y RawExpr) bool {
		return x.Text == y.Text
	})
}

// MethodBinding describes one host method exposed to scripts.
//
// The fields Name through Permissions form the binding's structural key:
// two bindings with equal keys are the same binding for routing, even when
// built independently. See [SameBinding].
type MethodBinding struct {
	// Name is the script-visible method name.
	Name string

	// Description is the method's documentation text.
	Description string

	// ReturnType describes the value the method resolves to. Asynchronous
	// results are described by the type they resolve to.
	ReturnType TypeDescriptor

	// PositionalParams are the positional parameters in declaration order.
	PositionalParams Params

	// NamedParams are the named parameters, keyed with NamedParamPrefix.
	NamedParams Params

	// Permissions are the permission requirements, in declaration order.
	Permissions []RawExpr

	// Function is a method expression for the underlying host method.
	// Its first argument is the receiver.
	Function any `json:"-"`

	// Middlewares holds the binding's process-wide middleware sequences.
	// Shared by every MethodBinding value built for the same method.
	Middlewares *Middlewares `json:"-"`
}

// PreMiddlewares returns the middleware run before the method.
func (b MethodBinding) PreMiddlewares() []Middleware {
	if b.Middlewares == nil {
		return nil
	}
	return b.Middlewares.Pre
}

// PostMiddlewares returns the middleware run after the method.
func (b MethodBinding) PostMiddlewares() []Middleware {
	if b.Middlewares == nil {
		return nil
	}
	return b.Middlewares.Post
}

// SameBinding reports whether a and b have equal structural keys.
// Function and Middlewares are not compared.
func SameBinding(a, b MethodBinding) bool {
	return a.Name == b.Name &&
		a.Description == b.Description &&
		EqualType(a.ReturnType, b.ReturnType) &&
		a.PositionalParams.Equal(b.PositionalParams) &&
		a.NamedParams.Equal(b.NamedParams) &&
		EqualPermissions(a.Permissions, b.Permissions)
}
