// Package decl defines the declaration model the binding generator consumes.
//
// The model is independent of go/types and go/ast: providers
// (see package provider) adapt whatever reflection facility they use into
// these values, and the translator and generator depend only on this package.
package decl

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// String formats the location as "file:line:col" using the file's base name.
func (s Source) String() string {
	if s.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", filepath.Base(s.File), s.Line, s.Column)
}

// PackageInfo describes a Go package.
type PackageInfo struct {
	// Path is the import path (e.g., "github.com/foo/bar").
	Path string

	// Name is the package name (e.g., "bar").
	Name string

	// Dir is the filesystem directory, if known.
	Dir string

	// Scope lists the package-level identifiers declared outside generated
	// files, sorted.
	Scope []string
}

// TargetKind is the kind of declaration a namespace marker is attached to.
type TargetKind int

const (
	TargetType      TargetKind = iota // Defined non-interface type with methods
	TargetInterface                   // Interface type
	TargetAlias                       // Type alias
	TargetFunc                        // Function or method
	TargetValue                       // Variable or constant
	TargetGeneric                     // Generic type
)

func (k TargetKind) String() string {
	switch k {
	case TargetType:
		return "type"
	case TargetInterface:
		return "interface"
	case TargetAlias:
		return "alias"
	case TargetFunc:
		return "func"
	case TargetValue:
		return "value"
	case TargetGeneric:
		return "generic type"
	default:
		return "unknown"
	}
}

// Doc is a documentation comment as written, one entry per source line,
// comment markers included (e.g. "// Add returns a+b.").
type Doc []string

// Annotation is a marker attached to a declaration, e.g. a
// "//hostbind:permission auth.Admin()" directive.
type Annotation struct {
	// Name identifies the annotation's originating marker ("permission").
	Name string

	// Args is the argument text exactly as written, unevaluated.
	Args string

	// Source is where the annotation appears.
	Source Source
}

// Namespace is a declaration carrying the namespace marker.
type Namespace struct {
	// TypeName is the declared identifier (e.g. "Calculator").
	TypeName string

	// Target is the kind of declaration the marker is attached to.
	Target TargetKind

	// Name is the name given to the marker; empty when not given.
	Name string

	// File is the source file (compilation unit) holding the declaration.
	File string

	// Package is the declaring package.
	Package PackageInfo

	Doc     Doc
	Methods []Method
	Source  Source
}

// Method is a method of a namespace type.
type Method struct {
	Name string

	// Exported reports whether the method is visible outside its package.
	Exported bool

	// Promoted reports whether the method is inherited through an embedded
	// field rather than declared on the type itself.
	Promoted bool

	Params []Param

	// Results are the result types in order.
	Results []Type

	Annotations []Annotation
	Doc         Doc
	Source      Source
}

// Param is a formal parameter.
type Param struct {
	Name string
	Type Type

	// Variadic marks the final ...T parameter; Type is then the []T list.
	Variadic bool
}

// Kind classifies a Type's shape.
type Kind int

const (
	KindBasic     Kind = iota // Predeclared type; Name is its name ("int", "untyped nil")
	KindNamed                 // Defined type; Path and Name identify it
	KindList                  // Slice or array; Elem is the element
	KindMap                   // Map; Key and Elem
	KindInterface             // Interface; Empty reports whether it is any
	KindFuture                // Asynchronous wrapper; Elem is the wrapped type
	KindOther                 // Anything else (func, chan, struct literal...)
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindNamed:
		return "named"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindInterface:
		return "interface"
	case KindFuture:
		return "future"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Type is a static type.
type Type struct {
	Kind Kind

	// Name is the canonical printed form: qualified by package name for
	// types from other packages ("time.Time"), unqualified for types of
	// the declaring package ("Record") and for predeclared types.
	Name string

	// Path is the import path of a named type's package; empty otherwise.
	Path string

	// Obj is a named type's declared identifier, without package qualifier
	// or type arguments ("Time" for time.Time).
	Obj string

	Elem *Type
	Key  *Type

	// Empty reports whether an interface type has no methods.
	Empty bool

	// Nullable reports whether the value may be nil, i.e. it was reached
	// through a pointer.
	Nullable bool
}

// QualifiedName returns Path + "." + Obj for named types, Name otherwise.
// It identifies a type independently of how the declaring package prints it.
func (t Type) QualifiedName() string {
	if t.Path == "" || t.Obj == "" {
		return t.Name
	}
	return t.Path + "." + t.Obj
}

// String returns the printed name, with a leading "*" when nullable.
func (t Type) String() string {
	if t.Nullable {
		return "*" + t.Name
	}
	return t.Name
}

// Constructors, mostly for tests and hand-built declarations.

// Basic returns a predeclared type.
func Basic(name string) Type { return Type{Kind: KindBasic, Name: name} }

// Named returns a defined type from the package at path, printed as name.
func Named(path, name string) Type {
	return Type{Kind: KindNamed, Path: path, Name: name, Obj: ObjName(name)}
}

// ObjName returns the declared identifier within a printed type name:
// "Time" for "time.Time", "Pair" for "Pair[int, string]".
func ObjName(printed string) string {
	if i := strings.IndexByte(printed, '['); i >= 0 {
		printed = printed[:i]
	}
	if i := strings.LastIndexByte(printed, '.'); i >= 0 {
		printed = printed[i+1:]
	}
	return printed
}

// Any returns the empty interface.
func Any() Type { return Type{Kind: KindInterface, Name: "any", Empty: true} }

// ListOf returns a slice of elem.
func ListOf(elem Type) Type { return Type{Kind: KindList, Name: "[]" + elem.String(), Elem: &elem} }

// MapOf returns a map from key to elem.
func MapOf(key, elem Type) Type {
	return Type{Kind: KindMap, Name: "map[" + key.String() + "]" + elem.String(), Key: &key, Elem: &elem}
}

// FutureOf returns the asynchronous wrapper of elem.
func FutureOf(elem Type) Type {
	return Type{Kind: KindFuture, Name: "hostbind.Future[" + elem.String() + "]", Elem: &elem}
}

// Ptr returns t marked nullable.
func Ptr(t Type) Type {
	t.Nullable = true
	return t
}
