// Package ir defines the intermediate representation the binding generator
// builds from declarations and the emitters render.
package ir

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/broady/hostbind"
	"github.com/broady/hostbind/bindgen/decl"
)

// Schema is every namespace found in one package, grouped by source file.
type Schema struct {
	// Package is the package the namespaces are declared in.
	Package decl.PackageInfo

	// Files lists source files with at least one namespace, in load order.
	Files []File
}

// Namespaces returns every namespace of the schema in file order.
func (s *Schema) Namespaces() []Namespace {
	var out []Namespace
	for _, f := range s.Files {
		out = append(out, f.Namespaces...)
	}
	return out
}

// File groups the namespaces declared in one source file.
type File struct {
	// Path is the source file path.
	Path string

	Namespaces []Namespace
}

// OutputName returns the generated file name for the source file: its base
// name with ".go" replaced by suffix ("calc.go" → "calc_hostbind.go").
func (f File) OutputName(suffix string) string {
	return strings.TrimSuffix(filepath.Base(f.Path), ".go") + suffix
}

// Namespace is a generated namespace.
type Namespace struct {
	// Name is the script-visible namespace name.
	Name string

	// Description is the namespace documentation.
	Description string

	// TypeName is the annotated Go type (e.g. "Calculator").
	TypeName string

	// Package is the declaring package.
	Package decl.PackageInfo

	// Bindings are the namespace's bindings in method declaration order.
	Bindings []Binding

	Source decl.Source
}

// GoTypeName is the generated type implementing hostbind.Namespace:
// "Calculator" → "CalculatorNamespace".
func (ns Namespace) GoTypeName() string { return ns.TypeName + "Namespace" }

// RegistryName is the generated package-level variable holding the
// namespace's middleware: "Calculator" → "calculatorGlobalMiddlewares".
func (ns Namespace) RegistryName() string {
	r, size := utf8.DecodeRuneInString(ns.TypeName)
	return string(unicode.ToLower(r)) + ns.TypeName[size:] + "GlobalMiddlewares"
}

// Binding finds the binding with the given script-visible name.
func (ns *Namespace) Binding(name string) (*Binding, bool) {
	for i := range ns.Bindings {
		if ns.Bindings[i].Descriptor.Name == name {
			return &ns.Bindings[i], true
		}
	}
	return nil, false
}

// Binding is one generated method binding.
type Binding struct {
	// Method is the Go method name (e.g. "Add").
	Method string

	// Descriptor holds the binding's structural key. Function and
	// Middlewares are left unset; the generated code fills them in.
	Descriptor hostbind.MethodBinding

	Source decl.Source
}

// AccessorName is the generated method returning the binding:
// "Add" → "AddBinding".
func (b Binding) AccessorName() string { return b.Method + "Binding" }

// PredicateName is the generated method matching a binding against the
// accessor's structural key: "Add" → "AddBindingMatches". Accessor names end
// in "Binding" and predicate names in "Matches", so the two never collide.
func (b Binding) PredicateName() string { return b.Method + "BindingMatches" }

// NamespaceMethods are the methods every generated namespace type declares
// besides its accessors and predicates.
var NamespaceMethods = []string{"Name", "Description", "Bindings", "RegisterGlobalMiddlewares"}
