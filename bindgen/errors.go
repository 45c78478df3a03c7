package bindgen

import (
	"fmt"
	"strings"

	"github.com/broady/hostbind/bindgen/decl"
	"github.com/broady/hostbind/bindgen/translate"
)

// InvalidTypeError is returned when an asynchronous wrapper appears where it
// cannot be represented. It is always wrapped in a *MethodError.
type InvalidTypeError = translate.InvalidTypeError

// InvalidAnnotationTargetError reports a namespace marker attached to
// something other than a defined non-interface type.
type InvalidAnnotationTargetError struct {
	Name   string
	Target decl.TargetKind
	Source decl.Source
}

func (e *InvalidAnnotationTargetError) Error() string {
	return fmt.Sprintf("%s: namespace marker on %s %s: only defined non-interface types can be namespaces",
		e.Source, e.Target, e.Name)
}

// MethodError locates a failure in one method of a namespace type.
type MethodError struct {
	Type   string
	Method string
	Source decl.Source
	Err    error
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("%s: %s.%s: %v", e.Source, e.Type, e.Method, e.Err)
}

func (e *MethodError) Unwrap() error { return e.Err }

// InvalidSignatureError reports a method whose results cannot be described
// by one return type.
type InvalidSignatureError struct {
	Results []string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("too many results (%s): want at most one value and an optional trailing error",
		strings.Join(e.Results, ", "))
}

// DuplicateBindingError reports two methods of one namespace producing the
// same binding name.
type DuplicateBindingError struct {
	Namespace string
	Binding   string
	First     decl.Source
	Second    decl.Source
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("%s: duplicate binding %s.%s, first declared at %s", e.Second, e.Namespace, e.Binding, e.First)
}

// DuplicateNamespaceError reports two namespace types of one package
// resolving to the same namespace name.
type DuplicateNamespaceError struct {
	Name   string
	First  decl.Source
	Second decl.Source
}

func (e *DuplicateNamespaceError) Error() string {
	return fmt.Sprintf("%s: duplicate namespace %q, first declared at %s", e.Second, e.Name, e.First)
}

// IdentifierConflictError reports a Go identifier the generated code would
// declare twice: two generated names that coincide, or a generated name
// already declared by the package.
type IdentifierConflictError struct {
	// Ident is the conflicting identifier.
	Ident string

	// Type is the namespace type the identifier is generated for.
	Type string

	// With describes the other declaration.
	With string

	Source decl.Source
}

func (e *IdentifierConflictError) Error() string {
	return fmt.Sprintf("%s: generated identifier %s for namespace type %s conflicts with %s",
		e.Source, e.Ident, e.Type, e.With)
}
