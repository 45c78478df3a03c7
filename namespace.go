// Package hostbind is the runtime side of generated script bindings: type
// descriptors, method bindings, middleware and the namespace registry.
package hostbind

// Namespace is the contract between generated binding code and a script
// runtime. The generator emits one implementation per annotated type.
type Namespace interface {
	// Name is the script-visible namespace name.
	Name() string

	// Description is the documentation of the annotated type.
	Description() string

	// Bindings returns every binding of the namespace in declaration order.
	// Each call builds fresh values.
	Bindings() []MethodBinding

	// RegisterGlobalMiddlewares appends pre and post to the middleware of
	// the namespace binding whose structural key equals b's. It returns an
	// *UnmatchedBindingError, and changes nothing, when no binding matches.
	RegisterGlobalMiddlewares(b MethodBinding, pre, post []Middleware) error
}

// BindingNames returns the names of ns's bindings in declaration order.
func BindingNames(ns Namespace) []string {
	bindings := ns.Bindings()
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.Name
	}
	return names
}

// FindBinding returns the binding of ns with the given script-visible name.
func FindBinding(ns Namespace, name string) (MethodBinding, bool) {
	for _, b := range ns.Bindings() {
		if b.Name == name {
			return b, true
		}
	}
	return MethodBinding{}, false
}
