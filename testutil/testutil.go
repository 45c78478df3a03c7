// Package testutil provides testing helpers for hostbind namespaces and the
// middleware that runs around their bindings.
// This package is designed to be import-cycle safe and can be used from any package.
package testutil

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/broady/hostbind"
)

// CallBuilder helps construct test calls with a fluent API.
type CallBuilder struct {
	namespace string
	binding   hostbind.MethodBinding
	args      []any
	named     map[string]any
}

// NewCall creates a call builder for binding b of the named namespace.
func NewCall(namespace string, b hostbind.MethodBinding) *CallBuilder {
	return &CallBuilder{
		namespace: namespace,
		binding:   b,
		named:     make(map[string]any),
	}
}

// WithArgs appends positional arguments.
func (b *CallBuilder) WithArgs(args ...any) *CallBuilder {
	b.args = append(b.args, args...)
	return b
}

// WithNamed sets a named argument. The name is given without the "#" prefix.
func (b *CallBuilder) WithNamed(name string, value any) *CallBuilder {
	b.named[hostbind.NamedParamPrefix+name] = value
	return b
}

// Build returns the call.
func (b *CallBuilder) Build() *hostbind.Call {
	return &hostbind.Call{
		Namespace: b.namespace,
		Binding:   b.binding,
		Args:      slices.Clone(b.args),
		Named:     b.named,
	}
}

// Run runs the call through m with invoke and returns the result.
func (b *CallBuilder) Run(ctx context.Context, m *hostbind.Middlewares, invoke hostbind.Invoker) (*hostbind.Call, any, error) {
	call := b.Build()
	res, err := m.Run(ctx, call, invoke)
	return call, res, err
}

// Returning returns an invoker that ignores the call and yields v, err.
func Returning(v any, err error) hostbind.Invoker {
	return func(context.Context, *hostbind.Call) (any, error) {
		return v, err
	}
}

// AssertNamespace checks the properties every generated namespace has:
// binding names are unique, Bindings returns structurally equal values on
// every call, each binding carries middleware storage, and routing an
// unknown binding fails with *hostbind.UnmatchedBindingError.
//
// It registers no middleware.
func AssertNamespace(t *testing.T, ns hostbind.Namespace) {
	t.Helper()

	if ns.Name() == "" {
		t.Errorf("namespace has an empty name")
	}

	first, second := ns.Bindings(), ns.Bindings()
	if len(first) != len(second) {
		t.Fatalf("Bindings() returned %d then %d bindings", len(first), len(second))
	}

	seen := make(map[string]bool)
	for i, b := range first {
		if seen[b.Name] {
			t.Errorf("duplicate binding name %q", b.Name)
		}
		seen[b.Name] = true

		if !hostbind.SameBinding(b, second[i]) {
			t.Errorf("binding %q is not stable across Bindings() calls", b.Name)
		}
		if b.Middlewares == nil {
			t.Errorf("binding %q has no middleware storage", b.Name)
		}
		if b.ReturnType == nil {
			t.Errorf("binding %q has no return type", b.Name)
		}
	}

	unknown := hostbind.MethodBinding{Name: "\x00unknown", ReturnType: hostbind.Dynamic()}
	err := ns.RegisterGlobalMiddlewares(unknown, nil, nil)
	var unmatched *hostbind.UnmatchedBindingError
	if !errors.As(err, &unmatched) {
		t.Errorf("routing an unknown binding: got %v, want *hostbind.UnmatchedBindingError", err)
		return
	}
	if !slices.Equal(unmatched.Known, hostbind.BindingNames(ns)) {
		t.Errorf("UnmatchedBindingError.Known = %v, want %v", unmatched.Known, hostbind.BindingNames(ns))
	}
}

// AssertBinding fails the test unless ns has a binding named name and
// returns it.
func AssertBinding(t *testing.T, ns hostbind.Namespace, name string) hostbind.MethodBinding {
	t.Helper()
	b, ok := hostbind.FindBinding(ns, name)
	if !ok {
		t.Fatalf("namespace %q has no binding %q (known: %v)", ns.Name(), name, hostbind.BindingNames(ns))
	}
	return b
}

// AssertError checks that err maps to the expected error code.
// Returns the mapped error for further assertions.
func AssertError(t *testing.T, err error, expectedCode hostbind.ErrorCode) *hostbind.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %s, got nil", expectedCode)
	}
	e := hostbind.ToError(err)
	if e.Code != expectedCode {
		t.Errorf("expected error code %s, got %s (message: %s)", expectedCode, e.Code, e.Message)
	}
	return e
}
