package hostbind

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Registry collects the namespaces a script runtime exposes.
// It manages namespace registration, middleware routing and invocation.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]Namespace
	order      []string
	logger     *slog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		namespaces: make(map[string]Namespace),
	}
}

// WithLogger sets a custom logger for the registry.
// If not set, slog.Default() will be used.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

func (r *Registry) log() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}
	return r.logger
}

// Register adds namespaces to the registry. Names must be unique; a
// duplicate stops registration with ErrNamespaceExists and leaves the
// namespaces registered before it in place.
func (r *Registry) Register(namespaces ...Namespace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ns := range namespaces {
		name := ns.Name()
		if _, exists := r.namespaces[name]; exists {
			return fmt.Errorf("%w: %q", ErrNamespaceExists, name)
		}
		r.namespaces[name] = ns
		r.order = append(r.order, name)
		r.log().Debug("namespace registered",
			slog.String("namespace", name),
			slog.Int("bindings", len(ns.Bindings())))
	}
	return nil
}

// Namespace returns the namespace registered under name.
func (r *Registry) Namespace(name string) (Namespace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ns, ok := r.namespaces[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNamespaceNotFound, name)
	}
	return ns, nil
}

// Namespaces returns the registered namespaces in registration order.
func (r *Registry) Namespaces() []Namespace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Namespace, len(r.order))
	for i, name := range r.order {
		out[i] = r.namespaces[name]
	}
	return out
}

// Binding returns the binding named method of the namespace named namespace.
func (r *Registry) Binding(namespace, method string) (MethodBinding, error) {
	ns, err := r.Namespace(namespace)
	if err != nil {
		return MethodBinding{}, err
	}
	b, ok := FindBinding(ns, method)
	if !ok {
		return MethodBinding{}, &UnmatchedBindingError{
			Namespace: namespace,
			Binding:   method,
			Known:     BindingNames(ns),
		}
	}
	return b, nil
}

// Use routes middleware to binding b of the named namespace. See
// Namespace.RegisterGlobalMiddlewares.
//
// Use does not synchronize with concurrent invocations of the binding.
func (r *Registry) Use(namespace string, b MethodBinding, pre, post []Middleware) error {
	ns, err := r.Namespace(namespace)
	if err != nil {
		return err
	}
	if err := ns.RegisterGlobalMiddlewares(b, pre, post); err != nil {
		return err
	}
	r.log().Debug("middleware registered",
		slog.String("namespace", namespace),
		slog.String("binding", b.Name),
		slog.Int("pre", len(pre)),
		slog.Int("post", len(post)))
	return nil
}

// Invoke runs call through the middleware of its binding, calling invoke to
// run the underlying method. Future results are awaited. A panic in invoke or
// in a middleware is recovered and reported as a CodeInternal *Error.
//
// The context passed to middleware and invoke carries call; see
// CallFromContext.
func (r *Registry) Invoke(ctx context.Context, call *Call, invoke Invoker) (res any, err error) {
	ctx = newContext(ctx, call)
	defer func() {
		if rec := recover(); rec != nil {
			r.log().ErrorContext(ctx, "PANIC recovered",
				slog.String("namespace", call.Namespace),
				slog.String("binding", call.Binding.Name),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			res = nil
			err = Errorf(CodeInternal, "panic in binding %s.%s: %v", call.Namespace, call.Binding.Name, rec)
			call.Result, call.Err = res, err
		}
	}()

	settled := func(ctx context.Context, call *Call) (any, error) {
		v, err := invoke(ctx, call)
		if err != nil {
			return nil, err
		}
		return Settle(ctx, v)
	}

	return call.Binding.Middlewares.Run(ctx, call, settled)
}

// Manifest describes every registered namespace.
func (r *Registry) Manifest() *Manifest {
	return NewManifest(r.Namespaces()...)
}
