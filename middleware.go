package hostbind

import (
	"context"
	"time"
)

// Call carries one invocation of a binding through its middleware.
type Call struct {
	// Namespace is the name of the namespace the binding belongs to.
	Namespace string

	// Binding is the binding being invoked.
	Binding MethodBinding

	// Args are the positional arguments, in PositionalParams order.
	Args []any

	// Named are the named arguments, keyed like NamedParams.
	Named map[string]any

	// Started is when Run began executing the call.
	Started time.Time

	// Result and Err are set once the method has run.
	// Post middleware may replace either.
	Result any
	Err    error
}

// Middleware is a hook run before or after a binding's method.
//
// Pre middleware can inspect or modify the arguments, or stop the call by
// returning an error. Post middleware sees Result and Err; an error it
// returns replaces Err.
type Middleware func(ctx context.Context, call *Call) error

// Invoker runs the underlying method of a binding.
type Invoker func(ctx context.Context, call *Call) (any, error)

// Middlewares holds the two ordered, append-only middleware sequences of one
// binding.
//
// Sequences are expected to be populated during initialization, before the
// binding is invoked concurrently. Nothing here synchronizes an append with
// a concurrent Run; callers that register middleware after startup must
// provide their own locking.
type Middlewares struct {
	Pre  []Middleware
	Post []Middleware
}

// Append adds pre and post to the end of the respective sequences,
// preserving their order.
func (m *Middlewares) Append(pre, post []Middleware) {
	m.Pre = append(m.Pre, pre...)
	m.Post = append(m.Post, post...)
}

// Len returns the total number of registered middleware.
func (m *Middlewares) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Pre) + len(m.Post)
}

// Run executes the pre middleware in order, then invoke, then the post
// middleware in order. A failing pre middleware skips invoke and the
// remaining pre middleware; post middleware always runs once invoke was
// reached. Run returns call.Result and call.Err.
//
// A nil m runs invoke alone.
func (m *Middlewares) Run(ctx context.Context, call *Call, invoke Invoker) (any, error) {
	var pre, post []Middleware
	if m != nil {
		pre, post = m.Pre, m.Post
	}
	if call.Started.IsZero() {
		call.Started = time.Now()
	}

	for _, mw := range pre {
		if err := mw(ctx, call); err != nil {
			call.Err = err
			return nil, err
		}
	}

	call.Result, call.Err = invoke(ctx, call)

	for _, mw := range post {
		if err := mw(ctx, call); err != nil {
			call.Err = err
		}
	}

	return call.Result, call.Err
}
