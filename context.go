package hostbind

import "context"

type contextKey struct {
	name string
}

var callKey = &contextKey{"call"}

// CallFromContext returns the call being invoked by Registry.Invoke.
func CallFromContext(ctx context.Context) (*Call, bool) {
	call, ok := ctx.Value(callKey).(*Call)
	return call, ok
}

// BindingFromContext returns the namespace and binding name of the current call.
func BindingFromContext(ctx context.Context) (namespace, binding string, ok bool) {
	if call, ok := CallFromContext(ctx); ok {
		return call.Namespace, call.Binding.Name, true
	}
	return "", "", false
}

func newContext(ctx context.Context, call *Call) context.Context {
	return context.WithValue(ctx, callKey, call)
}
