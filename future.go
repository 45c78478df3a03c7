package hostbind

import (
	"context"
	"sync"
)

// NullValue is the host type of the null value. A method parameter or
// result of type NullValue is described as Primitive(Null).
type NullValue struct{}

// NumberValue is a numeric value that may be either an integer or a float.
// It is described as Primitive(Number).
type NumberValue float64

// Future is a value that is available now or later.
//
// A binding's method may return *Future[T]; its binding then describes the
// result as T. Futures are not allowed anywhere else in a binding signature,
// and are never returned or copied by value. The zero Future is not usable:
// create one with Resolved, Rejected or Go.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// Resolved returns a Future that is already complete with v.
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.complete(v, nil)
	return f
}

// Rejected returns a Future that is already complete with err.
func Rejected[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	var zero T
	f.complete(zero, err)
	return f
}

// Go runs fn in a new goroutine and returns a Future for its result.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		v, err := fn(ctx)
		f.complete(v, err)
	}()
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}

// Done returns a channel closed once the value is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the value is available or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitAny is Await with the value boxed, for runtimes that hold futures of
// unknown element type.
func (f *Future[T]) AwaitAny(ctx context.Context) (any, error) {
	return f.Await(ctx)
}

// Awaitable is implemented by every *Future[T].
type Awaitable interface {
	Done() <-chan struct{}
	AwaitAny(ctx context.Context) (any, error)
}

// Settle resolves v if it is an Awaitable and returns it unchanged otherwise.
// Script runtimes call it on method results.
func Settle(ctx context.Context, v any) (any, error) {
	if a, ok := v.(Awaitable); ok {
		return a.AwaitAny(ctx)
	}
	return v, nil
}
