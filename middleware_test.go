package hostbind

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestMiddlewares_Run(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(ctx context.Context, call *Call) error {
			order = append(order, name)
			return nil
		}
	}

	m := &Middlewares{}
	m.Append([]Middleware{mark("pre1"), mark("pre2")}, []Middleware{mark("post1")})
	m.Append(nil, []Middleware{mark("post2")})
	if m.Len() != 4 {
		t.Errorf("Len = %d, want 4", m.Len())
	}

	call := &Call{Namespace: "calc", Binding: MethodBinding{Name: "add"}}
	res, err := m.Run(context.Background(), call, func(ctx context.Context, call *Call) (any, error) {
		order = append(order, "invoke")
		return 5, nil
	})
	if err != nil || res != 5 {
		t.Errorf("Run = %v, %v; want 5", res, err)
	}
	if want := []string{"pre1", "pre2", "invoke", "post1", "post2"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if call.Started.IsZero() {
		t.Error("Started was not set")
	}
	if call.Result != 5 {
		t.Errorf("call.Result = %v", call.Result)
	}
}

func TestMiddlewares_PreStops(t *testing.T) {
	denied := errors.New("denied")
	var ranSecond, invoked, ranPost bool

	m := &Middlewares{}
	m.Append([]Middleware{
		func(context.Context, *Call) error { return denied },
		func(context.Context, *Call) error { ranSecond = true; return nil },
	}, []Middleware{
		func(context.Context, *Call) error { ranPost = true; return nil },
	})

	call := &Call{}
	_, err := m.Run(context.Background(), call, func(context.Context, *Call) (any, error) {
		invoked = true
		return nil, nil
	})
	if !errors.Is(err, denied) || !errors.Is(call.Err, denied) {
		t.Errorf("err = %v, call.Err = %v; want denied", err, call.Err)
	}
	if ranSecond || invoked || ranPost {
		t.Errorf("ranSecond=%v invoked=%v ranPost=%v, want all false", ranSecond, invoked, ranPost)
	}
}

func TestMiddlewares_PostRewrites(t *testing.T) {
	failed := errors.New("boom")
	m := &Middlewares{}
	m.Append(nil, []Middleware{
		// Hides the failure behind a coded error.
		func(ctx context.Context, call *Call) error {
			if call.Err != nil {
				return NewError(CodeInternal, "hidden")
			}
			return nil
		},
		// Rewrites the result.
		func(ctx context.Context, call *Call) error {
			call.Result = "replaced"
			return nil
		},
	})

	res, err := m.Run(context.Background(), &Call{}, func(context.Context, *Call) (any, error) {
		return nil, failed
	})
	var coded *Error
	if !errors.As(err, &coded) || coded.Message != "hidden" {
		t.Errorf("err = %v, want the post middleware's error", err)
	}
	if res != "replaced" {
		t.Errorf("res = %v, want replaced", res)
	}
}

func TestMiddlewares_Nil(t *testing.T) {
	var m *Middlewares
	if m.Len() != 0 {
		t.Error("nil Len != 0")
	}
	res, err := m.Run(context.Background(), &Call{}, func(context.Context, *Call) (any, error) {
		return "ok", nil
	})
	if err != nil || res != "ok" {
		t.Errorf("Run = %v, %v", res, err)
	}
}
