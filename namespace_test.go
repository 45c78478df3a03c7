package hostbind_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/broady/hostbind"
)

// Record and Calculator are an annotated type as a user would write it.
type Record struct {
	ID string
}

type Calculator struct {
	store map[string]Record
}

func (c *Calculator) Add(a, b int) int { return a + b }

func (c *Calculator) Fetch(ctx context.Context, id string) (*hostbind.Future[Record], error) {
	r, ok := c.store[id]
	if !ok {
		return nil, hostbind.Errorf(hostbind.CodeNotFound, "record %q not found", id)
	}
	return hostbind.Go(ctx, func(context.Context) (Record, error) { return r, nil }), nil
}

// CalculatorNamespace has the shape of the generated code for Calculator.

type CalculatorNamespace struct{}

var _ hostbind.Namespace = CalculatorNamespace{}

var calculatorGlobalMiddlewares struct {
	Add   hostbind.Middlewares
	Fetch hostbind.Middlewares
}

func (ns CalculatorNamespace) Name() string        { return "calc" }
func (ns CalculatorNamespace) Description() string { return "Calculator does arithmetic." }

func (ns CalculatorNamespace) Bindings() []hostbind.MethodBinding {
	return []hostbind.MethodBinding{
		ns.AddBinding(),
		ns.FetchBinding(),
	}
}

func (ns CalculatorNamespace) AddBinding() hostbind.MethodBinding {
	return hostbind.MethodBinding{
		Name:        "add",
		Description: "Add returns a+b.",
		ReturnType:  hostbind.Primitive(hostbind.Integer),
		PositionalParams: hostbind.Params{
			{Name: "a", Type: hostbind.Primitive(hostbind.Integer)},
			{Name: "b", Type: hostbind.Primitive(hostbind.Integer)},
		},
		NamedParams: hostbind.Params{},
		Function:    (*Calculator).Add,
		Middlewares: &calculatorGlobalMiddlewares.Add,
	}
}

func (ns CalculatorNamespace) AddBindingMatches(b hostbind.MethodBinding) bool {
	c := ns.AddBinding()
	return b.Name == c.Name &&
		b.Description == c.Description &&
		hostbind.EqualType(b.ReturnType, c.ReturnType) &&
		b.PositionalParams.Equal(c.PositionalParams) &&
		b.NamedParams.Equal(c.NamedParams) &&
		hostbind.EqualPermissions(b.Permissions, c.Permissions)
}

func (ns CalculatorNamespace) FetchBinding() hostbind.MethodBinding {
	return hostbind.MethodBinding{
		Name:       "fetch",
		ReturnType: hostbind.Opaque("Record"),
		PositionalParams: hostbind.Params{
			{Name: "id", Type: hostbind.Primitive(hostbind.String)},
		},
		NamedParams: hostbind.Params{},
		Permissions: []hostbind.RawExpr{
			{Text: `auth.Role("reader")`, Pos: "calc.go:20:1"},
		},
		Function:    (*Calculator).Fetch,
		Middlewares: &calculatorGlobalMiddlewares.Fetch,
	}
}

func (ns CalculatorNamespace) FetchBindingMatches(b hostbind.MethodBinding) bool {
	c := ns.FetchBinding()
	return b.Name == c.Name &&
		b.Description == c.Description &&
		hostbind.EqualType(b.ReturnType, c.ReturnType) &&
		b.PositionalParams.Equal(c.PositionalParams) &&
		b.NamedParams.Equal(c.NamedParams) &&
		hostbind.EqualPermissions(b.Permissions, c.Permissions)
}

func (ns CalculatorNamespace) RegisterGlobalMiddlewares(b hostbind.MethodBinding, pre, post []hostbind.Middleware) error {
	switch {
	case ns.AddBindingMatches(b):
		calculatorGlobalMiddlewares.Add.Append(pre, post)
	case ns.FetchBindingMatches(b):
		calculatorGlobalMiddlewares.Fetch.Append(pre, post)
	default:
		return &hostbind.UnmatchedBindingError{
			Namespace: ns.Name(),
			Binding:   b.Name,
			Known:     hostbind.BindingNames(ns),
		}
	}
	return nil
}

func resetMiddlewares(t *testing.T) {
	t.Helper()
	reset := func() {
		calculatorGlobalMiddlewares.Add = hostbind.Middlewares{}
		calculatorGlobalMiddlewares.Fetch = hostbind.Middlewares{}
	}
	reset()
	t.Cleanup(reset)
}

func noop(context.Context, *hostbind.Call) error { return nil }

func TestNamespace_StructuralEquality(t *testing.T) {
	ns := CalculatorNamespace{}

	// A binding built independently, without Function or Middlewares.
	add := hostbind.MethodBinding{
		Name:        "add",
		Description: "Add returns a+b.",
		ReturnType:  hostbind.Primitive(hostbind.Integer),
		PositionalParams: hostbind.Params{
			{Name: "a", Type: hostbind.Primitive(hostbind.Integer)},
			{Name: "b", Type: hostbind.Primitive(hostbind.Integer)},
		},
	}
	if !ns.AddBindingMatches(add) {
		t.Error("independently built add binding does not match")
	}
	if !hostbind.SameBinding(add, ns.AddBinding()) {
		t.Error("SameBinding disagrees with AddBindingMatches")
	}
	if ns.FetchBindingMatches(add) {
		t.Error("add matches fetch")
	}

	// Permission positions are not part of the key.
	fetch := ns.FetchBinding()
	fetch.Permissions = []hostbind.RawExpr{{Text: `auth.Role("reader")`, Pos: "elsewhere.go:1:1"}}
	if !ns.FetchBindingMatches(fetch) {
		t.Error("fetch with moved permission does not match")
	}

	// Each accessor call builds fresh values sharing one middleware record.
	a, b := ns.AddBinding(), ns.AddBinding()
	if a.Middlewares != b.Middlewares {
		t.Error("accessor calls do not share the middleware record")
	}
	a.PositionalParams[0].Name = "x"
	if b.PositionalParams[0].Name != "a" {
		t.Error("accessor calls share parameter storage")
	}
}

func TestNamespace_RegisterGlobalMiddlewares(t *testing.T) {
	resetMiddlewares(t)
	ns := CalculatorNamespace{}

	if err := ns.RegisterGlobalMiddlewares(ns.AddBinding(), []hostbind.Middleware{noop}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ns.RegisterGlobalMiddlewares(ns.AddBinding(), []hostbind.Middleware{noop, noop}, []hostbind.Middleware{noop}); err != nil {
		t.Fatal(err)
	}

	add := ns.AddBinding()
	if got := len(add.PreMiddlewares()); got != 3 {
		t.Errorf("add has %d pre middleware, want 3", got)
	}
	if got := len(add.PostMiddlewares()); got != 1 {
		t.Errorf("add has %d post middleware, want 1", got)
	}
	if got := ns.FetchBinding().Middlewares.Len(); got != 0 {
		t.Errorf("fetch has %d middleware, want 0", got)
	}
}

func TestNamespace_RegisterOrder(t *testing.T) {
	resetMiddlewares(t)
	ns := CalculatorNamespace{}

	var order []string
	mark := func(name string) hostbind.Middleware {
		return func(context.Context, *hostbind.Call) error {
			order = append(order, name)
			return nil
		}
	}
	_ = ns.RegisterGlobalMiddlewares(ns.AddBinding(), []hostbind.Middleware{mark("pre1")}, []hostbind.Middleware{mark("post1")})
	_ = ns.RegisterGlobalMiddlewares(ns.AddBinding(), []hostbind.Middleware{mark("pre2")}, []hostbind.Middleware{mark("post2")})

	b := ns.AddBinding()
	_, err := b.Middlewares.Run(context.Background(), &hostbind.Call{Namespace: "calc", Binding: b},
		func(context.Context, *hostbind.Call) (any, error) {
			order = append(order, "method")
			return nil, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"pre1", "pre2", "method", "post1", "post2"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestNamespace_Unmatched(t *testing.T) {
	resetMiddlewares(t)
	ns := CalculatorNamespace{}

	changed := ns.AddBinding()
	changed.ReturnType = hostbind.Primitive(hostbind.Float)

	tests := []struct {
		name string
		b    hostbind.MethodBinding
	}{
		{"changed return type", changed},
		{"other namespace", hostbind.MethodBinding{Name: "upper", ReturnType: hostbind.Primitive(hostbind.String)}},
		{"zero", hostbind.MethodBinding{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ns.RegisterGlobalMiddlewares(tt.b, []hostbind.Middleware{noop}, []hostbind.Middleware{noop})
			var unmatched *hostbind.UnmatchedBindingError
			if !errors.As(err, &unmatched) {
				t.Fatalf("error = %v, want *UnmatchedBindingError", err)
			}
			if unmatched.Namespace != "calc" || unmatched.Binding != tt.b.Name {
				t.Errorf("error = %+v", unmatched)
			}
			if !slices.Equal(unmatched.Known, []string{"add", "fetch"}) {
				t.Errorf("Known = %v", unmatched.Known)
			}
			for _, b := range ns.Bindings() {
				if n := b.Middlewares.Len(); n != 0 {
					t.Errorf("%s has %d middleware after a failed registration", b.Name, n)
				}
			}
		})
	}
}

func TestRegistry_EndToEnd(t *testing.T) {
	resetMiddlewares(t)
	ctx := context.Background()
	calc := &Calculator{store: map[string]Record{"r1": {ID: "r1"}}}

	r := hostbind.NewRegistry()
	if err := r.Register(CalculatorNamespace{}); err != nil {
		t.Fatal(err)
	}

	var seen []string
	require := func(ctx context.Context, call *hostbind.Call) error {
		for _, p := range call.Binding.Permissions {
			seen = append(seen, p.Text)
		}
		return nil
	}
	fetch, err := r.Binding("calc", "fetch")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Use("calc", fetch, []hostbind.Middleware{require}, nil); err != nil {
		t.Fatal(err)
	}

	invoke := func(ctx context.Context, call *hostbind.Call) (any, error) {
		switch fn := call.Binding.Function.(type) {
		case func(*Calculator, int, int) int:
			return fn(calc, call.Args[0].(int), call.Args[1].(int)), nil
		case func(*Calculator, context.Context, string) (*hostbind.Future[Record], error):
			return fn(calc, ctx, call.Args[0].(string))
		}
		t.Fatalf("unexpected function %T", call.Binding.Function)
		return nil, nil
	}

	add, _ := r.Binding("calc", "add")
	got, err := r.Invoke(ctx, &hostbind.Call{Namespace: "calc", Binding: add, Args: []any{2, 3}}, invoke)
	if err != nil || got != 5 {
		t.Errorf("add(2, 3) = %v, %v; want 5", got, err)
	}

	fetch, _ = r.Binding("calc", "fetch")
	got, err = r.Invoke(ctx, &hostbind.Call{Namespace: "calc", Binding: fetch, Args: []any{"r1"}}, invoke)
	if err != nil {
		t.Fatal(err)
	}
	if rec, ok := got.(Record); !ok || rec.ID != "r1" {
		t.Errorf("fetch(r1) = %#v, want the resolved Record", got)
	}
	if want := []string{`auth.Role("reader")`}; !slices.Equal(seen, want) {
		t.Errorf("permissions seen = %v, want %v", seen, want)
	}

	_, err = r.Invoke(ctx, &hostbind.Call{Namespace: "calc", Binding: fetch, Args: []any{"missing"}}, invoke)
	if hostbind.ToError(err).Code != hostbind.CodeNotFound {
		t.Errorf("fetch(missing) error = %v, want not_found", err)
	}

	m := r.Manifest()
	if len(m.Namespaces) != 1 || len(m.Namespaces[0].Bindings) != 2 {
		t.Fatalf("manifest = %+v", m)
	}
	if got := m.Namespaces[0].Bindings[1].Permissions; !slices.Equal(got, []string{`auth.Role("reader")`}) {
		t.Errorf("manifest permissions = %v", got)
	}
}
