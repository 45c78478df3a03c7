package middleware

import (
	"context"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/broady/hostbind"
)

// Validate returns a pre middleware that validates every struct argument,
// positional or named, using its validate tags. A nil v uses a validator
// with required-struct checking enabled.
//
// Failures are validator.ValidationErrors, which hostbind.ToError reports as
// invalid_argument.
func Validate(v *validator.Validate) hostbind.Middleware {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}

	check := func(ctx context.Context, arg any) error {
		if !isStruct(arg) {
			return nil
		}
		return v.StructCtx(ctx, arg)
	}

	return func(ctx context.Context, call *hostbind.Call) error {
		for _, arg := range call.Args {
			if err := check(ctx, arg); err != nil {
				return err
			}
		}
		for _, name := range call.Binding.NamedParams.Names() {
			if err := check(ctx, call.Named[name]); err != nil {
				return err
			}
		}
		return nil
	}
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		if reflect.ValueOf(v).IsNil() {
			return false
		}
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
