package middleware

import (
	"context"
	"errors"

	"github.com/broady/hostbind"
)

// PermissionChecker evaluates one permission expression for the current
// call. It returns nil when the expression is satisfied.
type PermissionChecker func(ctx context.Context, call *hostbind.Call, expr hostbind.RawExpr) error

// RequirePermissions returns a pre middleware that checks every permission
// expression of the binding, in declaration order, and stops the call at the
// first one that is not satisfied.
//
// Errors from check that are not *hostbind.Error are reported as
// permission_denied with the expression attached.
func RequirePermissions(check PermissionChecker) hostbind.Middleware {
	return func(ctx context.Context, call *hostbind.Call) error {
		for _, expr := range call.Binding.Permissions {
			err := check(ctx, call, expr)
			if err == nil {
				continue
			}
			var coded *hostbind.Error
			if errors.As(err, &coded) {
				return coded
			}
			return hostbind.Errorf(hostbind.CodePermissionDenied, "%s.%s: %v", call.Namespace, call.Binding.Name, err).
				WithDetail("permission", expr.Text).
				WithDetail("pos", expr.Pos)
		}
		return nil
	}
}
