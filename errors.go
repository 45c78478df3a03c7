package hostbind

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents a machine-readable error code reported to scripts.
type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "invalid_argument"
	CodeUnauthenticated  ErrorCode = "unauthenticated"
	CodePermissionDenied ErrorCode = "permission_denied"
	CodeNotFound         ErrorCode = "not_found"
	CodeAlreadyExists    ErrorCode = "already_exists"
	CodeCanceled         ErrorCode = "canceled"
	CodeInternal         ErrorCode = "internal"
	CodeNotImplemented   ErrorCode = "not_implemented"
	CodeDeadlineExceeded ErrorCode = "deadline_exceeded"
)

// Error is the error envelope handed to the script runtime.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new coded error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new coded error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetail returns a new Error with the key-value pair added to details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// UnmatchedBindingError is returned by RegisterGlobalMiddlewares when the
// given binding's structural key matches no binding of the namespace. The
// binding belongs to another namespace, or it was built inconsistently with
// the generated descriptor.
type UnmatchedBindingError struct {
	// Namespace is the namespace that was asked to route the binding.
	Namespace string

	// Binding is the name of the binding that failed to match.
	Binding string

	// Known lists the names of the namespace's bindings, in declaration order.
	Known []string
}

func (e *UnmatchedBindingError) Error() string {
	return fmt.Sprintf("hostbind: binding %q matches no binding of namespace %q (known: %s)",
		e.Binding, e.Namespace, strings.Join(e.Known, ", "))
}

// ErrNamespaceExists is returned when registering two namespaces with the
// same name.
var ErrNamespaceExists = errors.New("hostbind: namespace already registered")

// ErrNamespaceNotFound is returned when looking up an unregistered namespace.
var ErrNamespaceNotFound = errors.New("hostbind: namespace not found")

// ToError maps any error to an *Error for the script runtime.
func ToError(err error) *Error {
	if err == nil {
		return nil
	}

	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}

	var unmatched *UnmatchedBindingError
	if errors.As(err, &unmatched) {
		return NewError(CodeNotFound, unmatched.Error()).
			WithDetail("namespace", unmatched.Namespace).
			WithDetail("binding", unmatched.Binding)
	}

	if errors.Is(err, ErrNamespaceNotFound) {
		return NewError(CodeNotFound, err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(CodeDeadlineExceeded, "call timeout")
	}

	if errors.Is(err, context.Canceled) {
		return NewError(CodeCanceled, "context canceled")
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		details := make(map[string]any)
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			msg := formatValidationError(ve)
			details[ve.Field()] = msg
			messages = append(messages, ve.Field()+": "+msg)
		}
		return &Error{
			Code:    CodeInvalidArgument,
			Message: strings.Join(messages, "; "),
			Details: details,
		}
	}

	return NewError(CodeInternal, err.Error())
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
