package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/broady/hostbind"
)

func newCall(namespace, binding string) *hostbind.Call {
	return &hostbind.Call{
		Namespace: namespace,
		Binding:   hostbind.MethodBinding{Name: binding},
	}
}

func runWith(ctx context.Context, call *hostbind.Call, pre, post []hostbind.Middleware, invoke hostbind.Invoker) (any, error) {
	m := &hostbind.Middlewares{}
	m.Append(pre, post)
	return m.Run(ctx, call, invoke)
}

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestLogging_Success(t *testing.T) {
	var buf bytes.Buffer
	pre, post := Logging(jsonLogger(&buf))

	result, err := runWith(context.Background(), newCall("calc", "add"),
		[]hostbind.Middleware{pre}, []hostbind.Middleware{post},
		func(ctx context.Context, call *hostbind.Call) (any, error) {
			return 3, nil
		})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != 3 {
		t.Errorf("expected 3, got %v", result)
	}

	logOutput := buf.String()
	for _, want := range []string{"call started", "call completed", "calc.add", "duration"} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("expected %q in log output:\n%s", want, logOutput)
		}
	}
}

func TestLogging_Error(t *testing.T) {
	var buf bytes.Buffer
	pre, post := Logging(jsonLogger(&buf))

	testErr := hostbind.NewError(hostbind.CodeNotFound, "record not found")
	result, err := runWith(context.Background(), newCall("calc", "fetch"),
		[]hostbind.Middleware{pre}, []hostbind.Middleware{post},
		func(ctx context.Context, call *hostbind.Call) (any, error) {
			return nil, testErr
		})

	if err != testErr {
		t.Errorf("expected test error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}

	logOutput := buf.String()
	for _, want := range []string{"call started", "call failed", "not_found", "record not found"} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("expected %q in log output:\n%s", want, logOutput)
		}
	}
}

func TestLogging_NilLogger(t *testing.T) {
	// Should not panic with nil logger, should use default
	pre, post := Logging(nil)
	call := newCall("calc", "add")
	if err := pre(context.Background(), call); err != nil {
		t.Errorf("pre: %v", err)
	}
	if err := post(context.Background(), call); err != nil {
		t.Errorf("post: %v", err)
	}
}

func TestLogging_BindingIDInLogs(t *testing.T) {
	var buf bytes.Buffer
	pre, post := Logging(jsonLogger(&buf))

	tests := []struct {
		namespace string
		binding   string
		id        string
	}{
		{"calc", "add", "calc.add"},
		{"text", "upper", "text.upper"},
		{"fs", "readFile", "fs.readFile"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			buf.Reset()
			_, _ = runWith(context.Background(), newCall(tt.namespace, tt.binding),
				[]hostbind.Middleware{pre}, []hostbind.Middleware{post},
				func(ctx context.Context, call *hostbind.Call) (any, error) {
					return nil, nil
				})
			if !strings.Contains(buf.String(), tt.id) {
				t.Errorf("expected binding ID %s in log output", tt.id)
			}
		})
	}
}

func TestLogging_StoppedByPre(t *testing.T) {
	var buf bytes.Buffer
	pre, post := Logging(jsonLogger(&buf))
	deny := func(ctx context.Context, call *hostbind.Call) error {
		return errors.New("denied")
	}

	_, err := runWith(context.Background(), newCall("calc", "add"),
		[]hostbind.Middleware{pre, deny}, []hostbind.Middleware{post},
		func(ctx context.Context, call *hostbind.Call) (any, error) {
			t.Error("method ran after a failing pre middleware")
			return nil, nil
		})
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(buf.String(), "call completed") || strings.Contains(buf.String(), "call failed") {
		t.Error("post middleware ran after a failing pre middleware")
	}
}
