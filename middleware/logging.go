package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/broady/hostbind"
)

// Logging returns a pre/post middleware pair that logs binding calls using
// slog. The pre middleware logs the start of each call; the post middleware
// logs its end, including duration and error status.
func Logging(logger *slog.Logger) (pre, post hostbind.Middleware) {
	if logger == nil {
		logger = slog.Default()
	}

	pre = func(ctx context.Context, call *hostbind.Call) error {
		logger.InfoContext(ctx, "call started",
			slog.String("binding", callID(call)),
			slog.Int("args", len(call.Args)+len(call.Named)),
		)
		return nil
	}

	post = func(ctx context.Context, call *hostbind.Call) error {
		duration := time.Since(call.Started)
		if call.Err != nil {
			logger.ErrorContext(ctx, "call failed",
				slog.String("binding", callID(call)),
				slog.Duration("duration", duration),
				slog.Any("error", call.Err),
			)
		} else {
			logger.InfoContext(ctx, "call completed",
				slog.String("binding", callID(call)),
				slog.Duration("duration", duration),
			)
		}
		return nil
	}

	return pre, post
}

// callID is "namespace.binding".
func callID(call *hostbind.Call) string {
	return call.Namespace + "." + call.Binding.Name
}
