package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

var requestLoggerKey contextKey

// With attaches a child logger carrying the given fields to the context, so
// request-scoped attributes such as the trace id follow the request through
// the handler chain.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, requestLoggerKey, From(ctx).With(fields...))
}

// From returns the request-scoped logger, falling back to the process logger
// when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
