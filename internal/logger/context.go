package logger

import "context"

type ctxKey struct{}

// IntoContext returns a context carrying log.
func IntoContext(ctx context.Context, log Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger stored in ctx, or fallback when there is none.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if log, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return log
	}
	return fallback
}
