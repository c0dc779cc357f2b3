// Package logging carries a request-scoped slog.Logger through contexts so
// handlers and services share one enriched logger per request.
package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// ContextWithLogger derives a context carrying logger. Nil inputs leave the
// context unchanged.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached to ctx, or nil when none was
// attached.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(contextKey{}).(*slog.Logger)
	return logger
}
