package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithModule attaches a demo-module name to the contextual logger so every
// line produced while a module runs is attributable to it.
func WithModule(ctx context.Context, module string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("module", module))
}
