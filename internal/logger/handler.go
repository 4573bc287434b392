// Package logger decorates slog handlers with request-scoped attributes.
package logger

import (
	"context"
	"io"
	"log/slog"

	"repochat/internal/middleware"
)

type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

// NewHandler is the default production handler: JSON records with the
// correlation id lifted out of the context.
func NewHandler(w io.Writer) *ContextHandler {
	return NewContextHandler(slog.NewJSONHandler(w, nil))
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(middleware.CorrelationKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
