package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler fans records out to several handlers, typically the console
// handler and the rotated JSON file.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler returns a handler writing to every one of handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled is true when at least one destination takes level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, dst := range h.handlers {
		if dst.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle writes r to each destination enabled for its level. A failing
// destination does not stop the others; all failures are joined.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	var errs []error

	for _, dst := range h.handlers {
		if !dst.Enabled(ctx, r.Level) {
			continue
		}

		if err := dst.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(dst slog.Handler) slog.Handler { return dst.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(dst slog.Handler) slog.Handler { return dst.WithGroup(name) })
}

func (h *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	out := make([]slog.Handler, 0, len(h.handlers))
	for _, dst := range h.handlers {
		out = append(out, fn(dst))
	}

	return &MultiHandler{handlers: out}
}
