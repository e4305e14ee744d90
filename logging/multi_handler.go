package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler sends each record to all of its handlers, typically the
// console and the database.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, d := range h.handlers {
		if d.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle runs every handler that wants the record, even when an earlier one
// fails, and returns the joined errors.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, d := range h.handlers {
		if !d.Enabled(ctx, r.Level) {
			continue
		}
		if err := d.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.derive(func(d slog.Handler) slog.Handler { return d.WithGroup(name) })
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.derive(func(d slog.Handler) slog.Handler { return d.WithAttrs(attrs) })
}

func (h *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, d := range h.handlers {
		handlers[i] = fn(d)
	}
	return &MultiHandler{handlers: handlers}
}
