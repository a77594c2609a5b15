package logger

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler duplicates each record to a set of destination handlers,
// used to ship logs to stdout and a remote sink at the same time. Records
// are cloned per destination so handlers cannot observe shared state.
type MultiHandler struct {
	targets []slog.Handler
}

// NewMultiHandler creates a MultiHandler over the given destinations.
// Nil entries are skipped so callers can pass optional handlers directly.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	targets := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			targets = append(targets, h)
		}
	}
	return &MultiHandler{targets: targets}
}

// Enabled reports whether at least one destination accepts the level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, target := range m.targets {
		if target.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every destination that accepts its level.
// Delivery failures are collected rather than short-circuiting, so one
// broken sink does not silence the others.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, target := range m.targets {
		if !target.Enabled(ctx, r.Level) {
			continue
		}
		if err := target.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// WithAttrs applies the attributes to every destination.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.targets))
	for i, target := range m.targets {
		next[i] = target.WithAttrs(attrs)
	}
	return &MultiHandler{targets: next}
}

// WithGroup applies the group to every destination.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.targets))
	for i, target := range m.targets {
		next[i] = target.WithGroup(name)
	}
	return &MultiHandler{targets: next}
}
