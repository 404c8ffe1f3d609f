package logging

import (
	"context"
	"log/slog"
)

// AttrSource supplies attributes that change while the process runs, such
// as the current episode and frame.
type AttrSource interface {
	LogAttrs() []slog.Attr
}

// AttrFunc adapts a function to AttrSource.
type AttrFunc func() []slog.Attr

// LogAttrs calls f.
func (f AttrFunc) LogAttrs() []slog.Attr {
	return f()
}

// ContextHandler stamps the current attributes of a source on each record
// before handing it to the wrapped handler.
type ContextHandler struct {
	inner  slog.Handler
	source AttrSource
}

// NewContextHandler wraps inner.
func NewContextHandler(inner slog.Handler, source AttrSource) *ContextHandler {
	return &ContextHandler{inner: inner, source: source}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.source != nil {
		if attrs := h.source.LogAttrs(); len(attrs) > 0 {
			r = r.Clone()
			r.AddAttrs(attrs...)
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.inner.WithAttrs(attrs), h.source)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return NewContextHandler(h.inner.WithGroup(name), h.source)
}
