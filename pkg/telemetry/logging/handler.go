package logging

import (
	"context"
	"log/slog"
)

// LoggerKey is the attribute carrying the logger name.
const LoggerKey = "logger"

// filterHandler drops records whose logger name is not allowed or is
// blocked. The name is picked up from a "logger" attribute added with
// WithAttrs.
type filterHandler struct {
	next  slog.Handler
	name  string
	allow Predicate
	block Predicate
}

func (h *filterHandler) pass() bool {
	if h.allow != nil && h.name != "" && !h.allow(h.name) {
		return false
	}
	if h.block != nil && h.block(h.name) {
		return false
	}
	return true
}

func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.pass() && h.next.Enabled(ctx, level)
}

func (h *filterHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.pass() {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	for _, a := range attrs {
		if a.Key == LoggerKey {
			clone.name = a.Value.String()
		}
	}
	clone.next = h.next.WithAttrs(attrs)
	return &clone
}

func (h *filterHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}

// splitHandler sends records below WARNING to low and the rest to high.
type splitHandler struct {
	low, high slog.Handler
}

func (h *splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < LevelWarning {
		return h.low.Enabled(ctx, level)
	}
	return h.high.Enabled(ctx, level)
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < LevelWarning {
		return h.low.Handle(ctx, r)
	}
	return h.high.Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{low: h.low.WithAttrs(attrs), high: h.high.WithAttrs(attrs)}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{low: h.low.WithGroup(name), high: h.high.WithGroup(name)}
}
