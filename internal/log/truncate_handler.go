package log

import (
	"context"
	"log/slog"
)

// DefaultMaxValueLength is the default cap for logged attribute values.
// Issue strings carry page excerpts; one malformed page can otherwise dump
// kilobytes into every debug line.
const DefaultMaxValueLength = 256

// Ellipsis marks a truncated attribute value.
const Ellipsis = "..."

// TruncateHandler wraps an slog.Handler and caps the length of string
// attribute values before passing records on. It integrates with standard
// slog APIs and works with any underlying handler.
type TruncateHandler struct {
	// handler is the underlying slog handler receiving shortened records.
	handler slog.Handler

	// maxLen is the maximum rune length of a logged string value.
	maxLen int
}

// NewTruncateHandler creates a TruncateHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used. A non-positive
// maxLen falls back to DefaultMaxValueLength.
func NewTruncateHandler(handler slog.Handler, maxLen int) *TruncateHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxValueLength
	}
	return &TruncateHandler{handler: handler, maxLen: maxLen}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TruncateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle shortens the record's attributes and delegates to the underlying
// handler.
func (h *TruncateHandler) Handle(ctx context.Context, r slog.Record) error {
	shortened := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		shortened.AddAttrs(h.truncateAttr(a))
		return true
	})
	return h.handler.Handle(ctx, shortened)
}

// WithAttrs returns a new TruncateHandler whose underlying handler has the
// given attributes, shortened first.
func (h *TruncateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	shortened := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		shortened = append(shortened, h.truncateAttr(a))
	}
	return &TruncateHandler{handler: h.handler.WithAttrs(shortened), maxLen: h.maxLen}
}

// WithGroup returns a new TruncateHandler with the given group name.
func (h *TruncateHandler) WithGroup(name string) slog.Handler {
	return &TruncateHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

// truncateAttr shortens string values; group attributes are shortened
// recursively, other kinds pass through unchanged.
func (h *TruncateHandler) truncateAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(h.truncate(a.Value.String()))
	case slog.KindGroup:
		members := a.Value.Group()
		shortened := make([]slog.Attr, 0, len(members))
		for _, member := range members {
			shortened = append(shortened, h.truncateAttr(member))
		}
		a.Value = slog.GroupValue(shortened...)
	default:
	}
	return a
}

// truncate caps a string at maxLen runes.
func (h *TruncateHandler) truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= h.maxLen {
		return s
	}
	return string(runes[:h.maxLen]) + Ellipsis
}
