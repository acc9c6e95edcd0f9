package observability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// SentryHandler forwards error-level records to Sentry and passes every
// record on to the wrapped handler.
type SentryHandler struct {
	next  slog.Handler
	hub   func() *sentry.Hub
	attrs []slog.Attr
}

// NewSentryHandler wraps next. Records are reported on the current hub.
func NewSentryHandler(next slog.Handler) *SentryHandler {
	return &SentryHandler{next: next, hub: sentry.CurrentHub}
}

func (h *SentryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SentryHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		h.capture(r)
	}
	return h.next.Handle(ctx, r)
}

func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SentryHandler{
		next:  h.next.WithAttrs(attrs),
		hub:   h.hub,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

func (h *SentryHandler) WithGroup(name string) slog.Handler {
	return &SentryHandler{next: h.next.WithGroup(name), hub: h.hub, attrs: h.attrs}
}

func (h *SentryHandler) capture(r slog.Record) {
	hub := h.hub()
	if hub == nil || hub.Client() == nil {
		return
	}

	var cause error
	extras := sentry.Context{}
	collect := func(a slog.Attr) bool {
		if err, ok := a.Value.Any().(error); ok && cause == nil {
			cause = err
			return true
		}
		extras[a.Key] = a.Value.String()
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetContext("log", extras)
		if cause == nil {
			hub.CaptureMessage(r.Message)
			return
		}
		hub.CaptureException(fmt.Errorf("%s: %w", r.Message, cause))
	})
}
