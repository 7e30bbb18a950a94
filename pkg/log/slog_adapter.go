package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes journal events to an slog.Logger.
// Useful for development when you want to see container events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("container_id", event.ContainerID),
		slog.String("kind", event.Kind.String()),
		slog.String("category", event.Category.String()),
	}

	if event.ContainerName != "" {
		attrs = append(attrs, slog.String("container", event.ContainerName))
	}
	if event.SubscriptionID != 0 {
		attrs = append(attrs, slog.Uint64("sub_id", event.SubscriptionID))
	}
	if len(event.Keys) > 0 {
		attrs = append(attrs, slog.Any("keys", event.Keys))
	}

	switch event.Category {
	case CategoryUpdate:
		attrs = append(attrs,
			slog.Any("update", event.Payload),
			slog.Int("notified", event.Listeners),
		)
	case CategoryCreate:
		attrs = append(attrs, slog.Any("initial", event.Payload))
	case CategorySubscribe, CategoryUnsubscribe:
		attrs = append(attrs, slog.Int("listeners", event.Listeners))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "journal", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
