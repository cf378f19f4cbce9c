package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes journal events to an slog.Logger.
// Useful for development when you want to see engine decisions in the console.
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
		slog.String("event_id", event.EventID),
		slog.String("category", event.Category.String()),
	}

	if event.Requester != "" {
		attrs = append(attrs, slog.String("requester", event.Requester))
	}
	if event.Subject != "" {
		attrs = append(attrs, slog.String("subject", event.Subject))
	}
	if event.Destination != "" {
		attrs = append(attrs, slog.String("destination", event.Destination))
	}

	switch {
	case event.Presence != nil:
		attrs = append(attrs, slog.String("kind", event.Presence.Kind))
		if event.Presence.From != "" {
			attrs = append(attrs, slog.String("from", event.Presence.From))
		}
		if event.Presence.To != "" {
			attrs = append(attrs, slog.String("to", event.Presence.To))
		}
	case event.Subscription != nil:
		attrs = append(attrs,
			slog.String("action", event.Subscription.Action.String()),
			slog.String("kind", event.Subscription.Kind),
		)
		if event.Subscription.Action == ActionAdded {
			attrs = append(attrs,
				slog.Bool("persistent", event.Subscription.Persistent),
				slog.Bool("active_follow", event.Subscription.ActiveFollow),
				slog.Time("expires_at", event.Subscription.ExpiresAt),
			)
		} else {
			attrs = append(attrs, slog.Int("count", event.Subscription.Count))
		}
	case event.Notification != nil:
		attrs = append(attrs, slog.String("text", event.Notification.Text))
		if event.Notification.Direction != "" {
			attrs = append(attrs, slog.String("direction", event.Notification.Direction))
		}
		if event.Notification.Failed {
			attrs = append(attrs, slog.Bool("failed", true))
		}
	case event.Relocation != nil:
		attrs = append(attrs,
			slog.String("target", event.Relocation.Target),
			slog.String("outcome", event.Relocation.Outcome.String()),
		)
		if event.Relocation.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Relocation.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_kind", event.Error.Kind),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "journal", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
