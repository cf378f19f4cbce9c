// Package commands implements the roomwatch-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/roomwatch/roomwatch-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category *log.Category
	EventID  string
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [event:id] CATEGORY label
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	id := shortenEventID(event.EventID)

	var label string
	switch {
	case event.Presence != nil:
		label = event.Presence.Kind
	case event.Subscription != nil:
		label = event.Subscription.Action.String()
	case event.Notification != nil:
		label = "Message"
		if event.Notification.Failed {
			label = "Message (failed)"
		}
	case event.Relocation != nil:
		label = event.Relocation.Outcome.String()
	case event.Error != nil:
		label = event.Error.Kind
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [event:%s] %-12s %s\n", ts, id, event.Category.String(), label)

	if event.Requester != "" {
		fmt.Fprintf(w, "  Requester: %s\n", event.Requester)
	}
	if event.Subject != "" {
		fmt.Fprintf(w, "  Subject: %s\n", event.Subject)
	}
	if event.Destination != "" {
		fmt.Fprintf(w, "  Destination: #%s\n", event.Destination)
	}

	switch {
	case event.Presence != nil:
		formatPresenceDetails(w, event.Presence)
	case event.Subscription != nil:
		formatSubscriptionDetails(w, event.Subscription)
	case event.Notification != nil:
		formatNotificationDetails(w, event.Notification)
	case event.Relocation != nil:
		formatRelocationDetails(w, event.Relocation)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenEventID returns the last 8 characters of the event ID. xid IDs
// share their timestamp prefix within a second.
func shortenEventID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func formatPresenceDetails(w io.Writer, p *log.PresenceEvent) {
	switch {
	case p.From != "" && p.To != "":
		fmt.Fprintf(w, "  %s -> %s\n", p.From, p.To)
	case p.To != "":
		fmt.Fprintf(w, "  -> %s\n", p.To)
	case p.From != "":
		fmt.Fprintf(w, "  %s ->\n", p.From)
	}
}

func formatSubscriptionDetails(w io.Writer, s *log.SubscriptionEvent) {
	fmt.Fprintf(w, "  Kind: %s\n", s.Kind)
	if s.Action == log.ActionAdded {
		mode := "once"
		switch {
		case s.ActiveFollow:
			mode = "active follow"
		case s.Persistent:
			mode = "follow"
		}
		fmt.Fprintf(w, "  Mode: %s\n", mode)
		fmt.Fprintf(w, "  Expires: %s\n", s.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"))
		return
	}
	fmt.Fprintf(w, "  Removed: %d\n", s.Count)
}

func formatNotificationDetails(w io.Writer, n *log.NotificationEvent) {
	if n.Direction != "" {
		fmt.Fprintf(w, "  Direction: %s\n", n.Direction)
	}
	fmt.Fprintf(w, "  Text: %s\n", n.Text)
}

func formatRelocationDetails(w io.Writer, r *log.RelocationEvent) {
	fmt.Fprintf(w, "  Target: %s\n", r.Target)
	if r.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", r.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// filterEvents returns events matching the filter criteria.
func filterEvents(events []log.Event, filter ViewFilter) []log.Event {
	var result []log.Event
	for _, e := range events {
		if filter.matches(e) {
			result = append(result, e)
		}
	}
	return result
}

func (f ViewFilter) matches(e log.Event) bool {
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.EventID != "" && !strings.HasSuffix(e.EventID, f.EventID) {
		return false
	}
	return true
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "presence":
		return log.CategoryPresence, nil
	case "subscription":
		return log.CategorySubscription, nil
	case "notification":
		return log.CategoryNotification, nil
	case "relocation":
		return log.CategoryRelocation, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be presence, subscription, notification, relocation, or error)", s)
	}
}

// RunView executes the view command. EventID in the filter may be the short
// form printed by view.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if !filter.matches(event) {
			continue
		}
		formatEvent(output, event)
	}

	return nil
}
