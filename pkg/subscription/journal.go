package subscription

import (
	"time"

	rwlog "github.com/roomwatch/roomwatch-go/pkg/log"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

func presenceEntry(id string, now time.Time, ev presence.Event) rwlog.Event {
	return rwlog.Event{
		Timestamp: now,
		EventID:   id,
		Category:  rwlog.CategoryPresence,
		Subject:   string(ev.Entity.ID),
		Presence: &rwlog.PresenceEvent{
			Kind: ev.Kind.String(),
			From: string(ev.From.ID),
			To:   string(ev.To.ID),
		},
	}
}

// entry starts a journal entry for a subscription. Callers set the category
// and payload.
func (e *Engine) entry(id string, sub Subscription) rwlog.Event {
	return e.commandEntry(id, sub.Requester, sub.Subject, sub.Destination)
}

func (e *Engine) commandEntry(id string, requester presence.EntityID, subject string, dest presence.DestinationID) rwlog.Event {
	return rwlog.Event{
		Timestamp:   e.clock(),
		EventID:     id,
		Requester:   string(requester),
		Subject:     subject,
		Destination: string(dest),
	}
}

func (e *Engine) journalAdded(id string, sub Subscription) {
	entry := e.entry(id, sub)
	entry.Category = rwlog.CategorySubscription
	entry.Subscription = &rwlog.SubscriptionEvent{
		Action:       rwlog.ActionAdded,
		Kind:         sub.Kind.String(),
		Persistent:   sub.Persistent,
		ActiveFollow: sub.ActiveFollow,
		ExpiresAt:    sub.ExpiresAt,
	}
	e.journal.Log(entry)
}

func (e *Engine) journalRemoval(id string, kind Kind, key string, action rwlog.SubscriptionAction, n int) {
	if n == 0 && action == rwlog.ActionCleared {
		return
	}
	entry := e.commandEntry(id, "", key, "")
	entry.Category = rwlog.CategorySubscription
	entry.Subscription = &rwlog.SubscriptionEvent{
		Action: action,
		Kind:   kind.String(),
		Count:  n,
	}
	e.journal.Log(entry)
	e.debugLog("subscriptions removed", "action", action, "kind", kind, "subject", key, "count", n)
}

func (e *Engine) journalError(id string, requester presence.EntityID, subject string, dest presence.DestinationID, err error) {
	entry := e.commandEntry(id, requester, subject, dest)
	entry.Category = rwlog.CategoryError
	entry.Error = &rwlog.ErrorEventData{
		Kind:    errorKind(err),
		Message: err.Error(),
	}
	e.journal.Log(entry)
}
