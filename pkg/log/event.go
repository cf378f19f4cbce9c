package log

import (
	"time"
)

// Event is a single journal entry.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// EventID correlates all entries caused by one presence event or command.
	EventID string `cbor:"2,keyasint"`

	// Category classifies the entry.
	Category Category `cbor:"3,keyasint"`

	// Requester is the entity that owns the subscription or issued the command.
	Requester string `cbor:"4,keyasint,omitempty"`

	// Subject is the tracked entity or room.
	Subject string `cbor:"5,keyasint,omitempty"`

	// Destination is the channel a message went (or would have gone) to.
	Destination string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Presence     *PresenceEvent     `cbor:"10,keyasint,omitempty"`
	Subscription *SubscriptionEvent `cbor:"11,keyasint,omitempty"`
	Notification *NotificationEvent `cbor:"12,keyasint,omitempty"`
	Relocation   *RelocationEvent   `cbor:"13,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"14,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPresence is a presence transition received by the engine.
	CategoryPresence Category = 0
	// CategorySubscription is a subscription being added or removed.
	CategorySubscription Category = 1
	// CategoryNotification is a message handed to the delivery sink.
	CategoryNotification Category = 2
	// CategoryRelocation is an active-follow relocation attempt.
	CategoryRelocation Category = 3
	// CategoryError is an error reported to a user.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPresence:
		return "PRESENCE"
	case CategorySubscription:
		return "SUBSCRIPTION"
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryRelocation:
		return "RELOCATION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PresenceEvent captures a room transition.
type PresenceEvent struct {
	// Kind is JOINED, SWITCHED or LEFT.
	Kind string `cbor:"1,keyasint"`

	// From is the room left (SWITCHED, LEFT).
	From string `cbor:"2,keyasint,omitempty"`

	// To is the room entered (JOINED, SWITCHED).
	To string `cbor:"3,keyasint,omitempty"`
}

// SubscriptionEvent captures a change to the subscription registry.
type SubscriptionEvent struct {
	// Action is what happened to the subscription(s).
	Action SubscriptionAction `cbor:"1,keyasint"`

	// Kind is MEMBER or ROOM.
	Kind string `cbor:"2,keyasint"`

	// Persistent is set for repeat-fire subscriptions (Added only).
	Persistent bool `cbor:"3,keyasint,omitempty"`

	// ActiveFollow is set for relocating subscriptions (Added only).
	ActiveFollow bool `cbor:"4,keyasint,omitempty"`

	// ExpiresAt is the subscription deadline (Added only).
	ExpiresAt time.Time `cbor:"5,keyasint,omitempty"`

	// Count is the number of subscriptions removed (removal actions).
	Count int `cbor:"6,keyasint,omitempty"`
}

// SubscriptionAction is a registry change.
type SubscriptionAction uint8

const (
	// ActionAdded is a new subscription.
	ActionAdded SubscriptionAction = 0
	// ActionCleared is a bulk removal caused by a fired or expired subscription.
	ActionCleared SubscriptionAction = 1
	// ActionStopped is a bulk removal requested by a stop command.
	ActionStopped SubscriptionAction = 2
)

// String returns the action name.
func (a SubscriptionAction) String() string {
	switch a {
	case ActionAdded:
		return "ADDED"
	case ActionCleared:
		return "CLEARED"
	case ActionStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// NotificationEvent captures a message handed to the delivery sink.
type NotificationEvent struct {
	// Text is the message body.
	Text string `cbor:"1,keyasint"`

	// Direction is ENTERING or LEAVING for room notifications.
	Direction string `cbor:"2,keyasint,omitempty"`

	// Failed is set if the sink rejected the message.
	Failed bool `cbor:"3,keyasint,omitempty"`
}

// RelocationEvent captures an active-follow relocation attempt.
type RelocationEvent struct {
	// Target is the room the requester was to be moved to.
	Target string `cbor:"1,keyasint"`

	// Outcome of the attempt.
	Outcome RelocationOutcome `cbor:"2,keyasint"`

	// Reason explains skipped and failed attempts.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// RelocationOutcome is the result of a relocation attempt.
type RelocationOutcome uint8

const (
	// RelocationMoved means the requester was moved.
	RelocationMoved RelocationOutcome = 0
	// RelocationSkipped means the requester was in no room, or already there.
	RelocationSkipped RelocationOutcome = 1
	// RelocationFailed means the move was rejected.
	RelocationFailed RelocationOutcome = 2
)

// String returns the outcome name.
func (o RelocationOutcome) String() string {
	switch o {
	case RelocationMoved:
		return "MOVED"
	case RelocationSkipped:
		return "SKIPPED"
	case RelocationFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures an error reported to a user.
type ErrorEventData struct {
	// Kind is the error class (UNRESOLVED_ENTITY, LOCATION_UNAVAILABLE, ...).
	Kind string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
