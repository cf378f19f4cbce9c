package presence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Presence errors.
var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrUnknownRoom   = errors.New("unknown room")
	ErrNotInRoom     = errors.New("entity is not in a room")
	ErrRoomLocked    = errors.New("room is locked")
	ErrSameRoom      = errors.New("entity is already in that room")
)

// EntityID identifies a tracked entity (a user or bot).
type EntityID string

// RoomID identifies a room.
type RoomID string

// DestinationID identifies a channel that receives notification messages.
type DestinationID string

// Entity is a participant of the presence graph.
type Entity struct {
	ID   EntityID `yaml:"id" json:"id"`
	Name string   `yaml:"name" json:"name"`
}

// String returns the display name, falling back to the ID.
func (e Entity) String() string {
	if e.Name != "" {
		return e.Name
	}
	return string(e.ID)
}

// Mention returns the chat mention form of the entity.
func (e Entity) Mention() string {
	return Mention(e.ID)
}

// Mention returns the chat mention form of an entity ID.
func Mention(id EntityID) string {
	return fmt.Sprintf("<@%s>", id)
}

// Room is a shared space entities can be in.
type Room struct {
	ID   RoomID `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// String returns the display name, falling back to the ID.
func (r Room) String() string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.ID)
}

// IsZero reports whether r is the zero Room.
func (r Room) IsZero() bool {
	return r.ID == ""
}

// EventKind classifies a membership transition.
type EventKind uint8

const (
	// EventJoined is an entity entering a room from no room.
	EventJoined EventKind = iota + 1

	// EventSwitched is an entity moving from one room to another.
	EventSwitched

	// EventLeft is an entity leaving its room.
	EventLeft
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventJoined:
		return "JOINED"
	case EventSwitched:
		return "SWITCHED"
	case EventLeft:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}

// ParseEventKind parses an event kind name (case-insensitive).
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToLower(s) {
	case "joined", "join":
		return EventJoined, nil
	case "switched", "switch", "move":
		return EventSwitched, nil
	case "left", "leave":
		return EventLeft, nil
	default:
		return 0, fmt.Errorf("invalid event kind: %q (must be joined, switched or left)", s)
	}
}

// Event is a single room membership transition of one entity.
//
// From is set for Switched and Left, To is set for Joined and Switched.
type Event struct {
	Kind   EventKind
	Entity Entity
	From   Room
	To     Room
	At     time.Time
}

// Joined returns the event of entity entering room.
func Joined(entity Entity, room Room) Event {
	return Event{Kind: EventJoined, Entity: entity, To: room}
}

// Switched returns the event of entity moving from one room to another.
func Switched(entity Entity, from, to Room) Event {
	return Event{Kind: EventSwitched, Entity: entity, From: from, To: to}
}

// Left returns the event of entity leaving room.
func Left(entity Entity, room Room) Event {
	return Event{Kind: EventLeft, Entity: entity, From: room}
}

// Room returns the room the event reports: the room entered for Joined and
// Switched, the room left for Left.
func (e Event) Room() Room {
	if e.Kind == EventLeft {
		return e.From
	}
	return e.To
}

// Validate checks that the rooms required by the event kind are set.
func (e Event) Validate() error {
	if e.Entity.ID == "" {
		return errors.New("event has no entity")
	}
	switch e.Kind {
	case EventJoined:
		if e.To.IsZero() {
			return errors.New("joined event has no room")
		}
	case EventSwitched:
		if e.From.IsZero() || e.To.IsZero() {
			return errors.New("switched event needs both rooms")
		}
		if e.From.ID == e.To.ID {
			return fmt.Errorf("switched event: %w: %s", ErrSameRoom, e.To.ID)
		}
	case EventLeft:
		if e.From.IsZero() {
			return errors.New("left event has no room")
		}
	default:
		return fmt.Errorf("invalid event kind %d", e.Kind)
	}
	return nil
}

// String returns a short human-readable form of the event.
func (e Event) String() string {
	switch e.Kind {
	case EventJoined:
		return fmt.Sprintf("%s joined %s", e.Entity, e.To)
	case EventSwitched:
		return fmt.Sprintf("%s switched %s -> %s", e.Entity, e.From, e.To)
	case EventLeft:
		return fmt.Sprintf("%s left %s", e.Entity, e.From)
	default:
		return fmt.Sprintf("%s: unknown event", e.Entity)
	}
}

// Handler receives presence events.
type Handler func(Event)
