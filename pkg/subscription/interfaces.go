package subscription

import (
	"context"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// Directory resolves identities and answers "where is X".
type Directory interface {
	// Entity resolves an entity by ID.
	Entity(ctx context.Context, id presence.EntityID) (presence.Entity, error)

	// Room resolves a room by ID.
	Room(ctx context.Context, id presence.RoomID) (presence.Room, error)

	// Whereabouts returns the entity's current room. The boolean is false
	// if the entity is in no room.
	Whereabouts(ctx context.Context, id presence.EntityID) (presence.Room, bool, error)
}

// Locator produces a human-shareable descriptor of a room, such as an
// invite link.
type Locator interface {
	Describe(ctx context.Context, room presence.Room) (string, error)
}

// Mover changes room membership on behalf of active-follow subscriptions.
type Mover interface {
	// Membership returns the room the entity is in. The boolean is false if
	// the entity is in no room.
	Membership(ctx context.Context, id presence.EntityID) (presence.Room, bool, error)

	// Move moves an entity that is in a room into another room.
	Move(ctx context.Context, id presence.EntityID, to presence.RoomID) error
}

// Sink delivers a text message to a destination channel. The engine does not
// wait for or act on delivery confirmation; a returned error is logged.
type Sink interface {
	Deliver(ctx context.Context, destination presence.DestinationID, text string) error
}
