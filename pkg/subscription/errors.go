package subscription

import (
	"errors"
)

// Engine errors. Each is reported to the requester's destination where it is
// detected and stops only the operation that hit it.
var (
	// ErrUnresolvedEntity means a command named an entity or room that
	// cannot be resolved. The command is aborted without mutation.
	ErrUnresolvedEntity = errors.New("unresolved entity")

	// ErrLocationUnavailable means the subject is in no room or the
	// location descriptor could not be created.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrRelocationFailed means the room-membership mutator rejected an
	// active-follow move.
	ErrRelocationFailed = errors.New("relocation failed")

	// ErrNotInRoom means the requester of an active-follow subscription is in
	// no room. Relocation is skipped silently.
	ErrNotInRoom = errors.New("requester is not in a room")

	// ErrInvalidRequest means a command is missing a required field.
	ErrInvalidRequest = errors.New("invalid request")
)

// errorKind returns the journal name of an engine error.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnresolvedEntity):
		return "UNRESOLVED_ENTITY"
	case errors.Is(err, ErrLocationUnavailable):
		return "LOCATION_UNAVAILABLE"
	case errors.Is(err, ErrRelocationFailed):
		return "RELOCATION_FAILED"
	case errors.Is(err, ErrNotInRoom):
		return "NOT_IN_ROOM"
	case errors.Is(err, ErrInvalidRequest):
		return "INVALID_REQUEST"
	default:
		return "INTERNAL"
	}
}
