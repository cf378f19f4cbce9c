package subscription

import (
	"context"
	"fmt"

	rwlog "github.com/roomwatch/roomwatch-go/pkg/log"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// relocator runs the active-follow relocation protocol.
type relocator struct {
	mover Mover
}

// relocate moves requester into target.
//
// A requester in no room is skipped with ErrNotInRoom; the caller must not
// report it. A requester already in target is skipped without error. Any
// other failure is wrapped in ErrRelocationFailed.
func (r relocator) relocate(ctx context.Context, requester presence.EntityID, target presence.Room) (rwlog.RelocationOutcome, error) {
	if r.mover == nil {
		return rwlog.RelocationSkipped, fmt.Errorf("%w: no room-membership mutator configured", ErrRelocationFailed)
	}

	current, ok, err := r.mover.Membership(ctx, requester)
	if err != nil {
		return rwlog.RelocationFailed, fmt.Errorf("%w: %v", ErrRelocationFailed, err)
	}
	if !ok {
		return rwlog.RelocationSkipped, ErrNotInRoom
	}
	if current.ID == target.ID {
		return rwlog.RelocationSkipped, nil
	}

	if err := r.mover.Move(ctx, requester, target.ID); err != nil {
		return rwlog.RelocationFailed, fmt.Errorf("%w: %v", ErrRelocationFailed, err)
	}
	return rwlog.RelocationMoved, nil
}
