package subscription

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roomwatch/roomwatch-go/pkg/duration"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// memberText formats a member-subscription notification. location is the
// descriptor of the room the subject is now in; it is empty for Left events.
func memberText(sub Subscription, ev presence.Event, location string) string {
	mention := presence.Mention(sub.Requester)
	if ev.Kind == presence.EventLeft {
		return fmt.Sprintf("%s %s left %s and is no longer in any room", mention, ev.Entity, ev.From)
	}
	return fmt.Sprintf("%s %s is now in %s", mention, ev.Entity, location)
}

// locationFailedText formats the message sent instead of a member
// notification when the room cannot be described.
func locationFailedText(sub Subscription, ev presence.Event, err error) string {
	return fmt.Sprintf("%s %s moved to %s, but the location is unavailable: %s",
		presence.Mention(sub.Requester), ev.Entity, ev.Room(), cause(err))
}

// roomText formats a room-subscription notification.
func roomText(f Fire, ev presence.Event) string {
	mention := presence.Mention(f.Subscription.Requester)
	glyph := f.Direction.Glyph()

	switch ev.Kind {
	case presence.EventJoined:
		return fmt.Sprintf("%s %s %s joined %s", glyph, mention, ev.Entity, ev.To)
	case presence.EventLeft:
		return fmt.Sprintf("%s %s %s left %s", glyph, mention, ev.Entity, ev.From)
	default:
		return fmt.Sprintf("%s %s %s moved from %s to %s", glyph, mention, ev.Entity, ev.From, ev.To)
	}
}

// relocationFailedText formats the active-follow failure report.
func relocationFailedText(sub Subscription, target presence.Room, err error) string {
	return fmt.Sprintf("%s could not move you to %s: %s", presence.Mention(sub.Requester), target, cause(err))
}

// whereText formats the answer to a point query.
func whereText(requester presence.EntityID, subject presence.Entity, location string) string {
	return fmt.Sprintf("%s %s is in %s", presence.Mention(requester), subject, location)
}

// errorText formats a command failure reported back to the requester.
func errorText(requester presence.EntityID, err error) string {
	switch {
	case errors.Is(err, ErrUnresolvedEntity):
		return fmt.Sprintf("%s I can't find that: %s", presence.Mention(requester), cause(err))
	case errors.Is(err, ErrLocationUnavailable):
		return fmt.Sprintf("%s location unavailable: %s", presence.Mention(requester), cause(err))
	default:
		return fmt.Sprintf("%s %s", presence.Mention(requester), err)
	}
}

// cause strips the engine sentinel from a wrapped error so messages read
// "room is locked" instead of "relocation failed: room is locked".
func cause(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrUnresolvedEntity, ErrLocationUnavailable, ErrRelocationFailed, ErrInvalidRequest} {
		if errors.Is(err, sentinel) {
			return strings.TrimPrefix(msg, sentinel.Error()+": ")
		}
	}
	return msg
}

// notifyConfirmText acknowledges a one-shot member subscription.
func notifyConfirmText(sub Subscription, d time.Duration) string {
	return fmt.Sprintf("%s if %s joins or switches rooms in the next %s I will notify you",
		presence.Mention(sub.Requester), presence.Mention(presence.EntityID(sub.Subject)), duration.Format(d))
}

// followConfirmText acknowledges a follow, with a join hint for active
// follows.
func followConfirmText(sub Subscription, d time.Duration) string {
	text := fmt.Sprintf("%s I will let you know each time %s switches rooms in the next %s",
		presence.Mention(sub.Requester), presence.Mention(presence.EntityID(sub.Subject)), duration.Format(d))
	if sub.ActiveFollow {
		text += "\nI will also move you to their room, please join a room now so that I can move you!"
	}
	return text
}

func vcnotifyConfirmText(sub Subscription, room presence.Room, d time.Duration) string {
	return fmt.Sprintf("%s I will notify you of all changes in `%s` for the next %s",
		presence.Mention(sub.Requester), room, duration.Format(d))
}

func stopFollowText(requester, subject presence.EntityID, n int) string {
	return fmt.Sprintf("%s deleted all follow and notify requests for %s (%d removed)",
		presence.Mention(requester), presence.Mention(subject), n)
}

func stopRoomText(requester presence.EntityID, room presence.Room, n int) string {
	return fmt.Sprintf("%s deleted all room notifications for `%s` (%d removed)", presence.Mention(requester), room, n)
}
