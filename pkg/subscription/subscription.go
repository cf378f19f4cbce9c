package subscription

import (
	"time"

	"github.com/roomwatch/roomwatch-go/pkg/duration"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// Kind selects the registry collection a subscription lives in.
type Kind uint8

const (
	// KindMember is keyed by a tracked entity.
	KindMember Kind = iota + 1

	// KindRoom is keyed by a room.
	KindRoom
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMember:
		return "MEMBER"
	case KindRoom:
		return "ROOM"
	default:
		return "UNKNOWN"
	}
}

// Subscription is a registered request to be notified of a future presence
// transition. Subscriptions are values; the registry never changes one in
// place.
type Subscription struct {
	// Kind is KindMember or KindRoom.
	Kind Kind

	// Requester is the entity that created the subscription.
	Requester presence.EntityID

	// Subject is the tracked entity ID (KindMember) or room ID (KindRoom).
	Subject string

	// Destination is the channel notifications are delivered to.
	Destination presence.DestinationID

	// CreatedAt is when the subscription was registered.
	CreatedAt time.Time

	// ExpiresAt is the wall-clock deadline, fixed at creation.
	ExpiresAt time.Time

	// Persistent subscriptions are not consumed by firing.
	Persistent bool

	// ActiveFollow subscriptions also move the requester into the subject's
	// new room. ActiveFollow implies Persistent.
	ActiveFollow bool
}

// IsLive reports whether the subscription may fire at now.
// A subscription is expired from ExpiresAt on.
func (s Subscription) IsLive(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Remaining returns the time left before expiry, never negative.
func (s Subscription) Remaining(now time.Time) time.Duration {
	return duration.Remaining(s.ExpiresAt, now)
}

// SubjectEntity returns the subject as an entity ID.
func (s Subscription) SubjectEntity() presence.EntityID {
	return presence.EntityID(s.Subject)
}

// SubjectRoom returns the subject as a room ID.
func (s Subscription) SubjectRoom() presence.RoomID {
	return presence.RoomID(s.Subject)
}

// Mode returns the command name the subscription was created with.
func (s Subscription) Mode() string {
	switch {
	case s.Kind == KindRoom:
		return "vcnotify"
	case s.ActiveFollow:
		return "follow --active"
	case s.Persistent:
		return "follow"
	default:
		return "notify"
	}
}

// newMember builds a member subscription starting at now.
func newMember(requester, subject presence.EntityID, dest presence.DestinationID, now time.Time, d time.Duration, persistent, active bool) Subscription {
	return Subscription{
		Kind:         KindMember,
		Requester:    requester,
		Subject:      string(subject),
		Destination:  dest,
		CreatedAt:    now,
		ExpiresAt:    duration.Deadline(now, d),
		Persistent:   persistent || active,
		ActiveFollow: active,
	}
}

// newRoom builds a room subscription starting at now. Room subscriptions
// are always persistent.
func newRoom(requester presence.EntityID, room presence.RoomID, dest presence.DestinationID, now time.Time, d time.Duration) Subscription {
	return Subscription{
		Kind:        KindRoom,
		Requester:   requester,
		Subject:     string(room),
		Destination: dest,
		CreatedAt:   now,
		ExpiresAt:   duration.Deadline(now, d),
		Persistent:  true,
	}
}
