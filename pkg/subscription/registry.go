package subscription

import (
	"sync"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// Registry holds the active subscriptions in two insertion-ordered
// collections: member subscriptions and room subscriptions.
//
// Entries are only ever appended or removed by key. Removal replaces the
// collection with a filtered copy, so a slice handed out by a read method is
// never modified afterwards.
type Registry struct {
	mu      sync.RWMutex
	members []Subscription
	rooms   []Subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a subscription to the collection selected by its Kind.
// There is no uniqueness check.
func (r *Registry) Add(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch sub.Kind {
	case KindMember:
		r.members = append(r.members, sub)
	case KindRoom:
		r.rooms = append(r.rooms, sub)
	}
}

// RemoveBySubject removes every member subscription on the entity and
// returns how many were removed.
func (r *Registry) RemoveBySubject(id presence.EntityID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.compact(KindMember, string(id))
}

// RemoveByRoom removes every room subscription on the room and returns how
// many were removed.
func (r *Registry) RemoveByRoom(id presence.RoomID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.compact(KindRoom, string(id))
}

// compact replaces a collection with a copy that excludes key.
// Must be called with r.mu held.
func (r *Registry) compact(kind Kind, key string) int {
	src := r.members
	if kind == KindRoom {
		src = r.rooms
	}

	kept := make([]Subscription, 0, len(src))
	for _, s := range src {
		if s.Subject != key {
			kept = append(kept, s)
		}
	}
	removed := len(src) - len(kept)
	if removed == 0 {
		return 0
	}

	if kind == KindRoom {
		r.rooms = kept
	} else {
		r.members = kept
	}
	return removed
}

// ForEachMember calls fn for each member subscription on the entity, in
// insertion order. fn must not modify the registry.
func (r *Registry) ForEachMember(id presence.EntityID, fn func(Subscription)) {
	r.forEach(r.memberSlice(), string(id), fn)
}

// ForEachRoom calls fn for each room subscription on the room, in insertion
// order. fn must not modify the registry.
func (r *Registry) ForEachRoom(id presence.RoomID, fn func(Subscription)) {
	r.forEach(r.roomSlice(), string(id), fn)
}

func (r *Registry) forEach(subs []Subscription, key string, fn func(Subscription)) {
	for _, s := range subs {
		if s.Subject == key {
			fn(s)
		}
	}
}

// Members returns the member subscriptions on the entity.
func (r *Registry) Members(id presence.EntityID) []Subscription {
	var out []Subscription
	r.ForEachMember(id, func(s Subscription) { out = append(out, s) })
	return out
}

// Rooms returns the room subscriptions on the room.
func (r *Registry) Rooms(id presence.RoomID) []Subscription {
	var out []Subscription
	r.ForEachRoom(id, func(s Subscription) { out = append(out, s) })
	return out
}

// Len returns the number of member and room subscriptions.
func (r *Registry) Len() (members, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members), len(r.rooms)
}

// Snapshot returns all subscriptions, member subscriptions first.
func (r *Registry) Snapshot() []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscription, 0, len(r.members)+len(r.rooms))
	out = append(out, r.members...)
	out = append(out, r.rooms...)
	return out
}

func (r *Registry) memberSlice() []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members
}

func (r *Registry) roomSlice() []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms
}
