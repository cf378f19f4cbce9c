package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

var t0 = time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

func TestRegistryAddKeepsInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newMember("m1", "u1", "c1", t0, time.Minute, false, false))
	reg.Add(newMember("m2", "u1", "c2", t0, time.Minute, true, false))
	reg.Add(newMember("m3", "u2", "c3", t0, time.Minute, false, false))
	reg.Add(newRoom("m4", "r1", "c4", t0, time.Minute))

	members := reg.Members("u1")
	require.Len(t, members, 2)
	assert.Equal(t, presence.EntityID("m1"), members[0].Requester)
	assert.Equal(t, presence.EntityID("m2"), members[1].Requester)

	m, r := reg.Len()
	assert.Equal(t, 3, m)
	assert.Equal(t, 1, r)
}

func TestRegistryAllowsDuplicates(t *testing.T) {
	reg := NewRegistry()
	sub := newMember("m1", "u1", "c1", t0, time.Minute, false, false)
	reg.Add(sub)
	reg.Add(sub)

	assert.Len(t, reg.Members("u1"), 2)
}

func TestRegistryRemoveBySubject(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newMember("m1", "u1", "c1", t0, time.Minute, false, false))
	reg.Add(newMember("m2", "u2", "c2", t0, time.Minute, false, false))
	reg.Add(newMember("m3", "u1", "c3", t0, time.Minute, true, true))
	reg.Add(newRoom("m4", "u1", "c4", t0, time.Minute))

	assert.Equal(t, 2, reg.RemoveBySubject("u1"))
	assert.Empty(t, reg.Members("u1"))
	assert.Len(t, reg.Members("u2"), 1)

	// A room that happens to share the key is a different collection.
	assert.Len(t, reg.Rooms("u1"), 1)

	assert.Equal(t, 0, reg.RemoveBySubject("u1"))
}

func TestRegistryRemoveByRoom(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newRoom("m1", "r1", "c1", t0, time.Minute))
	reg.Add(newRoom("m2", "r2", "c2", t0, time.Minute))
	reg.Add(newRoom("m3", "r1", "c3", t0, time.Minute))

	assert.Equal(t, 2, reg.RemoveByRoom("r1"))
	assert.Empty(t, reg.Rooms("r1"))
	assert.Len(t, reg.Rooms("r2"), 1)
}

func TestRegistryReadSliceSurvivesRemoval(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newMember("m1", "u1", "c1", t0, time.Minute, false, false))
	reg.Add(newMember("m2", "u2", "c2", t0, time.Minute, false, false))

	snap := reg.Snapshot()
	reg.RemoveBySubject("u1")

	require.Len(t, snap, 2)
	assert.Equal(t, "u1", snap[0].Subject)
	assert.Equal(t, "u2", snap[1].Subject)
}

func TestSubscriptionExpiryBoundary(t *testing.T) {
	sub := newMember("m1", "u1", "c1", t0, 5*time.Second, false, false)

	assert.Equal(t, t0.Add(5*time.Second), sub.ExpiresAt)
	assert.True(t, sub.IsLive(t0))
	assert.True(t, sub.IsLive(sub.ExpiresAt.Add(-time.Nanosecond)))
	assert.False(t, sub.IsLive(sub.ExpiresAt))
	assert.False(t, sub.IsLive(sub.ExpiresAt.Add(time.Second)))

	assert.Equal(t, 2*time.Second, sub.Remaining(t0.Add(3*time.Second)))
	assert.Zero(t, sub.Remaining(t0.Add(time.Hour)))
}

func TestSubscriptionModes(t *testing.T) {
	tests := []struct {
		name string
		sub  Subscription
		want string
	}{
		{"notify", newMember("m", "u", "c", t0, time.Minute, false, false), "notify"},
		{"follow", newMember("m", "u", "c", t0, time.Minute, true, false), "follow"},
		{"active follow", newMember("m", "u", "c", t0, time.Minute, false, true), "follow --active"},
		{"vcnotify", newRoom("m", "r", "c", t0, time.Minute), "vcnotify"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Mode())
		})
	}
}

func TestActiveFollowImpliesPersistent(t *testing.T) {
	sub := newMember("m", "u", "c", t0, time.Minute, false, true)
	assert.True(t, sub.Persistent)
	assert.True(t, sub.ActiveFollow)

	room := newRoom("m", "r", "c", t0, time.Minute)
	assert.True(t, room.Persistent)
	assert.False(t, room.ActiveFollow)
}
