package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

var (
	alice = presence.Entity{ID: "u1", Name: "alice"}
	lobby = presence.Room{ID: "r1", Name: "Lobby"}
	games = presence.Room{ID: "r2", Name: "Games"}
)

func TestMatchOneShotMarksSubjectForClearing(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newMember("m1", "u1", "c1", t0, time.Minute, false, false))
	reg.Add(newMember("m2", "u1", "c2", t0, time.Minute, true, false))

	plan := Match(reg, presence.Joined(alice, lobby), t0.Add(time.Second))

	require.Len(t, plan.Members, 2)
	assert.True(t, plan.ClearSubject)
	assert.Zero(t, plan.Expired)

	// Matching has no side effects.
	assert.Len(t, reg.Members("u1"), 2)
}

func TestMatchPersistentOnlyKeepsSubject(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newMember("m1", "u1", "c1", t0, time.Minute, true, false))

	plan := Match(reg, presence.Joined(alice, lobby), t0.Add(time.Second))

	assert.Len(t, plan.Members, 1)
	assert.False(t, plan.ClearSubject)
}

func TestMatchExpiredDoesNotFireButClears(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newMember("m1", "u1", "c1", t0, time.Second, true, false))
	reg.Add(newMember("m2", "u1", "c2", t0, time.Hour, true, false))

	plan := Match(reg, presence.Joined(alice, lobby), t0.Add(time.Second))

	require.Len(t, plan.Members, 1)
	assert.Equal(t, presence.EntityID("m2"), plan.Members[0].Subscription.Requester)
	assert.True(t, plan.ClearSubject)
	assert.Equal(t, 1, plan.Expired)
}

func TestMatchRoomDirections(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newRoom("m1", "r1", "c1", t0, time.Minute))
	reg.Add(newRoom("m2", "r2", "c2", t0, time.Minute))

	now := t0.Add(time.Second)

	plan := Match(reg, presence.Joined(alice, lobby), now)
	require.Len(t, plan.Rooms, 1)
	assert.Equal(t, DirectionEntering, plan.Rooms[0].Direction)

	plan = Match(reg, presence.Left(alice, lobby), now)
	require.Len(t, plan.Rooms, 1)
	assert.Equal(t, DirectionLeaving, plan.Rooms[0].Direction)

	plan = Match(reg, presence.Switched(alice, lobby, games), now)
	require.Len(t, plan.Rooms, 2)
	assert.Equal(t, "r2", plan.Rooms[0].Subscription.Subject)
	assert.Equal(t, DirectionEntering, plan.Rooms[0].Direction)
	assert.Equal(t, "r1", plan.Rooms[1].Subscription.Subject)
	assert.Equal(t, DirectionLeaving, plan.Rooms[1].Direction)
	assert.Empty(t, plan.ClearRooms)
}

func TestMatchExpiredRoomClearsOnce(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newRoom("m1", "r1", "c1", t0, time.Second))
	reg.Add(newRoom("m2", "r1", "c2", t0, time.Second))
	reg.Add(newRoom("m3", "r1", "c3", t0, time.Hour))

	plan := Match(reg, presence.Left(alice, lobby), t0.Add(time.Minute))

	assert.Len(t, plan.Rooms, 1)
	assert.Equal(t, 2, plan.Expired)
	assert.Equal(t, []presence.RoomID{"r1"}, plan.ClearRooms)
}

func TestMatchNothing(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newMember("m1", "u9", "c1", t0, time.Minute, false, false))
	reg.Add(newRoom("m1", "r9", "c1", t0, time.Minute))

	plan := Match(reg, presence.Switched(alice, lobby, games), t0)
	assert.True(t, plan.Empty())
}

func TestDirectionGlyph(t *testing.T) {
	assert.Equal(t, "🔵", DirectionEntering.Glyph())
	assert.Equal(t, "🔴", DirectionLeaving.Glyph())
}
