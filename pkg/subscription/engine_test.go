package subscription_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roomwatch/roomwatch-go/pkg/delivery"
	rwlog "github.com/roomwatch/roomwatch-go/pkg/log"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
	"github.com/roomwatch/roomwatch-go/pkg/subscription"
	"github.com/roomwatch/roomwatch-go/pkg/subscription/mocks"
)

var (
	t0    = time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	alice = presence.Entity{ID: "u1", Name: "alice"}
	lobby = presence.Room{ID: "r1", Name: "Lobby"}
	games = presence.Room{ID: "r2", Name: "Games"}
)

type fixture struct {
	dir     *mocks.MockDirectory
	loc     *mocks.MockLocator
	mover   *mocks.MockMover
	sink    *mocks.MockSink
	journal *rwlog.Recorder
	engine  *subscription.Engine
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		dir:     mocks.NewMockDirectory(t),
		loc:     mocks.NewMockLocator(t),
		mover:   mocks.NewMockMover(t),
		sink:    mocks.NewMockSink(t),
		journal: rwlog.NewRecorder(0),
		now:     t0,
	}
	config := subscription.DefaultConfig()
	config.Journal = f.journal
	f.engine = subscription.NewEngine(subscription.Collaborators{
		Directory: f.dir,
		Locator:   f.loc,
		Mover:     f.mover,
		Sink:      f.sink,
	}, config)
	f.engine.SetClock(func() time.Time { return f.now })

	// Command confirmations are asserted through the journal.
	f.sink.EXPECT().Deliver(mock.Anything, mock.Anything, mock.MatchedBy(isConfirmation)).Return(nil).Maybe()
	return f
}

func isConfirmation(text string) bool {
	return strings.Contains(text, " I will ") || strings.Contains(text, " deleted all ")
}

func (f *fixture) notifications() []string {
	var out []string
	for _, ev := range f.journal.Events() {
		if ev.Notification != nil {
			out = append(out, ev.Notification.Text)
		}
	}
	return out
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) categories() []rwlog.Category {
	var out []rwlog.Category
	for _, ev := range f.journal.Events() {
		out = append(out, ev.Category)
	}
	return out
}

func contains(s string) any {
	return mock.MatchedBy(func(text string) bool { return strings.Contains(text, s) })
}

func TestNotifyFiresOnceAndClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Notify(ctx, subscription.MemberRequest{
		Requester: "m1", Subject: alice.ID, Destination: "c1", Duration: 5 * time.Second,
	})
	require.NoError(t, err)

	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("https://rw.example/invite/abc", nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> alice is now in https://rw.example/invite/abc").Return(nil).Once()

	f.advance(time.Second)
	out := f.engine.HandleEvent(ctx, presence.Joined(alice, lobby))

	assert.Equal(t, 1, out.Notified)
	assert.Equal(t, 1, out.RemovedMembers)
	assert.Empty(t, f.engine.Registry().Members(alice.ID))

	// A second event finds nothing.
	out = f.engine.HandleEvent(ctx, presence.Switched(alice, lobby, games))
	assert.True(t, out.Plan.Empty())
}

func TestVCNotifyLeavingOnSwitch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Room(mock.Anything, lobby.ID).Return(lobby, nil).Once()
	_, err := f.engine.VCNotify(ctx, subscription.RoomRequest{
		Requester: "m1", Room: lobby.ID, Destination: "c1", Duration: 5 * time.Second,
	})
	require.NoError(t, err)

	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "🔴 <@m1> alice moved from Lobby to Games").Return(nil).Once()

	f.advance(time.Second)
	out := f.engine.HandleEvent(ctx, presence.Switched(alice, lobby, games))

	assert.Equal(t, 1, out.Notified)
	assert.Zero(t, out.RemovedRooms)
	assert.Len(t, f.engine.Registry().Rooms(lobby.ID), 1)
}

func TestVCNotifyEntering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Room(mock.Anything, games.ID).Return(games, nil).Once()
	_, err := f.engine.VCNotify(ctx, subscription.RoomRequest{Requester: "m1", Room: games.ID, Destination: "c1"})
	require.NoError(t, err)

	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "🔵 <@m1> alice joined Games").Return(nil).Once()
	f.engine.HandleEvent(ctx, presence.Joined(alice, games))
}

func TestActiveFollowRequesterNotInRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Follow(ctx, subscription.MemberRequest{
		Requester: "m1", Subject: alice.ID, Destination: "c1", Duration: 5 * time.Second, Active: true,
	})
	require.NoError(t, err)

	// No Move expectation: the mock fails the test if Move is called.
	f.mover.EXPECT().Membership(mock.Anything, presence.EntityID("m1")).Return(presence.Room{}, false, nil).Once()
	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("Lobby", nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> alice is now in Lobby").Return(nil).Once()

	f.advance(time.Second)
	out := f.engine.HandleEvent(ctx, presence.Joined(alice, lobby))

	assert.Equal(t, 1, out.Notified)
	assert.Zero(t, out.Relocated)
	assert.Zero(t, out.RelocationFailures)

	subs := f.engine.Registry().Members(alice.ID)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].IsLive(f.now))
}

func TestActiveFollowRelocates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1", Active: true})
	require.NoError(t, err)

	f.mover.EXPECT().Membership(mock.Anything, presence.EntityID("m1")).Return(games, true, nil).Once()
	f.mover.EXPECT().Move(mock.Anything, presence.EntityID("m1"), lobby.ID).Return(nil).Once()
	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("Lobby", nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> alice is now in Lobby").Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Switched(alice, games, lobby))
	assert.Equal(t, 1, out.Relocated)
	assert.Contains(t, f.categories(), rwlog.CategoryRelocation)
}

func TestActiveFollowAlreadyInTargetRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1", Active: true})
	require.NoError(t, err)

	f.mover.EXPECT().Membership(mock.Anything, presence.EntityID("m1")).Return(lobby, true, nil).Once()
	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("Lobby", nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), mock.Anything).Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Joined(alice, lobby))
	assert.Zero(t, out.Relocated)
	assert.Zero(t, out.RelocationFailures)
}

func TestActiveFollowRelocationFailureIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1", Active: true})
	require.NoError(t, err)

	f.mover.EXPECT().Membership(mock.Anything, presence.EntityID("m1")).Return(games, true, nil).Once()
	f.mover.EXPECT().Move(mock.Anything, presence.EntityID("m1"), lobby.ID).
		Return(fmt.Errorf("%w: Lobby", presence.ErrRoomLocked)).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> could not move you to Lobby: room is locked: Lobby").Return(nil).Once()
	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("Lobby", nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> alice is now in Lobby").Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Joined(alice, lobby))

	assert.Equal(t, 1, out.RelocationFailures)
	assert.Equal(t, 1, out.Notified)
	assert.Len(t, f.engine.Registry().Members(alice.ID), 1)
	assert.Contains(t, f.categories(), rwlog.CategoryError)
}

func TestFollowLeftReportsWithoutLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1", Active: true})
	require.NoError(t, err)

	// No Describe and no relocation for a Left event.
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> alice left Lobby and is no longer in any room").Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Left(alice, lobby))
	assert.Equal(t, 1, out.Notified)
}

func TestNotifyFiresOnLeftAndIsConsumed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Notify(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)

	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> alice left Lobby and is no longer in any room").Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Left(alice, lobby))
	assert.Equal(t, 1, out.Notified)
	members, _ := f.engine.Registry().Len()
	assert.Zero(t, members)
}

func TestLocationFailureStillNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Notify(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)

	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("", errors.New("invite service down")).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), contains("location is unavailable: invite service down")).Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Joined(alice, lobby))

	assert.Equal(t, 1, out.Notified)
	assert.Equal(t, 1, out.RemovedMembers)
}

func TestBulkClearRemovesPersistentSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Times(2)
	_, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)
	_, err = f.engine.Notify(ctx, subscription.MemberRequest{Requester: "m2", Subject: alice.ID, Destination: "c2"})
	require.NoError(t, err)

	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("Lobby", nil).Times(2)
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), mock.Anything).Return(nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c2"), mock.Anything).Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Joined(alice, lobby))

	assert.Equal(t, 2, out.Notified)
	assert.Equal(t, 2, out.RemovedMembers)
	assert.Empty(t, f.engine.Registry().Members(alice.ID))
}

func TestExpiredSubscriptionClearsLiveSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Times(2)
	_, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1", Duration: time.Second})
	require.NoError(t, err)
	_, err = f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m2", Subject: alice.ID, Destination: "c2", Duration: time.Hour})
	require.NoError(t, err)

	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("Lobby", nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c2"), mock.Anything).Return(nil).Once()

	f.advance(time.Second)
	out := f.engine.HandleEvent(ctx, presence.Joined(alice, lobby))

	assert.Equal(t, 1, out.Plan.Expired)
	assert.Equal(t, 2, out.RemovedMembers)
}

func TestDeliveryFailureDoesNotStopEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Room(mock.Anything, lobby.ID).Return(lobby, nil).Times(2)
	_, err := f.engine.VCNotify(ctx, subscription.RoomRequest{Requester: "m1", Room: lobby.ID, Destination: "c1"})
	require.NoError(t, err)
	_, err = f.engine.VCNotify(ctx, subscription.RoomRequest{Requester: "m2", Room: lobby.ID, Destination: "c2"})
	require.NoError(t, err)

	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), mock.Anything).Return(errors.New("channel gone")).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c2"), mock.Anything).Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Left(alice, lobby))
	assert.Equal(t, 2, out.Notified)

	var failed int
	for _, ev := range f.journal.Events() {
		if ev.Notification != nil && ev.Notification.Failed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestWhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	f.dir.EXPECT().Whereabouts(mock.Anything, alice.ID).Return(lobby, true, nil).Once()
	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("https://rw.example/invite/abc", nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> alice is in https://rw.example/invite/abc").Return(nil).Once()

	location, err := f.engine.Where(ctx, subscription.WhereRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "https://rw.example/invite/abc", location)

	// Where never touches the registry.
	members, rooms := f.engine.Registry().Len()
	assert.Zero(t, members)
	assert.Zero(t, rooms)
}

func TestWhereNotInAnyRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	f.dir.EXPECT().Whereabouts(mock.Anything, alice.ID).Return(presence.Room{}, false, nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> location unavailable: alice is not in any room").Return(nil).Once()

	_, err := f.engine.Where(ctx, subscription.WhereRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	assert.ErrorIs(t, err, subscription.ErrLocationUnavailable)
}

func TestUnresolvedEntityAbortsCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, presence.EntityID("ghost")).
		Return(presence.Entity{}, fmt.Errorf("%w: ghost", presence.ErrUnknownEntity)).Once()
	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), "<@m1> I can't find that: unknown entity: ghost").Return(nil).Once()

	_, err := f.engine.Notify(ctx, subscription.MemberRequest{Requester: "m1", Subject: "ghost", Destination: "c1"})
	assert.ErrorIs(t, err, subscription.ErrUnresolvedEntity)

	members, _ := f.engine.Registry().Len()
	assert.Zero(t, members)
}

func TestInvalidDurationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sink.EXPECT().Deliver(mock.Anything, presence.DestinationID("c1"), contains("<@m1>")).Return(nil).Once()

	_, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1", Duration: 48 * time.Hour})
	assert.ErrorIs(t, err, subscription.ErrInvalidRequest)
}

func TestMissingFieldsRejectedWithoutReport(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Notify(context.Background(), subscription.MemberRequest{Subject: alice.ID})
	assert.ErrorIs(t, err, subscription.ErrInvalidRequest)
}

func TestDefaultDurations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Times(2)
	f.dir.EXPECT().Room(mock.Anything, lobby.ID).Return(lobby, nil).Once()

	n, err := f.engine.Notify(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)
	assert.Equal(t, t0.Add(subscription.DefaultDuration), n.ExpiresAt)

	fl, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)
	assert.Equal(t, t0.Add(subscription.DefaultDuration), fl.ExpiresAt)
	assert.True(t, fl.Persistent)
	assert.False(t, fl.ActiveFollow)

	vc, err := f.engine.VCNotify(ctx, subscription.RoomRequest{Requester: "m1", Room: lobby.ID, Destination: "c1"})
	require.NoError(t, err)
	assert.Equal(t, t0.Add(subscription.DefaultDuration), vc.ExpiresAt)
	assert.Equal(t, 10*time.Minute, vc.ExpiresAt.Sub(vc.CreatedAt))
}

func TestStopFollowRemovesEveryRequester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Times(3)
	f.dir.EXPECT().Room(mock.Anything, lobby.ID).Return(lobby, nil).Once()

	_, err := f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)
	_, err = f.engine.Notify(ctx, subscription.MemberRequest{Requester: "m2", Subject: alice.ID, Destination: "c2"})
	require.NoError(t, err)
	_, err = f.engine.VCNotify(ctx, subscription.RoomRequest{Requester: "m1", Room: lobby.ID, Destination: "c1"})
	require.NoError(t, err)

	n, err := f.engine.StopFollow(ctx, subscription.StopRequest{Requester: "m3", Subject: alice.ID, Destination: "c3"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	members, rooms := f.engine.Registry().Len()
	assert.Zero(t, members)
	assert.Equal(t, 1, rooms)
}

func TestStopRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Room(mock.Anything, lobby.ID).Return(lobby, nil).Times(2)
	_, err := f.engine.VCNotify(ctx, subscription.RoomRequest{Requester: "m1", Room: lobby.ID, Destination: "c1"})
	require.NoError(t, err)

	n, err := f.engine.StopRoom(ctx, subscription.RoomRequest{Requester: "m1", Room: lobby.ID, Destination: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.engine.Subscriptions())
}

func TestJournalCorrelatesEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	_, err := f.engine.Notify(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)

	f.loc.EXPECT().Describe(mock.Anything, lobby).Return("Lobby", nil).Once()
	f.sink.EXPECT().Deliver(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	out := f.engine.HandleEvent(ctx, presence.Joined(alice, lobby))
	require.NotEmpty(t, out.EventID)

	var cats []rwlog.Category
	for _, ev := range f.journal.Events() {
		if ev.EventID == out.EventID {
			cats = append(cats, ev.Category)
		}
	}
	assert.Equal(t, []rwlog.Category{
		rwlog.CategoryPresence,
		rwlog.CategoryNotification,
		rwlog.CategorySubscription,
	}, cats)
}

func TestEngineWithGraphRelocation(t *testing.T) {
	ctx := context.Background()

	g := presence.NewGraph()
	g.AddRoom(lobby)
	g.AddRoom(games)
	g.AddEntity(alice)
	g.AddEntity(presence.Entity{ID: "m1", Name: "mallory"})

	var delivered []string
	sink := mocks.NewMockSink(t)
	sink.EXPECT().Deliver(mock.Anything, mock.Anything, mock.Anything).
		Run(func(_ context.Context, _ presence.DestinationID, text string) { delivered = append(delivered, text) }).
		Return(nil)

	loc := mocks.NewMockLocator(t)
	loc.EXPECT().Describe(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, r presence.Room) (string, error) { return r.String(), nil })

	engine := subscription.NewEngine(subscription.Collaborators{
		Directory: g, Locator: loc, Mover: g, Sink: sink,
	}, subscription.DefaultConfig())
	g.OnEvent(func(ev presence.Event) { engine.HandleEvent(ctx, ev) })

	require.NoError(t, g.Join("m1", games.ID))
	_, err := engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1", Active: true})
	require.NoError(t, err)

	require.NoError(t, g.Join(alice.ID, lobby.ID))

	room, ok, err := g.Whereabouts(ctx, "m1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lobby.ID, room.ID)
	assert.Equal(t, []string{
		"<@m1> I will let you know each time <@u1> switches rooms in the next 10m\nI will also move you to their room, please join a room now so that I can move you!",
		"<@m1> alice is now in Lobby",
	}, delivered)
}

func TestCommandConfirmations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Times(3)
	f.dir.EXPECT().Room(mock.Anything, lobby.ID).Return(lobby, nil).Times(2)

	_, err := f.engine.Notify(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)
	_, err = f.engine.Follow(ctx, subscription.MemberRequest{Requester: "m1", Subject: alice.ID, Destination: "c1", Duration: 90 * time.Minute})
	require.NoError(t, err)
	_, err = f.engine.VCNotify(ctx, subscription.RoomRequest{Requester: "m1", Room: lobby.ID, Destination: "c1", Duration: time.Hour})
	require.NoError(t, err)
	_, err = f.engine.StopFollow(ctx, subscription.StopRequest{Requester: "m1", Subject: alice.ID, Destination: "c1"})
	require.NoError(t, err)
	_, err = f.engine.StopRoom(ctx, subscription.RoomRequest{Requester: "m1", Room: lobby.ID, Destination: "c1"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"<@m1> if <@u1> joins or switches rooms in the next 10m I will notify you",
		"<@m1> I will let you know each time <@u1> switches rooms in the next 1h30m",
		"<@m1> I will notify you of all changes in `Lobby` for the next 1h",
		"<@m1> deleted all follow and notify requests for <@u1> (2 removed)",
		"<@m1> deleted all room notifications for `Lobby` (1 removed)",
	}, f.notifications())
}

func TestStopWithoutDestinationSendsNothing(t *testing.T) {
	f := newFixture(t)

	f.dir.EXPECT().Entity(mock.Anything, alice.ID).Return(alice, nil).Once()
	n, err := f.engine.StopFollow(context.Background(), subscription.StopRequest{Requester: "m1", Subject: alice.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.notifications())
}

func TestEngineConcurrentCommandsAndEvents(t *testing.T) {
	ctx := context.Background()

	g := presence.NewGraph()
	g.AddRoom(lobby)
	g.AddRoom(games)
	g.AddEntity(alice)

	loc := mocks.NewMockLocator(t)
	loc.EXPECT().Describe(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, r presence.Room) (string, error) { return r.String(), nil }).Maybe()

	inbox := delivery.NewInbox(0)
	engine := subscription.NewEngine(subscription.Collaborators{
		Directory: g, Locator: loc, Mover: g, Sink: inbox,
	}, subscription.DefaultConfig())
	g.OnEvent(func(ev presence.Event) { engine.HandleEvent(ctx, ev) })

	const workers = 8
	const rounds = 50
	for i := 0; i < workers; i++ {
		g.AddEntity(presence.Entity{ID: presence.EntityID(fmt.Sprintf("m%d", i)), Name: fmt.Sprintf("member%d", i)})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for r := 0; r < rounds; r++ {
			engine.SetClock(time.Now)
		}
	}()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			me := presence.EntityID(fmt.Sprintf("m%d", i))
			dest := presence.DestinationID(fmt.Sprintf("c%d", i))
			rooms := []presence.RoomID{lobby.ID, games.ID}

			for r := 0; r < rounds; r++ {
				_ = g.Join(me, rooms[(i+r)%2])
				_, err := engine.Follow(ctx, subscription.MemberRequest{
					Requester: me, Subject: alice.ID, Destination: dest, Active: r%2 == 0,
				})
				assert.NoError(t, err)
				_ = g.Join(alice.ID, rooms[r%2])
				_, _ = engine.Where(ctx, subscription.WhereRequest{Requester: me, Subject: alice.ID, Destination: dest})
				_, err = engine.StopFollow(ctx, subscription.StopRequest{Requester: me, Subject: alice.ID, Destination: dest})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	_, err := engine.StopFollow(ctx, subscription.StopRequest{Requester: "m0", Subject: alice.ID})
	require.NoError(t, err)
	members, rooms := engine.Registry().Len()
	assert.Zero(t, members)
	assert.Zero(t, rooms)
	assert.NotEmpty(t, inbox.All())
}
