package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/roomwatch/roomwatch-go/pkg/duration"
	rwlog "github.com/roomwatch/roomwatch-go/pkg/log"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// DefaultDuration is the lifetime of a subscription created without an
// explicit duration, for notify, follow and vcnotify alike.
const DefaultDuration = 10 * time.Minute

// Config holds engine configuration.
type Config struct {
	// Notify bounds the duration of one-shot member subscriptions.
	Notify duration.Limits

	// Follow bounds the duration of persistent member subscriptions.
	Follow duration.Limits

	// VCNotify bounds the duration of room subscriptions.
	VCNotify duration.Limits

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// Journal receives a trace of every engine decision.
	// If nil, the journal is disabled.
	Journal rwlog.Logger
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Notify:   duration.Limits{Default: DefaultDuration, Max: duration.MaxDuration},
		Follow:   duration.Limits{Default: DefaultDuration, Max: duration.MaxDuration},
		VCNotify: duration.Limits{Default: DefaultDuration, Max: duration.MaxDuration},
	}
}

// Collaborators are the external systems the engine talks to.
type Collaborators struct {
	Directory Directory
	Locator   Locator
	Sink      Sink

	// Mover is optional. Without it every active-follow relocation fails.
	Mover Mover
}

// Engine owns the subscription registry and applies presence events to it.
//
// All registry mutations, both from events and from commands, run one at a
// time under a single lock, and collaborator calls made while handling an
// event happen under that lock too. A Mover must therefore not deliver the
// event caused by a Move back into HandleEvent synchronously; presence.Graph
// queues such events until the current one has been handled.
type Engine struct {
	mu sync.Mutex

	registry  *Registry
	directory Directory
	locator   Locator
	sink      Sink
	relocator relocator

	config  Config
	logger  *slog.Logger
	journal rwlog.Logger

	clockMu sync.RWMutex
	now     func() time.Time
}

// NewEngine creates an engine with an empty registry.
func NewEngine(c Collaborators, config Config) *Engine {
	defaults := DefaultConfig()
	if config.Notify.Default <= 0 {
		config.Notify = defaults.Notify
	}
	if config.Follow.Default <= 0 {
		config.Follow = defaults.Follow
	}
	if config.VCNotify.Default <= 0 {
		config.VCNotify = defaults.VCNotify
	}

	journal := config.Journal
	if journal == nil {
		journal = rwlog.NoopLogger{}
	}

	return &Engine{
		registry:  NewRegistry(),
		directory: c.Directory,
		locator:   c.Locator,
		sink:      c.Sink,
		relocator: relocator{mover: c.Mover},
		config:    config,
		logger:    config.Logger,
		journal:   journal,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for creation and expiry checks.
func (e *Engine) SetClock(now func() time.Time) {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	e.now = now
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.clock()
}

func (e *Engine) clock() time.Time {
	e.clockMu.RLock()
	defer e.clockMu.RUnlock()
	return e.now()
}

// Registry returns the engine's registry. Callers must only read from it.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Subscriptions returns a snapshot of all registered subscriptions,
// including expired ones that have not been cleared yet.
func (e *Engine) Subscriptions() []Subscription {
	return e.registry.Snapshot()
}

// Outcome summarizes what handling one event did.
type Outcome struct {
	// EventID is the journal correlation ID of the event.
	EventID string

	// Plan is the match plan the event was handled with.
	Plan Plan

	// Notified counts match notifications handed to the sink.
	Notified int

	// Relocated counts requesters that were moved.
	Relocated int

	// RelocationFailures counts rejected moves.
	RelocationFailures int

	// RemovedMembers and RemovedRooms count cleared subscriptions.
	RemovedMembers int
	RemovedRooms   int
}

// HandleEvent matches one presence event against the registry, runs
// relocations, dispatches notifications and finally clears consumed and
// expired subscriptions.
func (e *Engine) HandleEvent(ctx context.Context, ev presence.Event) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := xid.New().String()
	now := e.clock()
	e.journal.Log(presenceEntry(id, now, ev))

	plan := Match(e.registry, ev, now)
	out := Outcome{EventID: id, Plan: plan}
	if plan.Empty() {
		return out
	}

	e.debugLog("HandleEvent: matched",
		"event", ev.String(),
		"members", len(plan.Members),
		"rooms", len(plan.Rooms),
		"expired", plan.Expired)

	for _, f := range plan.Members {
		e.fireMember(ctx, id, f.Subscription, ev, &out)
	}
	for _, f := range plan.Rooms {
		e.deliver(ctx, e.entry(id, f.Subscription), f.Subscription.Destination, f.Direction, roomText(f, ev))
		out.Notified++
	}

	if plan.ClearSubject {
		out.RemovedMembers = e.registry.RemoveBySubject(ev.Entity.ID)
		e.journalRemoval(id, KindMember, string(ev.Entity.ID), rwlog.ActionCleared, out.RemovedMembers)
	}
	for _, room := range plan.ClearRooms {
		n := e.registry.RemoveByRoom(room)
		out.RemovedRooms += n
		e.journalRemoval(id, KindRoom, string(room), rwlog.ActionCleared, n)
	}

	return out
}

// fireMember relocates (for active follow) and notifies one member
// subscriber. Neither step affects removal of the subscription.
func (e *Engine) fireMember(ctx context.Context, id string, sub Subscription, ev presence.Event, out *Outcome) {
	if sub.ActiveFollow && ev.Kind != presence.EventLeft {
		outcome, err := e.relocator.relocate(ctx, sub.Requester, ev.To)

		entry := e.entry(id, sub)
		entry.Category = rwlog.CategoryRelocation
		entry.Relocation = &rwlog.RelocationEvent{Target: string(ev.To.ID), Outcome: outcome}
		if err != nil {
			entry.Relocation.Reason = err.Error()
		}
		e.journal.Log(entry)

		switch {
		case errors.Is(err, ErrNotInRoom):
			e.debugLog("fireMember: requester not in a room, relocation skipped", "requester", sub.Requester)
		case err != nil:
			out.RelocationFailures++
			e.report(ctx, id, sub.Requester, sub.Subject, sub.Destination, err, relocationFailedText(sub, ev.To, err))
		case outcome == rwlog.RelocationMoved:
			out.Relocated++
		}
	}

	var text string
	if ev.Kind == presence.EventLeft {
		text = memberText(sub, ev, "")
	} else if location, err := e.describe(ctx, ev.To); err != nil {
		e.journalError(id, sub.Requester, sub.Subject, sub.Destination, err)
		text = locationFailedText(sub, ev, err)
	} else {
		text = memberText(sub, ev, location)
	}

	e.deliver(ctx, e.entry(id, sub), sub.Destination, 0, text)
	out.Notified++
}

// WhereRequest asks for the current room of an entity.
type WhereRequest struct {
	Requester   presence.EntityID
	Subject     presence.EntityID
	Destination presence.DestinationID
}

// Where answers a point query and delivers the answer to the destination.
// It does not touch the registry.
func (e *Engine) Where(ctx context.Context, req WhereRequest) (string, error) {
	id := xid.New().String()
	if req.Requester == "" || req.Subject == "" || req.Destination == "" {
		return "", fmt.Errorf("%w: requester, subject and destination are required", ErrInvalidRequest)
	}

	subject, err := e.directory.Entity(ctx, req.Subject)
	if err != nil {
		return "", e.fail(ctx, id, req.Requester, string(req.Subject), req.Destination, fmt.Errorf("%w: %v", ErrUnresolvedEntity, err))
	}

	room, ok, err := e.directory.Whereabouts(ctx, req.Subject)
	if err != nil {
		return "", e.fail(ctx, id, req.Requester, string(req.Subject), req.Destination, fmt.Errorf("%w: %v", ErrLocationUnavailable, err))
	}
	if !ok {
		return "", e.fail(ctx, id, req.Requester, string(req.Subject), req.Destination, fmt.Errorf("%w: %s is not in any room", ErrLocationUnavailable, subject))
	}

	location, err := e.describe(ctx, room)
	if err != nil {
		return "", e.fail(ctx, id, req.Requester, string(req.Subject), req.Destination, err)
	}

	entry := e.commandEntry(id, req.Requester, string(req.Subject), req.Destination)
	e.deliver(ctx, entry, req.Destination, 0, whereText(req.Requester, subject, location))
	return location, nil
}

// MemberRequest registers a member subscription.
type MemberRequest struct {
	Requester   presence.EntityID
	Subject     presence.EntityID
	Destination presence.DestinationID

	// Duration is the subscription lifetime. Zero selects the default.
	Duration time.Duration

	// Active requests relocation on every move (Follow only).
	Active bool
}

// Notify registers a one-shot member subscription.
func (e *Engine) Notify(ctx context.Context, req MemberRequest) (Subscription, error) {
	return e.subscribeMember(ctx, req, false, false, e.config.Notify)
}

// Follow registers a persistent member subscription, relocating the
// requester on every move if req.Active is set.
func (e *Engine) Follow(ctx context.Context, req MemberRequest) (Subscription, error) {
	return e.subscribeMember(ctx, req, true, req.Active, e.config.Follow)
}

func (e *Engine) subscribeMember(ctx context.Context, req MemberRequest, persistent, active bool, limits duration.Limits) (Subscription, error) {
	id := xid.New().String()
	if req.Requester == "" || req.Subject == "" || req.Destination == "" {
		return Subscription{}, fmt.Errorf("%w: requester, subject and destination are required", ErrInvalidRequest)
	}

	d, err := e.resolveDuration(req.Duration, limits)
	if err != nil {
		return Subscription{}, e.fail(ctx, id, req.Requester, string(req.Subject), req.Destination, err)
	}
	if _, err := e.directory.Entity(ctx, req.Subject); err != nil {
		return Subscription{}, e.fail(ctx, id, req.Requester, string(req.Subject), req.Destination, fmt.Errorf("%w: %v", ErrUnresolvedEntity, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sub := newMember(req.Requester, req.Subject, req.Destination, e.clock(), d, persistent, active)
	e.registry.Add(sub)
	e.journalAdded(id, sub)
	e.debugLog("subscription added", "mode", sub.Mode(), "requester", sub.Requester, "subject", sub.Subject, "expires", sub.ExpiresAt)

	var text string
	if persistent {
		text = followConfirmText(sub, d)
	} else {
		text = notifyConfirmText(sub, d)
	}
	e.confirm(ctx, id, sub.Requester, sub.Subject, sub.Destination, text)
	return sub, nil
}

// RoomRequest registers or stops a room subscription.
type RoomRequest struct {
	Requester   presence.EntityID
	Room        presence.RoomID
	Destination presence.DestinationID

	// Duration is the subscription lifetime. Zero selects the default.
	Duration time.Duration
}

// VCNotify registers a persistent room subscription covering both entering
// and leaving.
func (e *Engine) VCNotify(ctx context.Context, req RoomRequest) (Subscription, error) {
	id := xid.New().String()
	if req.Requester == "" || req.Room == "" || req.Destination == "" {
		return Subscription{}, fmt.Errorf("%w: requester, room and destination are required", ErrInvalidRequest)
	}

	d, err := e.resolveDuration(req.Duration, e.config.VCNotify)
	if err != nil {
		return Subscription{}, e.fail(ctx, id, req.Requester, string(req.Room), req.Destination, err)
	}
	room, err := e.directory.Room(ctx, req.Room)
	if err != nil {
		return Subscription{}, e.fail(ctx, id, req.Requester, string(req.Room), req.Destination, fmt.Errorf("%w: %v", ErrUnresolvedEntity, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sub := newRoom(req.Requester, req.Room, req.Destination, e.clock(), d)
	e.registry.Add(sub)
	e.journalAdded(id, sub)
	e.debugLog("subscription added", "mode", sub.Mode(), "requester", sub.Requester, "room", sub.Subject, "expires", sub.ExpiresAt)

	e.confirm(ctx, id, sub.Requester, sub.Subject, sub.Destination, vcnotifyConfirmText(sub, room, d))
	return sub, nil
}

// StopRequest removes subscriptions on a subject.
type StopRequest struct {
	Requester   presence.EntityID
	Subject     presence.EntityID
	Destination presence.DestinationID
}

// StopFollow removes every member subscription on req.Subject, whoever
// created it. Room subscriptions are untouched. It returns the number of
// subscriptions removed.
func (e *Engine) StopFollow(ctx context.Context, req StopRequest) (int, error) {
	id := xid.New().String()
	if req.Subject == "" {
		return 0, fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if _, err := e.directory.Entity(ctx, req.Subject); err != nil {
		return 0, e.fail(ctx, id, req.Requester, string(req.Subject), req.Destination, fmt.Errorf("%w: %v", ErrUnresolvedEntity, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.registry.RemoveBySubject(req.Subject)
	e.journalRemoval(id, KindMember, string(req.Subject), rwlog.ActionStopped, n)
	e.confirm(ctx, id, req.Requester, string(req.Subject), req.Destination, stopFollowText(req.Requester, req.Subject, n))
	return n, nil
}

// StopRoom removes every room subscription on req.Room.
func (e *Engine) StopRoom(ctx context.Context, req RoomRequest) (int, error) {
	id := xid.New().String()
	if req.Room == "" {
		return 0, fmt.Errorf("%w: room is required", ErrInvalidRequest)
	}
	room, err := e.directory.Room(ctx, req.Room)
	if err != nil {
		return 0, e.fail(ctx, id, req.Requester, string(req.Room), req.Destination, fmt.Errorf("%w: %v", ErrUnresolvedEntity, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.registry.RemoveByRoom(req.Room)
	e.journalRemoval(id, KindRoom, string(req.Room), rwlog.ActionStopped, n)
	e.confirm(ctx, id, req.Requester, string(req.Room), req.Destination, stopRoomText(req.Requester, room, n))
	return n, nil
}

func (e *Engine) resolveDuration(d time.Duration, limits duration.Limits) (time.Duration, error) {
	d, err := limits.Resolve(d)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return d, nil
}

// describe runs the location-lookup protocol. Failures are wrapped in
// ErrLocationUnavailable.
func (e *Engine) describe(ctx context.Context, room presence.Room) (string, error) {
	if e.locator == nil {
		return room.String(), nil
	}
	location, err := e.locator.Describe(ctx, room)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return location, nil
}

// fail reports err to the requester and returns it.
func (e *Engine) fail(ctx context.Context, id string, requester presence.EntityID, subject string, dest presence.DestinationID, err error) error {
	e.report(ctx, id, requester, subject, dest, err, errorText(requester, err))
	return err
}

// report journals err and delivers text to dest.
func (e *Engine) report(ctx context.Context, id string, requester presence.EntityID, subject string, dest presence.DestinationID, err error, text string) {
	e.journalError(id, requester, subject, dest, err)
	if dest == "" {
		return
	}
	e.deliver(ctx, e.commandEntry(id, requester, subject, dest), dest, 0, text)
}

// confirm delivers a command confirmation if the command named a
// destination.
func (e *Engine) confirm(ctx context.Context, id string, requester presence.EntityID, subject string, dest presence.DestinationID, text string) {
	if dest == "" {
		return
	}
	e.deliver(ctx, e.commandEntry(id, requester, subject, dest), dest, 0, text)
}

// deliver hands text to the sink and journals it. Delivery failures are
// logged and otherwise ignored.
func (e *Engine) deliver(ctx context.Context, entry rwlog.Event, dest presence.DestinationID, dir Direction, text string) {
	entry.Category = rwlog.CategoryNotification
	entry.Notification = &rwlog.NotificationEvent{Text: text}
	if dir != 0 {
		entry.Notification.Direction = dir.String()
	}

	if e.sink != nil {
		if err := e.sink.Deliver(ctx, dest, text); err != nil {
			entry.Notification.Failed = true
			e.warnLog("delivery failed", "destination", dest, "error", err)
		}
	}
	e.journal.Log(entry)
}

func (e *Engine) debugLog(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) warnLog(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
