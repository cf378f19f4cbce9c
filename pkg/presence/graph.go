package presence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Graph is an in-memory presence graph.
//
// Graph is safe for concurrent use. Events are delivered to the handler one
// at a time and in mutation order. A mutation made from inside the handler
// (for example a relocation) is queued and delivered after the handler
// returns, so the handler is never re-entered.
type Graph struct {
	mu         sync.RWMutex
	entities   map[EntityID]Entity
	rooms      map[RoomID]Room
	membership map[EntityID]RoomID
	locked     map[RoomID]bool

	emitMu      sync.Mutex
	pending     []Event
	dispatching bool
	handler     Handler

	now func() time.Time
}

// NewGraph creates an empty presence graph.
func NewGraph() *Graph {
	return &Graph{
		entities:   make(map[EntityID]Entity),
		rooms:      make(map[RoomID]Room),
		membership: make(map[EntityID]RoomID),
		locked:     make(map[RoomID]bool),
		now:        time.Now,
	}
}

// SetClock replaces the clock used to stamp events.
func (g *Graph) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// OnEvent sets the handler that receives membership events.
func (g *Graph) OnEvent(h Handler) {
	g.emitMu.Lock()
	defer g.emitMu.Unlock()
	g.handler = h
}

// AddRoom registers a room. Registering an existing ID updates its name.
func (g *Graph) AddRoom(r Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[r.ID] = r
}

// AddEntity registers an entity. Registering an existing ID updates its name.
func (g *Graph) AddEntity(e Entity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entities[e.ID] = e
}

// Lock makes the room reject moves made through Move.
func (g *Graph) Lock(id RoomID) error {
	return g.setLocked(id, true)
}

// Unlock reverts Lock.
func (g *Graph) Unlock(id RoomID) error {
	return g.setLocked(id, false)
}

func (g *Graph) setLocked(id RoomID, locked bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoom, id)
	}
	if locked {
		g.locked[id] = true
	} else {
		delete(g.locked, id)
	}
	return nil
}

// Entity resolves an entity by ID.
func (g *Graph) Entity(_ context.Context, id EntityID) (Entity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entities[id]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	return e, nil
}

// Room resolves a room by ID.
func (g *Graph) Room(_ context.Context, id RoomID) (Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	if !ok {
		return Room{}, fmt.Errorf("%w: %s", ErrUnknownRoom, id)
	}
	return r, nil
}

// Whereabouts returns the room the entity is currently in.
// The boolean is false if the entity is known but in no room.
func (g *Graph) Whereabouts(_ context.Context, id EntityID) (Room, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.entities[id]; !ok {
		return Room{}, false, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	roomID, ok := g.membership[id]
	if !ok {
		return Room{}, false, nil
	}
	return g.rooms[roomID], true, nil
}

// Membership is Whereabouts seen from the room-membership mutator side.
func (g *Graph) Membership(ctx context.Context, id EntityID) (Room, bool, error) {
	return g.Whereabouts(ctx, id)
}

// Move moves an entity that is already in a room into another room.
// It fails with ErrNotInRoom if the entity is in no room and with
// ErrRoomLocked if the target room is locked.
func (g *Graph) Move(_ context.Context, id EntityID, to RoomID) error {
	g.mu.Lock()
	entity, ok := g.entities[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	target, ok := g.rooms[to]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownRoom, to)
	}
	fromID, ok := g.membership[id]
	if !ok {
		g.mu.Unlock()
		return ErrNotInRoom
	}
	if fromID == to {
		g.mu.Unlock()
		return ErrSameRoom
	}
	if g.locked[to] {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRoomLocked, target)
	}
	g.membership[id] = to
	ev := Switched(entity, g.rooms[fromID], target)
	ev.At = g.now()
	g.mu.Unlock()

	g.emit(ev)
	return nil
}

// Join puts an entity into a room. If the entity is already in another room
// this is a switch.
func (g *Graph) Join(id EntityID, to RoomID) error {
	g.mu.Lock()
	entity, ok := g.entities[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	target, ok := g.rooms[to]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownRoom, to)
	}
	var ev Event
	fromID, inRoom := g.membership[id]
	switch {
	case inRoom && fromID == to:
		g.mu.Unlock()
		return ErrSameRoom
	case inRoom:
		ev = Switched(entity, g.rooms[fromID], target)
	default:
		ev = Joined(entity, target)
	}
	g.membership[id] = to
	ev.At = g.now()
	g.mu.Unlock()

	g.emit(ev)
	return nil
}

// Leave removes an entity from its room.
func (g *Graph) Leave(id EntityID) error {
	g.mu.Lock()
	entity, ok := g.entities[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	fromID, ok := g.membership[id]
	if !ok {
		g.mu.Unlock()
		return ErrNotInRoom
	}
	delete(g.membership, id)
	ev := Left(entity, g.rooms[fromID])
	ev.At = g.now()
	g.mu.Unlock()

	g.emit(ev)
	return nil
}

// Apply records a transition observed by an external presence source and
// forwards it to the handler. Unknown entities and rooms are registered
// from the event itself.
func (g *Graph) Apply(ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	if known, ok := g.entities[ev.Entity.ID]; ok && ev.Entity.Name == "" {
		ev.Entity = known
	} else {
		g.entities[ev.Entity.ID] = ev.Entity
	}
	ev.From = g.registerRoom(ev.From)
	ev.To = g.registerRoom(ev.To)

	switch ev.Kind {
	case EventJoined, EventSwitched:
		g.membership[ev.Entity.ID] = ev.To.ID
	case EventLeft:
		delete(g.membership, ev.Entity.ID)
	}
	if ev.At.IsZero() {
		ev.At = g.now()
	}
	g.mu.Unlock()

	g.emit(ev)
	return nil
}

// registerRoom must be called with g.mu held.
func (g *Graph) registerRoom(r Room) Room {
	if r.IsZero() {
		return r
	}
	if known, ok := g.rooms[r.ID]; ok && r.Name == "" {
		return known
	}
	g.rooms[r.ID] = r
	return r
}

// Occupants returns the entities in a room sorted by ID.
func (g *Graph) Occupants(id RoomID) []Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Entity
	for entityID, roomID := range g.membership {
		if roomID == id {
			out = append(out, g.entities[entityID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Rooms returns all registered rooms sorted by ID.
func (g *Graph) Rooms() []Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsLocked reports whether moves into the room are rejected.
func (g *Graph) IsLocked(id RoomID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.locked[id]
}

// emit queues ev and drains the queue unless another call is already
// draining it.
func (g *Graph) emit(ev Event) {
	g.emitMu.Lock()
	g.pending = append(g.pending, ev)
	if g.dispatching {
		g.emitMu.Unlock()
		return
	}
	g.dispatching = true

	for len(g.pending) > 0 {
		next := g.pending[0]
		g.pending = g.pending[1:]
		h := g.handler
		g.emitMu.Unlock()

		if h != nil {
			h(next)
		}

		g.emitMu.Lock()
	}
	g.dispatching = false
	g.emitMu.Unlock()
}
