package subscription

import (
	"time"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// Direction tells a room subscriber whether the entity came or went.
type Direction uint8

const (
	// DirectionEntering means the entity entered the subscribed room.
	DirectionEntering Direction = iota + 1

	// DirectionLeaving means the entity left the subscribed room.
	DirectionLeaving
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionEntering:
		return "ENTERING"
	case DirectionLeaving:
		return "LEAVING"
	default:
		return "UNKNOWN"
	}
}

// Glyph returns the marker used in room notifications.
func (d Direction) Glyph() string {
	if d == DirectionEntering {
		return "🔵"
	}
	return "🔴"
}

// Fire is one subscription matched by an event.
type Fire struct {
	Subscription Subscription

	// Direction is set for room subscriptions only.
	Direction Direction
}

// Plan is the outcome of matching one event against the registry. It is
// computed without side effects and applied by the engine.
type Plan struct {
	Event presence.Event

	// Members are live member subscriptions of the moving entity.
	Members []Fire

	// Rooms are live room subscriptions on the rooms entered and left, the
	// entering pass first.
	Rooms []Fire

	// ClearSubject is set if any member subscription of the entity was
	// consumed or expired.
	ClearSubject bool

	// ClearRooms lists every room with a consumed or expired subscription.
	ClearRooms []presence.RoomID

	// Expired counts subscriptions found expired during the scan.
	Expired int
}

// Empty reports whether the plan neither fires nor removes anything.
func (p Plan) Empty() bool {
	return len(p.Members) == 0 && len(p.Rooms) == 0 && !p.ClearSubject && len(p.ClearRooms) == 0
}

// Match scans the registry for subscriptions matching ev at now.
func Match(reg *Registry, ev presence.Event, now time.Time) Plan {
	plan := Plan{Event: ev}

	reg.ForEachMember(ev.Entity.ID, func(s Subscription) {
		if !s.IsLive(now) {
			plan.Expired++
			plan.ClearSubject = true
			return
		}
		plan.Members = append(plan.Members, Fire{Subscription: s})
		if !s.Persistent {
			plan.ClearSubject = true
		}
	})

	switch ev.Kind {
	case presence.EventJoined:
		plan.scanRoom(reg, ev.To.ID, DirectionEntering, now)
	case presence.EventSwitched:
		plan.scanRoom(reg, ev.To.ID, DirectionEntering, now)
		plan.scanRoom(reg, ev.From.ID, DirectionLeaving, now)
	case presence.EventLeft:
		plan.scanRoom(reg, ev.From.ID, DirectionLeaving, now)
	}

	return plan
}

func (p *Plan) scanRoom(reg *Registry, room presence.RoomID, dir Direction, now time.Time) {
	consumed := false
	reg.ForEachRoom(room, func(s Subscription) {
		if !s.IsLive(now) {
			p.Expired++
			consumed = true
			return
		}
		p.Rooms = append(p.Rooms, Fire{Subscription: s, Direction: dir})
		if !s.Persistent {
			consumed = true
		}
	})
	if consumed {
		p.markRoom(room)
	}
}

func (p *Plan) markRoom(room presence.RoomID) {
	for _, r := range p.ClearRooms {
		if r == room {
			return
		}
	}
	p.ClearRooms = append(p.ClearRooms, room)
}
