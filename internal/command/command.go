// Package command parses and executes tracker commands typed by a user.
// It is shared by the interactive shell and the scenario runner.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roomwatch/roomwatch-go/pkg/duration"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
	"github.com/roomwatch/roomwatch-go/pkg/subscription"
)

// Command errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrQuit           = errors.New("quit")
)

// Dispatcher executes command lines on behalf of one acting entity.
type Dispatcher struct {
	engine *subscription.Engine
	graph  *presence.Graph
	out    io.Writer

	requester   presence.EntityID
	destination presence.DestinationID
}

// New creates a dispatcher writing command output to out.
func New(engine *subscription.Engine, graph *presence.Graph, out io.Writer) *Dispatcher {
	return &Dispatcher{
		engine:      engine,
		graph:       graph,
		out:         out,
		destination: "general",
	}
}

// As sets the acting requester.
func (d *Dispatcher) As(id presence.EntityID) {
	d.requester = id
}

// In sets the destination channel of subsequent commands.
func (d *Dispatcher) In(dest presence.DestinationID) {
	d.destination = dest
}

// Requester returns the acting requester.
func (d *Dispatcher) Requester() presence.EntityID {
	return d.requester
}

// Destination returns the current destination channel.
func (d *Dispatcher) Destination() presence.DestinationID {
	return d.destination
}

// Execute runs one command line. It returns ErrQuit for quit commands.
func (d *Dispatcher) Execute(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		d.printHelp()
		return nil
	case "quit", "exit", "q":
		return ErrQuit
	case "as":
		return d.cmdAs(args)
	case "in":
		return d.cmdIn(args)
	case "where", "w":
		return d.cmdWhere(ctx, args)
	case "notify", "n":
		return d.cmdNotify(ctx, args)
	case "follow", "f":
		return d.cmdFollow(ctx, args)
	case "fs", "fd", "ns", "nd":
		return d.cmdStopFollow(ctx, args)
	case "vcnotify", "v", "vc", "vcn":
		return d.cmdVCNotify(ctx, args)
	case "subs", "ls":
		return d.cmdSubs()
	case "rooms":
		return d.cmdRooms()
	case "join":
		return d.cmdJoin(args)
	case "move":
		return d.cmdMove(ctx, args)
	case "leave":
		return d.cmdLeave(args)
	case "lock":
		return d.cmdLock(args, true)
	case "unlock":
		return d.cmdLock(args, false)
	default:
		return fmt.Errorf("%w: %s (type 'help' for commands)", ErrUnknownCommand, cmd)
	}
}

func (d *Dispatcher) printHelp() {
	fmt.Fprintln(d.out, `
Roomwatch Commands:
  Tracking:
    where|w <entity>                        - Show the room an entity is in
    notify|n <entity> [duration]            - Notify once when the entity moves
    follow|f <entity> [duration] [--active] - Notify on every move (--active: move me too)
    follow stop <entity>                    - Stop all member subscriptions on the entity
                                              (also fs, fd, ns, nd <entity>)
    vcnotify|v|vc|vcn <room> [duration]     - Notify when anyone enters or leaves the room
    vcnotify stop <room>                    - Stop all room subscriptions on the room
    subs                                    - List subscriptions

  Presence:
    join <entity> <room>                    - Put an entity into a room
    move <entity> <room>                    - Move an entity that is in a room (honors locks)
    leave <entity>                          - Remove an entity from its room
    lock <room> / unlock <room>             - Reject or accept moves into a room
    rooms                                   - List rooms and occupants

  Session:
    as <entity>                             - Act as another requester
    in <destination>                        - Send replies to another channel
    help                                    - Show this help
    quit                                    - Exit

  Durations: 90s, 1h30m, or bare minutes (30). Default 10m.`)
}

func (d *Dispatcher) cmdAs(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: as <entity>", ErrUsage)
	}
	d.requester = entityArg(args[0])
	fmt.Fprintf(d.out, "Acting as %s\n", d.requester)
	return nil
}

func (d *Dispatcher) cmdIn(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: in <destination>", ErrUsage)
	}
	d.destination = presence.DestinationID(strings.TrimPrefix(args[0], "#"))
	fmt.Fprintf(d.out, "Replying in #%s\n", d.destination)
	return nil
}

func (d *Dispatcher) cmdWhere(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: where <entity>", ErrUsage)
	}
	_, err := d.engine.Where(ctx, subscription.WhereRequest{
		Requester:   d.requester,
		Subject:     entityArg(args[0]),
		Destination: d.destination,
	})
	return err
}

func (d *Dispatcher) cmdNotify(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: notify <entity> [duration]", ErrUsage)
	}
	dur, err := durationArg(args[1:])
	if err != nil {
		return err
	}
	sub, err := d.engine.Notify(ctx, subscription.MemberRequest{
		Requester:   d.requester,
		Subject:     entityArg(args[0]),
		Destination: d.destination,
		Duration:    dur,
	})
	if err != nil {
		return err
	}
	d.printAdded(sub)
	return nil
}

func (d *Dispatcher) cmdFollow(ctx context.Context, args []string) error {
	if len(args) == 2 && strings.EqualFold(args[0], "stop") {
		return d.cmdStopFollow(ctx, args[1:])
	}

	active := false
	var rest []string
	for _, a := range args {
		switch a {
		case "--active", "-a":
			active = true
		default:
			rest = append(rest, a)
		}
	}
	if len(rest) < 1 || len(rest) > 2 {
		return fmt.Errorf("%w: follow <entity> [duration] [--active] | follow stop <entity>", ErrUsage)
	}
	dur, err := durationArg(rest[1:])
	if err != nil {
		return err
	}
	sub, err := d.engine.Follow(ctx, subscription.MemberRequest{
		Requester:   d.requester,
		Subject:     entityArg(rest[0]),
		Destination: d.destination,
		Duration:    dur,
		Active:      active,
	})
	if err != nil {
		return err
	}
	d.printAdded(sub)
	return nil
}

func (d *Dispatcher) cmdStopFollow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: follow stop <entity>", ErrUsage)
	}
	subject := entityArg(args[0])
	n, err := d.engine.StopFollow(ctx, subscription.StopRequest{
		Requester:   d.requester,
		Subject:     subject,
		Destination: d.destination,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Removed %d subscription(s) on %s\n", n, subject)
	return nil
}

func (d *Dispatcher) cmdVCNotify(ctx context.Context, args []string) error {
	if len(args) == 2 && strings.EqualFold(args[0], "stop") {
		n, err := d.engine.StopRoom(ctx, subscription.RoomRequest{
			Requester:   d.requester,
			Room:        presence.RoomID(args[1]),
			Destination: d.destination,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Removed %d subscription(s) on %s\n", n, args[1])
		return nil
	}

	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: vcnotify <room> [duration] | vcnotify stop <room>", ErrUsage)
	}
	dur, err := durationArg(args[1:])
	if err != nil {
		return err
	}
	sub, err := d.engine.VCNotify(ctx, subscription.RoomRequest{
		Requester:   d.requester,
		Room:        presence.RoomID(args[0]),
		Destination: d.destination,
		Duration:    dur,
	})
	if err != nil {
		return err
	}
	d.printAdded(sub)
	return nil
}

func (d *Dispatcher) printAdded(sub subscription.Subscription) {
	fmt.Fprintf(d.out, "Subscribed: %s %s for %s (expires %s)\n",
		sub.Mode(), sub.Subject,
		duration.Format(sub.ExpiresAt.Sub(sub.CreatedAt)),
		sub.ExpiresAt.Format("15:04:05"))
}

func (d *Dispatcher) cmdSubs() error {
	subs := d.engine.Subscriptions()
	if len(subs) == 0 {
		fmt.Fprintln(d.out, "No subscriptions")
		return nil
	}
	now := d.engine.Now()
	tw := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tSUBJECT\tREQUESTER\tDESTINATION\tEXPIRES\tREMAINING")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t#%s\t%s\t%s\n", s.Mode(), s.Subject, s.Requester, s.Destination,
			s.ExpiresAt.Format("15:04:05"), duration.Format(s.Remaining(now)))
	}
	return tw.Flush()
}

func (d *Dispatcher) cmdRooms() error {
	for _, r := range d.graph.Rooms() {
		lock := ""
		if d.graph.IsLocked(r.ID) {
			lock = " (locked)"
		}
		var names []string
		for _, e := range d.graph.Occupants(r.ID) {
			names = append(names, e.String())
		}
		fmt.Fprintf(d.out, "%s [%s]%s: %s\n", r, r.ID, lock, strings.Join(names, ", "))
	}
	return nil
}

func (d *Dispatcher) cmdJoin(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: join <entity> <room>", ErrUsage)
	}
	return d.graph.Join(entityArg(args[0]), presence.RoomID(args[1]))
}

func (d *Dispatcher) cmdMove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: move <entity> <room>", ErrUsage)
	}
	return d.graph.Move(ctx, entityArg(args[0]), presence.RoomID(args[1]))
}

func (d *Dispatcher) cmdLeave(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: leave <entity>", ErrUsage)
	}
	return d.graph.Leave(entityArg(args[0]))
}

func (d *Dispatcher) cmdLock(args []string, locked bool) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: lock|unlock <room>", ErrUsage)
	}
	if locked {
		return d.graph.Lock(presence.RoomID(args[0]))
	}
	return d.graph.Unlock(presence.RoomID(args[0]))
}

// entityArg accepts a bare ID or the mention form <@id>.
func entityArg(s string) presence.EntityID {
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">")
		s = strings.TrimPrefix(s, "!")
	}
	return presence.EntityID(s)
}

func durationArg(args []string) (time.Duration, error) {
	if len(args) == 0 {
		return 0, nil
	}
	return duration.Parse(args[0], 0)
}
