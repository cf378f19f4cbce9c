package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roomwatch/roomwatch-go/internal/command"
	"github.com/roomwatch/roomwatch-go/pkg/delivery"
	"github.com/roomwatch/roomwatch-go/pkg/invite"
	rwlog "github.com/roomwatch/roomwatch-go/pkg/log"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
	"github.com/roomwatch/roomwatch-go/pkg/subscription"
)

// DefaultStart is the fake clock's start time.
var DefaultStart = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// Options configures a Runner.
type Options struct {
	// Engine is the engine configuration. Zero means the defaults.
	Engine subscription.Config

	// Journal receives the engine journal of every run.
	Journal rwlog.Logger

	// Transcript receives commands and delivered messages as they happen.
	Transcript io.Writer

	// Logger is the optional logger for debug output.
	Logger *slog.Logger

	// Start is the fake clock's start time. Zero means DefaultStart.
	Start time.Time
}

// Runner executes scenarios against a fresh engine each.
type Runner struct {
	opts Options
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	if opts.Start.IsZero() {
		opts.Start = DefaultStart
	}
	return &Runner{opts: opts}
}

// Failure is one failed expectation.
type Failure struct {
	Step    int
	Label   string
	Message string
}

func (f Failure) String() string {
	return fmt.Sprintf("step %d (%s): %s", f.Step, f.Label, f.Message)
}

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Steps    int
	Failures []Failure
	Messages int
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// recorder keeps delivered messages in delivery order.
type recorder struct {
	mu   sync.Mutex
	now  func() time.Time
	msgs []delivery.Message
}

func (r *recorder) Deliver(_ context.Context, dest presence.DestinationID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, delivery.Message{Destination: dest, Text: text, At: r.now()})
	return nil
}

func (r *recorder) take() []delivery.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

// Run executes sc and checks its expectations.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	now := r.opts.Start
	clock := func() time.Time { return now }

	g := presence.NewGraph()
	g.SetClock(clock)
	for _, room := range sc.Rooms {
		g.AddRoom(room)
	}
	for _, s := range sc.Entities {
		g.AddEntity(presence.Entity{ID: s.ID, Name: s.Name})
	}
	for _, s := range sc.Entities {
		if s.Room == "" {
			continue
		}
		if err := g.Join(s.ID, s.Room); err != nil {
			return nil, fmt.Errorf("seat %s: %w", s.ID, err)
		}
	}

	invites, err := invite.NewService(invite.Config{
		BaseURL: "https://roomwatch.test",
		Secret:  []byte("scenario:" + sc.Name),
		Logger:  r.opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	invites.SetClock(clock)

	rec := &recorder{now: clock}
	var sink subscription.Sink = rec
	var out io.Writer = io.Discard
	if r.opts.Transcript != nil {
		out = r.opts.Transcript
		sink = delivery.NewMultiSink(rec, delivery.NewWriterSink(r.opts.Transcript))
	}

	config := r.opts.Engine
	config.Journal = r.opts.Journal
	if config.Logger == nil {
		config.Logger = r.opts.Logger
	}
	engine := subscription.NewEngine(subscription.Collaborators{
		Directory: g,
		Locator:   invites,
		Mover:     g,
		Sink:      sink,
	}, config)
	engine.SetClock(clock)
	g.OnEvent(func(ev presence.Event) { engine.HandleEvent(ctx, ev) })

	d := command.New(engine, g, out)
	res := &Result{Name: sc.Name, Steps: len(sc.Steps)}

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if st.At != "" {
			at, _ := time.ParseDuration(st.At)
			now = r.opts.Start.Add(at)
		}
		if st.As != "" {
			d.As(st.As)
		}
		if st.In != "" {
			d.In(st.In)
		}

		var stepErr error
		switch {
		case st.Run != "":
			fmt.Fprintf(out, "[%s] %s> %s\n", now.Sub(r.opts.Start), d.Requester(), st.Run)
			stepErr = d.Execute(ctx, st.Run)
		case st.Event != nil:
			stepErr = applyEvent(g, *st.Event, now)
		}

		msgs := rec.take()
		res.Messages += len(msgs)
		for _, msg := range check(st, stepErr, msgs, engine, g) {
			res.Failures = append(res.Failures, Failure{Step: i + 1, Label: st.Describe(), Message: msg})
		}
	}

	r.debugLog("scenario finished", "name", sc.Name, "steps", res.Steps, "failures", len(res.Failures))
	return res, nil
}

func applyEvent(g *presence.Graph, spec EventSpec, at time.Time) error {
	kind, err := presence.ParseEventKind(spec.Kind)
	if err != nil {
		return err
	}
	return g.Apply(presence.Event{
		Kind:   kind,
		Entity: presence.Entity{ID: presence.EntityID(spec.Entity)},
		From:   presence.Room{ID: presence.RoomID(spec.From)},
		To:     presence.Room{ID: presence.RoomID(spec.To)},
		At:     at,
	})
}

// check returns one message per failed expectation.
func check(st Step, stepErr error, msgs []delivery.Message, engine *subscription.Engine, g *presence.Graph) []string {
	var failures []string
	exp := st.Expect

	switch {
	case exp.Error == "" && stepErr != nil && !errors.Is(stepErr, command.ErrQuit):
		failures = append(failures, fmt.Sprintf("unexpected error: %v", stepErr))
	case exp.Error != "" && stepErr == nil:
		failures = append(failures, fmt.Sprintf("expected error containing %q, got none", exp.Error))
	case exp.Error != "" && !strings.Contains(stepErr.Error(), exp.Error):
		failures = append(failures, fmt.Sprintf("error %q does not contain %q", stepErr, exp.Error))
	}

	if exp.NoMessages && len(msgs) > 0 {
		failures = append(failures, fmt.Sprintf("expected no messages, got %d: %q", len(msgs), msgs[0].Text))
	}
	if len(exp.Messages) > 0 {
		if len(msgs) != len(exp.Messages) {
			failures = append(failures, fmt.Sprintf("expected %d message(s), got %d%s", len(exp.Messages), len(msgs), listTexts(msgs)))
		} else {
			for i, want := range exp.Messages {
				if !strings.Contains(msgs[i].Text, want) {
					failures = append(failures, fmt.Sprintf("message %d %q does not contain %q", i+1, msgs[i].Text, want))
				}
			}
		}
	}

	members, rooms := engine.Registry().Len()
	if exp.Members != nil && *exp.Members != members {
		failures = append(failures, fmt.Sprintf("member subscriptions = %d, want %d", members, *exp.Members))
	}
	if exp.Rooms != nil && *exp.Rooms != rooms {
		failures = append(failures, fmt.Sprintf("room subscriptions = %d, want %d", rooms, *exp.Rooms))
	}

	for id, want := range exp.Location {
		room, ok, err := g.Whereabouts(context.Background(), id)
		var got presence.RoomID
		if err == nil && ok {
			got = room.ID
		}
		if got != want {
			failures = append(failures, fmt.Sprintf("%s is in %q, want %q", id, got, want))
		}
	}
	return failures
}

func listTexts(msgs []delivery.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	return ": " + strings.Join(texts, " | ")
}

func (r *Runner) debugLog(msg string, args ...any) {
	if r.opts.Logger != nil {
		r.opts.Logger.Debug(msg, args...)
	}
}
