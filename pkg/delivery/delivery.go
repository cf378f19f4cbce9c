// Package delivery provides message sinks for tracker notifications.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// ErrNoDestination is returned for messages without a destination.
var ErrNoDestination = errors.New("no destination")

// Sink is implemented by everything that accepts messages. It matches the
// engine's delivery interface.
type Sink interface {
	Deliver(ctx context.Context, destination presence.DestinationID, text string) error
}

// WriterSink writes "#destination: text" lines to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Deliver writes one line.
func (s *WriterSink) Deliver(_ context.Context, destination presence.DestinationID, text string) error {
	if destination == "" {
		return ErrNoDestination
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "#%s: %s\n", destination, text)
	return err
}

// Message is one message kept by an Inbox.
type Message struct {
	Destination presence.DestinationID `json:"destination"`
	Text        string                 `json:"text"`
	At          time.Time              `json:"at"`
}

// DefaultInboxLimit is the per-destination history kept by NewInbox(0).
const DefaultInboxLimit = 100

// Inbox keeps the most recent messages per destination.
type Inbox struct {
	mu    sync.RWMutex
	limit int
	byDst map[presence.DestinationID][]Message
	now   func() time.Time
}

// NewInbox creates an inbox keeping at most limit messages per destination.
func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = DefaultInboxLimit
	}
	return &Inbox{
		limit: limit,
		byDst: make(map[presence.DestinationID][]Message),
		now:   time.Now,
	}
}

// SetClock replaces the clock used to stamp messages.
func (in *Inbox) SetClock(now func() time.Time) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.now = now
}

// Deliver stores the message, dropping the oldest one when full.
func (in *Inbox) Deliver(_ context.Context, destination presence.DestinationID, text string) error {
	if destination == "" {
		return ErrNoDestination
	}
	in.mu.Lock()
	defer in.mu.Unlock()

	msgs := append(in.byDst[destination], Message{Destination: destination, Text: text, At: in.now()})
	if len(msgs) > in.limit {
		msgs = msgs[len(msgs)-in.limit:]
	}
	in.byDst[destination] = msgs
	return nil
}

// Messages returns a copy of the messages for destination, oldest first.
func (in *Inbox) Messages(destination presence.DestinationID) []Message {
	in.mu.RLock()
	defer in.mu.RUnlock()
	msgs := in.byDst[destination]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Drain returns and forgets the messages for destination.
func (in *Inbox) Drain(destination presence.DestinationID) []Message {
	in.mu.Lock()
	defer in.mu.Unlock()
	msgs := in.byDst[destination]
	delete(in.byDst, destination)
	return msgs
}

// All returns every stored message grouped by destination.
func (in *Inbox) All() map[presence.DestinationID][]Message {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make(map[presence.DestinationID][]Message, len(in.byDst))
	for d, msgs := range in.byDst {
		out[d] = append([]Message(nil), msgs...)
	}
	return out
}

// MultiSink delivers every message to all its sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a fan-out sink. Nil sinks are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Deliver hands the message to every sink and joins their errors.
func (m *MultiSink) Deliver(ctx context.Context, destination presence.DestinationID, text string) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Deliver(ctx, destination, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Sink = (*WriterSink)(nil)
	_ Sink = (*Inbox)(nil)
	_ Sink = (*MultiSink)(nil)
)
