package log

import "sync"

// Logger is the interface applications implement to receive journal events.
// Pass nil or NoopLogger to disable the journal.
type Logger interface {
	// Log records an event. Implementations must be thread-safe.
	// The engine calls Log while holding its lock; blocking delays event handling.
	Log(event Event)
}

// NoopLogger discards all events. Use when the journal is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Recorder keeps events in memory. It is meant for tests and for the
// interactive shell's "journal" command.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewRecorder creates a Recorder that keeps at most limit events.
// A limit of zero keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Log appends the event, dropping the oldest one when full.
func (r *Recorder) Log(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = r.events[len(r.events)-r.limit:]
	}
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = (*Recorder)(nil)
)
