package scenario

import (
	"fmt"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// Scenario is a scripted sequence of commands and presence events with
// expectations on the messages they produce.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `yaml:"name"`

	// Description is free text.
	Description string `yaml:"description,omitempty"`

	// Rooms are registered before the first step.
	Rooms []presence.Room `yaml:"rooms"`

	// Entities are registered, and placed if Room is set, before the first step.
	Entities []Seat `yaml:"entities"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`
}

// Seat is an entity and its starting room.
type Seat struct {
	ID   presence.EntityID `yaml:"id"`
	Name string            `yaml:"name,omitempty"`
	Room presence.RoomID   `yaml:"room,omitempty"`
}

// Step is one command or event.
type Step struct {
	// At is the offset from the scenario start ("0s", "1s", "2h").
	// Steps must not go back in time. Empty means no clock change.
	At string `yaml:"at,omitempty"`

	// As switches the acting requester.
	As presence.EntityID `yaml:"as,omitempty"`

	// In switches the destination channel.
	In presence.DestinationID `yaml:"in,omitempty"`

	// Run is a command line, as typed in the shell.
	Run string `yaml:"run,omitempty"`

	// Event is a presence event from the external source.
	Event *EventSpec `yaml:"event,omitempty"`

	// Expect holds the checks made after the step.
	Expect Expect `yaml:"expect,omitempty"`
}

// Describe returns a short label for reports.
func (s Step) Describe() string {
	if s.Run != "" {
		return s.Run
	}
	if s.Event != nil {
		return fmt.Sprintf("event %s %s", s.Event.Kind, s.Event.Entity)
	}
	return "(no-op)"
}

// EventSpec is a presence event in YAML form.
type EventSpec struct {
	Kind   string `yaml:"kind"`
	Entity string `yaml:"entity"`
	From   string `yaml:"from,omitempty"`
	To     string `yaml:"to,omitempty"`
}

// Expect holds post-step checks. Unset fields are not checked.
type Expect struct {
	// Messages are substrings of the messages delivered during the step,
	// in delivery order. The count must match.
	Messages []string `yaml:"messages,omitempty"`

	// NoMessages requires the step to deliver nothing.
	NoMessages bool `yaml:"no_messages,omitempty"`

	// Error is a substring of the step's error. Empty requires success.
	Error string `yaml:"error,omitempty"`

	// Members and Rooms are the registry sizes after the step.
	Members *int `yaml:"members,omitempty"`
	Rooms   *int `yaml:"rooms,omitempty"`

	// Location maps entity IDs to the room they must be in ("" for none).
	Location map[presence.EntityID]presence.RoomID `yaml:"location,omitempty"`
}

// LoadError provides details about a scenario loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Step is the 1-based step number (0 if not step specific).
	Step int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Step > 0 {
		msg = fmt.Sprintf("step %d: %s", e.Step, msg)
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
