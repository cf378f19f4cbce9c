// Package duration parses and bounds the optional duration argument of
// roomwatch subscription commands.
//
// A duration argument is either a Go duration string ("90s", "1h30m") or a
// bare integer, which is read as minutes. An empty argument selects the
// command's default.
//
// # Limits
//
// Durations shorter than MinDuration or longer than the configured maximum
// are rejected with ErrInvalidDuration rather than clamped, so a typo like
// "5000h" is reported instead of silently shortened.
//
// # Deadlines
//
// A subscription's deadline is computed once, at creation, as creation time
// plus duration. It is a wall-clock time and is never recomputed.
package duration
