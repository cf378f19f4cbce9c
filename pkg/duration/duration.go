package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration errors.
var (
	ErrInvalidDuration = errors.New("invalid duration")
)

// Duration limits.
const (
	// MinDuration is the minimum allowed duration (1 second).
	MinDuration = 1 * time.Second

	// MaxDuration is the default upper bound (24 hours).
	MaxDuration = 24 * time.Hour
)

// Limits bounds the duration argument of one command.
type Limits struct {
	// Default is used when the argument is empty.
	Default time.Duration

	// Max is the longest accepted duration. Zero means MaxDuration.
	Max time.Duration
}

// Resolve returns the default for a zero d and otherwise checks d against
// the limits.
func (l Limits) Resolve(d time.Duration) (time.Duration, error) {
	if d == 0 {
		return l.Default, nil
	}
	if err := l.Check(d); err != nil {
		return 0, err
	}
	return d, nil
}

// Check returns ErrInvalidDuration if d is outside [MinDuration, Max].
func (l Limits) Check(d time.Duration) error {
	limit := l.Max
	if limit <= 0 {
		limit = MaxDuration
	}
	if d < MinDuration {
		return fmt.Errorf("%w: %s is shorter than %s", ErrInvalidDuration, Format(d), Format(MinDuration))
	}
	if d > limit {
		return fmt.Errorf("%w: %s is longer than %s", ErrInvalidDuration, Format(d), Format(limit))
	}
	return nil
}

// Parse parses a duration argument. Bare integers are minutes.
func Parse(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 || n > math.MaxInt64/int64(time.Minute) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		return time.Duration(n) * time.Minute, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return d, nil
}

// Deadline returns the absolute expiry of something started at start.
func Deadline(start time.Time, d time.Duration) time.Time {
	return start.Add(d)
}

// Remaining returns the time left until deadline, never negative.
func Remaining(deadline, now time.Time) time.Duration {
	if r := deadline.Sub(now); r > 0 {
		return r
	}
	return 0
}

// Format renders a duration without trailing zero units ("1h30m", "45s").
func Format(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	if d == 0 {
		return "<1s"
	}
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
