package supervisor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidWindow is returned for malformed window bounds.
var ErrInvalidWindow = errors.New("invalid time window")

const day = 24 * time.Hour

// TimeOfDay is an offset from local midnight.
type TimeOfDay time.Duration

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q is not HH:MM[:SS]", ErrInvalidWindow, s)
	}

	limits := []int{23, 59, 59}
	var fields [3]int
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("%w: %q is not HH:MM[:SS]", ErrInvalidWindow, s)
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidWindow, s)
		}
		fields[i] = v
	}

	d := time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second
	return TimeOfDay(d), nil
}

// Of returns the time of day of t in t's location, at second granularity.
func Of(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute), int(d%time.Minute/time.Second))
}

// Window is a daily time range with inclusive bounds. When Start is after
// End the window wraps past midnight.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseWindow parses both bounds.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, fmt.Errorf("start_time: %w", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, fmt.Errorf("end_time: %w", err)
	}
	return Window{Start: s, End: e}, nil
}

// AllDay is the default window, 00:00:00 to 23:59:00.
func AllDay() Window {
	return Window{Start: 0, End: TimeOfDay(23*time.Hour + 59*time.Minute)}
}

// Wraps reports whether the window spans midnight.
func (w Window) Wraps() bool {
	return w.Start > w.End
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	tod := Of(t)
	if w.Wraps() {
		return tod >= w.Start || tod <= w.End
	}
	return tod >= w.Start && tod <= w.End
}

// Next returns the next time at or after t when the window opens or closes.
func (w Window) Next(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	var edge TimeOfDay
	if w.Contains(t) {
		edge = w.End + TimeOfDay(time.Second) // Bounds are inclusive
	} else {
		edge = w.Start
	}

	next := midnight.Add(time.Duration(edge))
	if next.Before(t) {
		next = next.Add(day)
	}
	return next
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
