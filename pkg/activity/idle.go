package activity

import "time"

// IdleMonitor forces Idle once no qualifying movement has been seen for
// longer than the timeout.
type IdleMonitor struct {
	timeout  time.Duration
	lastMove time.Time
}

// NewIdleMonitor starts the idle clock at start.
func NewIdleMonitor(timeout time.Duration, start time.Time) *IdleMonitor {
	return &IdleMonitor{
		timeout:  timeout,
		lastMove: start,
	}
}

// Observe records the classifier verdict for a detected frame.
// Working is the only thing that advances the idle clock.
func (m *IdleMonitor) Observe(s Status, now time.Time) {
	if s == Working {
		m.lastMove = now
	}
}

// Apply returns the final status for a frame evaluated at now.
func (m *IdleMonitor) Apply(s Status, now time.Time) Status {
	if m.State(now) == TimedOut {
		return Idle
	}
	return s
}

// State reports whether the timeout has elapsed at now.
func (m *IdleMonitor) State(now time.Time) IdleState {
	if now.Sub(m.lastMove) > m.timeout {
		return TimedOut
	}
	return Active
}

// LastMovement returns the time of the last qualifying movement
// (or the start time if there has been none).
func (m *IdleMonitor) LastMovement() time.Time {
	return m.lastMove
}

// IdleFor returns how long it has been since the last qualifying movement.
func (m *IdleMonitor) IdleFor(now time.Time) time.Duration {
	d := now.Sub(m.lastMove)
	if d < 0 {
		return 0
	}
	return d
}

// Timeout returns the configured idle timeout.
func (m *IdleMonitor) Timeout() time.Duration {
	return m.timeout
}
