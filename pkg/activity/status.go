package activity

import (
	"encoding/json"
	"fmt"
)

// Status is the activity state shown for a frame.
type Status int

const (
	Idle Status = iota
	Working
)

// String returns the display name.
func (s Status) String() string {
	if s == Working {
		return "Working"
	}
	return "Idle"
}

// MarshalJSON encodes the status as its display name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// IdleState is the idle timeout monitor state.
type IdleState int

const (
	Active IdleState = iota
	TimedOut
)

// String returns the state name.
func (s IdleState) String() string {
	if s == TimedOut {
		return "timed_out"
	}
	return "active"
}

// MarshalJSON encodes the state as its name.
func (s IdleState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "Working":
		*s = Working
	case "Idle":
		*s = Idle
	default:
		return fmt.Errorf("unknown status %q", name)
	}
	return nil
}

// UnmarshalJSON decodes an idle state name.
func (s *IdleState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "active":
		*s = Active
	case "timed_out":
		*s = TimedOut
	default:
		return fmt.Errorf("unknown idle state %q", name)
	}
	return nil
}
