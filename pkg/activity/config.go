package activity

import (
	"fmt"
	"time"
)

// Config holds the tunable parameters of the activity engine
type Config struct {
	// Movement
	MovementThreshold float64 // Displacement that counts as movement (normalized units)

	// Idle timeout
	IdleTimeout time.Duration // Force Idle after this long without movement

	// Pacing
	FrameInterval time.Duration // Minimum time per frame when no display paces the loop (0 = none)

	// Logging
	LogEvery int // Log a progress line every N frames at info level (0 = never)
}

// DefaultConfig returns the reference thresholds
func DefaultConfig() Config {
	return Config{
		MovementThreshold: 0.01,
		IdleTimeout:       600 * time.Second,
		FrameInterval:     0,
		LogEvery:          300,
	}
}

// Validate checks that the config values are usable.
func (c Config) Validate() error {
	if c.MovementThreshold <= 0 || c.MovementThreshold >= 1 {
		return fmt.Errorf("movement threshold must be in (0, 1), got %v", c.MovementThreshold)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", c.IdleTimeout)
	}
	if c.FrameInterval < 0 {
		return fmt.Errorf("frame interval must not be negative, got %v", c.FrameInterval)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("log every must not be negative, got %d", c.LogEvery)
	}
	return nil
}
