// Package supervisor keeps the tracker process running only inside a daily
// time window. It polls the wall clock and the process table, starting the
// process when the window is open and stopping it when the window closes.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/activity-tracker/internal/log"
	"github.com/teslashibe/activity-tracker/internal/timeutil"
)

// Config holds supervisor settings.
type Config struct {
	ProcessName  string
	StartCommand string
	Window       Window
	PollInterval time.Duration
}

// DefaultConfig returns the stock settings: the tracker binary, all day,
// polled every 5 seconds.
func DefaultConfig() Config {
	return Config{
		ProcessName:  "activity-tracker",
		StartCommand: "activity-tracker -headless",
		Window:       AllDay(),
		PollInterval: 5 * time.Second,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.ProcessName == "" {
		return errors.New("process_name must be set")
	}
	if c.StartCommand == "" {
		return errors.New("start_command must be set")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// Action is what a poll did.
type Action int

const (
	None Action = iota
	Started
	Stopped
)

func (a Action) String() string {
	switch a {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	}
	return "none"
}

// Supervisor runs the poll loop.
type Supervisor struct {
	config Config
	ctrl   Controller
	clock  timeutil.Clock
	logger *slog.Logger

	polls  int
	errors int
}

// New creates a supervisor.
func New(config Config, ctrl Controller) *Supervisor {
	return &Supervisor{
		config: config,
		ctrl:   ctrl,
		clock:  timeutil.RealClock{},
		logger: log.Component("supervisor").With("process", config.ProcessName),
	}
}

// SetClock replaces the wall clock (tests)
func (s *Supervisor) SetClock(c timeutil.Clock) {
	s.clock = c
}

// Tick runs one poll at now.
func (s *Supervisor) Tick(now time.Time) (Action, error) {
	s.polls++

	h, running, err := s.ctrl.Running()
	if err != nil {
		return None, fmt.Errorf("query process: %w", err)
	}

	inside := s.config.Window.Contains(now)
	switch {
	case inside && !running:
		h, err := s.ctrl.Start()
		if err != nil {
			return None, err
		}
		s.logger.Info("starting application", "pid", h.PID, "window", s.config.Window)
		return Started, nil

	case !inside && running:
		s.logger.Info("stopping application", "pid", h.PID, "window", s.config.Window)
		if err := s.ctrl.Stop(h); err != nil {
			if errors.Is(err, ErrNotRunning) {
				s.logger.Info("process already gone", "pid", h.PID)
				return None, nil
			}
			return None, err
		}
		return Stopped, nil
	}
	return None, nil
}

// Run polls until ctx is cancelled. Errors are logged and never end the loop.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid supervisor config: %w", err)
	}

	s.logger.Info("supervisor started",
		"window", s.config.Window,
		"wraps_midnight", s.config.Window.Wraps(),
		"poll_interval", s.config.PollInterval)

	for {
		if ctx.Err() != nil {
			s.logger.Info("supervisor stopped", "polls", s.polls, "errors", s.errors)
			return nil
		}

		now := s.clock.Now()
		if _, err := s.Tick(now); err != nil {
			s.errors++
			s.logger.Error("poll failed", "error", err)
		}

		if !s.sleep(ctx, s.config.PollInterval) {
			s.logger.Info("supervisor stopped", "polls", s.polls, "errors", s.errors)
			return nil
		}
	}
}

// sleep waits d on the supervisor's clock, returning false if ctx ends first.
func (s *Supervisor) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}

// Polls returns the number of polls run so far.
func (s *Supervisor) Polls() int {
	return s.polls
}
