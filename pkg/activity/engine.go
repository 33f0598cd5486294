package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/activity-tracker/internal/log"
	"github.com/teslashibe/activity-tracker/internal/timeutil"
	"github.com/teslashibe/activity-tracker/pkg/activitylog"
	"github.com/teslashibe/activity-tracker/pkg/pose"
)

// ErrSourceLost is returned when the frame source fails mid-stream.
var ErrSourceLost = errors.New("frame source lost")

// FrameSource yields frames in order. Read returns io.EOF at end of stream.
type FrameSource interface {
	Read() (pose.Frame, error)
}

// Recorder persists one record per detected frame.
type Recorder interface {
	Append(r activitylog.Record) error
}

// Display shows each processed frame. Show returning true requests a stop.
type Display interface {
	Show(frame pose.Frame, res *FrameResult) (stop bool)
}

// Observer receives every frame result (dashboard, metrics).
type Observer interface {
	OnFrame(res FrameResult)
}

// FrameResult is the outcome of processing one frame.
type FrameResult struct {
	RunID        string                     `json:"run_id"`
	Seq          int                        `json:"frame"`
	Time         time.Time                  `json:"time"`
	Detected     bool                       `json:"detected"`
	Classified   Status                     `json:"classified"`
	Status       Status                     `json:"status"`
	IdleState    IdleState                  `json:"idle_state"`
	IdleFor      time.Duration              `json:"idle_for_ns"`
	LastMovement time.Time                  `json:"last_movement"`
	Magnitudes   [pose.NumLandmarks]float64 `json:"magnitudes"`
	Landmarks    map[string]pose.Point      `json:"landmarks,omitempty"`
	Body         *pose.Body                 `json:"-"`
}

// Stats summarizes a run.
type Stats struct {
	Frames     int           `json:"frames"`
	Detections int           `json:"detections"`
	Records    int           `json:"records"`
	Working    int           `json:"working_frames"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Engine runs the frame processing loop for a single subject.
type Engine struct {
	config    Config
	source    FrameSource
	estimator pose.Estimator
	recorder  Recorder
	display   Display
	observers []Observer
	clock     timeutil.Clock
	runID     string
	logger    *slog.Logger

	classifier *Classifier
	idle       *IdleMonitor
	last       Status
	stats      Stats
}

// New creates an engine. Display and observers are optional.
func New(config Config, source FrameSource, estimator pose.Estimator, recorder Recorder) *Engine {
	runID := uuid.NewString()
	return &Engine{
		config:    config,
		source:    source,
		estimator: estimator,
		recorder:  recorder,
		clock:     timeutil.RealClock{},
		runID:     runID,
		logger:    log.Component("engine").With("run_id", runID),
	}
}

// SetDisplay sets the frame display
func (e *Engine) SetDisplay(d Display) {
	e.display = d
}

// AddObserver registers an observer for frame results
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// SetClock replaces the wall clock (tests, replays)
func (e *Engine) SetClock(c timeutil.Clock) {
	e.clock = c
}

// RunID returns the unique ID of this engine run
func (e *Engine) RunID() string {
	return e.runID
}

// Stats returns the counters for the run so far
func (e *Engine) Stats() Stats {
	return e.stats
}

// Run processes frames until the source ends, the display requests a stop,
// or ctx is cancelled. Cancellation is only checked between frames.
// A nil error means a clean stop.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.config.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	start := e.clock.Now()
	e.classifier = NewClassifier(e.config.MovementThreshold)
	e.idle = NewIdleMonitor(e.config.IdleTimeout, start)
	e.last = Idle
	e.stats = Stats{}

	e.logger.Info("activity engine started",
		"threshold", e.config.MovementThreshold,
		"idle_timeout", e.config.IdleTimeout)

	defer func() {
		e.stats.Elapsed = e.clock.Now().Sub(start)
		e.logger.Info("activity engine stopped",
			"frames", e.stats.Frames,
			"detections", e.stats.Detections,
			"records", e.stats.Records)
	}()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("stop requested", "reason", ctx.Err())
			return nil
		default:
		}

		frame, err := e.source.Read()
		if errors.Is(err, io.EOF) {
			e.logger.Info("end of stream")
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSourceLost, err)
		}

		stop, err := e.processFrame(frame)
		frame.Close()
		if err != nil {
			return err
		}
		if stop {
			e.logger.Info("stop requested", "reason", "display")
			return nil
		}
	}
}

// processFrame runs one frame through estimation, classification, the idle
// override and the coordinate log.
func (e *Engine) processFrame(frame pose.Frame) (bool, error) {
	frameStart := e.clock.Now()
	e.stats.Frames++

	body, err := e.estimator.Estimate(frame)
	if err != nil {
		e.logger.Warn("pose estimation failed", "frame", frame.Seq(), "error", err)
		body = nil
	}

	now := e.clock.Now()
	res := FrameResult{
		RunID:      e.runID,
		Seq:        frame.Seq(),
		Time:       now,
		Classified: Idle,
		Body:       body,
	}

	if set := body.Landmarks(); set != nil {
		e.stats.Detections++
		res.Detected = true
		res.Landmarks = set.Map()

		c := e.classifier.Classify(set)
		res.Classified = c.Status
		res.Magnitudes = c.Magnitudes
		e.idle.Observe(c.Status, now)

		if err := e.recorder.Append(activitylog.Record{Time: now, Landmarks: set}); err != nil {
			return false, fmt.Errorf("coordinate log: %w", err)
		}
		e.stats.Records++
	}

	res.Status = e.idle.Apply(res.Classified, now)
	res.IdleState = e.idle.State(now)
	res.IdleFor = e.idle.IdleFor(now)
	res.LastMovement = e.idle.LastMovement()

	if res.Status == Working {
		e.stats.Working++
	}
	if res.Status != e.last {
		e.logger.Info("status changed",
			"frame", res.Seq, "from", e.last, "to", res.Status, "idle_state", res.IdleState)
		e.last = res.Status
	}
	if e.config.LogEvery > 0 && e.stats.Frames%e.config.LogEvery == 0 {
		e.logger.Info("progress",
			"frames", e.stats.Frames, "detections", e.stats.Detections, "status", res.Status)
	}
	e.logger.Debug("frame processed",
		"frame", res.Seq, "detected", res.Detected, "status", res.Status,
		"idle_for", res.IdleFor.Round(time.Second))

	for _, o := range e.observers {
		o.OnFrame(res)
	}

	stop := false
	if e.display != nil {
		stop = e.display.Show(frame, &res)
	}

	if e.config.FrameInterval > 0 {
		if wait := e.config.FrameInterval - e.clock.Now().Sub(frameStart); wait > 0 {
			e.clock.Sleep(wait)
		}
	}
	return stop, nil
}
