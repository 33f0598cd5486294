package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/teslashibe/activity-tracker/internal/config"
	applog "github.com/teslashibe/activity-tracker/internal/log"
	"github.com/teslashibe/activity-tracker/pkg/activity"
	"github.com/teslashibe/activity-tracker/pkg/activitylog"
	"github.com/teslashibe/activity-tracker/pkg/camera"
	"github.com/teslashibe/activity-tracker/pkg/display"
	"github.com/teslashibe/activity-tracker/pkg/pose"
	"github.com/teslashibe/activity-tracker/pkg/pose/openpose"
	"github.com/teslashibe/activity-tracker/pkg/web"
)

// finiteSource is a frame source that knows its length.
type finiteSource interface {
	activity.FrameSource
	Len() int
}

// app wires the frame source, estimator, display, dashboard and log
// around the engine.
type app struct {
	cfg    *config.Config
	engine *activity.Engine
	log    *activitylog.Logger
	dash   *web.Server
	bar    *pb.ProgressBar

	closers   []io.Closer
	closeOnce sync.Once
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	ready := false
	defer func() {
		if !ready {
			a.Close()
		}
	}()

	fmt.Println("🏃 Activity Tracker")
	fmt.Println("===================")
	fmt.Printf("Source: %s\n", cfg.VideoPath)
	fmt.Printf("Log:    %s\n", cfg.LogPath)

	var (
		source    finiteSource
		estimator pose.Estimator
		roi       *camera.Manager
	)

	if cfg.IsReplay() {
		rec, err := pose.LoadRecording(cfg.VideoPath)
		if err != nil {
			return nil, err
		}
		source = pose.NewReplaySource(rec.Len())
		estimator = pose.NewReplayEstimator(rec, cfg.Pose.ReplayMinVisibility)
		cfg.Display = false
		fmt.Printf("Mode:   replay (%d frames)\n", rec.Len())
	} else {
		roi = camera.NewManager(camera.ROI(cfg.ROI))
		src, err := camera.Open(camera.Config{Source: cfg.VideoPath, ROI: camera.ROI(cfg.ROI)}, roi)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, src)
		source = src

		est, err := openpose.New(openpose.Config{
			ModelPath:        cfg.Pose.ModelPath,
			ConfigPath:       cfg.Pose.ConfigPath,
			InputWidth:       cfg.Pose.InputSize,
			InputHeight:      cfg.Pose.InputSize,
			ConfidenceThresh: cfg.Pose.Confidence,
		})
		if err != nil {
			return nil, fmt.Errorf("pose estimator: %w", err)
		}
		estimator = est
		fmt.Printf("Mode:   video (ROI %.2f,%.2f %.2fx%.2f)\n", cfg.ROI.X, cfg.ROI.Y, cfg.ROI.W, cfg.ROI.H)
	}
	a.closers = append(a.closers, estimator)

	logger, err := activitylog.Open(cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("coordinate log: %w", err)
	}
	a.log = logger
	a.closers = append(a.closers, logger)

	a.engine = activity.New(activity.Config{
		MovementThreshold: cfg.MovementThreshold,
		IdleTimeout:       cfg.IdleTimeout.Std(),
		FrameInterval:     cfg.FrameInterval.Std(),
		LogEvery:          activity.DefaultConfig().LogEvery,
	}, source, estimator, a.log)

	opts := display.DefaultOptions()
	if cfg.DashboardAddr != "" {
		a.dash = web.NewServer(cfg.DashboardAddr, cfg)
		if roi != nil {
			a.dash.SetROIController(roi)
		}
		a.engine.AddObserver(a.dash)
		opts.Sink = a.dash
	}

	if cfg.Display {
		w := display.NewWindow(opts)
		a.closers = append(a.closers, w)
		a.engine.SetDisplay(w)
		fmt.Println("Display: window (press q to quit)")
	} else {
		a.engine.SetDisplay(display.NewHeadless(opts))
		if n := source.Len(); n > 0 {
			a.bar = pb.StartNew(n)
			a.engine.AddObserver(progress{a.bar})
		}
	}

	fmt.Printf("Run:    %s\n\n", a.engine.RunID())
	ready = true
	return a, nil
}

// Run processes frames until the source ends, the user quits or ctx ends.
func (a *app) Run(ctx context.Context) error {
	if a.dash != nil {
		a.dash.StartAsync(ctx)
	}

	start := time.Now()
	err := a.engine.Run(ctx)
	if a.bar != nil {
		a.bar.Finish()
	}

	stats := a.engine.Stats()
	fmt.Printf("\n✅ %d frames, %d detections, %d records in %s\n",
		stats.Frames, stats.Detections, stats.Records, time.Since(start).Round(time.Millisecond))
	return err
}

// Close releases everything in reverse order of creation.
func (a *app) Close() {
	a.closeOnce.Do(func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i].Close(); err != nil {
				applog.Warn("close failed", "error", err)
			}
		}
		if a.dash != nil {
			a.dash.Shutdown()
		}
	})
}

// progress advances the progress bar once per frame.
type progress struct {
	bar *pb.ProgressBar
}

func (p progress) OnFrame(activity.FrameResult) {
	p.bar.Increment()
}
