// Activity tracker - classifies a subject as Working or Idle from body pose
// and appends the tracked joint coordinates to a CSV log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/teslashibe/activity-tracker/internal/config"
	applog "github.com/teslashibe/activity-tracker/internal/log"
)

func main() {
	configPath, logLevel, overrides := parseFlags()
	applog.Init(logLevel)

	cfg, path, err := config.LoadWithOverrides(configPath, overrides)
	if err != nil {
		log.Fatalf("❌ Configuration error (%s): %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuration error (%s): %v", path, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// run builds the app and processes frames until ctx ends. A signal that
// arrives while the model or window is still loading skips the run but
// still releases everything.
func run(ctx context.Context, cfg *config.Config) error {
	app, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer app.Close()

	if ctx.Err() != nil {
		fmt.Println("👋 Interrupted during startup")
		return nil
	}
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	return nil
}

// parseFlags parses command line flags. Only flags that were set on the
// command line override the config file and environment.
func parseFlags() (configPath, logLevel string, o config.Overrides) {
	cfgFlag := flag.String("config", "", "Config file (default $ACTIVITY_CONFIG or config.json)")
	level := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	headless := flag.Bool("headless", false, "Run without a display window")
	dashboard := flag.String("dashboard", "", "Dashboard listen address, e.g. :8080")
	video := flag.String("video", "", "Video file, camera index, or recorded pose .json")
	logPath := flag.String("log", "", "Coordinate log CSV path")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			display := !*headless
			o.Display = &display
		case "dashboard":
			o.DashboardAddr = dashboard
		case "video":
			o.VideoPath = video
		case "log":
			o.LogPath = logPath
		}
	})
	return *cfgFlag, *level, o
}
