// Activity supervisor - keeps the tracker running inside its daily window
// and stops it with SIGTERM outside it.
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
	"github.com/teslashibe/activity-tracker/pkg/supervisor"
)

func main() {
	cfgFlag := flag.String("config", "", "Config file (default $ACTIVITY_CONFIG or config.json)")
	level := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	applog.Init(*level)

	cfg, path, err := config.LoadWithOverrides(*cfgFlag, config.Overrides{})
	if err != nil {
		log.Fatalf("❌ Configuration error (%s): %v", path, err)
	}
	supCfg, err := cfg.SupervisorConfig()
	if err != nil {
		log.Fatalf("❌ Configuration error (%s): %v", path, err)
	}

	fmt.Println("🕐 Activity Supervisor")
	fmt.Println("======================")
	fmt.Printf("Process: %s\n", supCfg.ProcessName)
	fmt.Printf("Start:   %s\n", supCfg.StartCommand)
	fmt.Printf("Window:  %s\n", supCfg.Window)
	fmt.Printf("Poll:    %s\n\n", supCfg.PollInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctrl := supervisor.NewProcessController(supCfg.ProcessName, supCfg.StartCommand)
	if err := supervisor.New(supCfg, ctrl).Run(ctx); err != nil {
		log.Fatalf("❌ Runtime error: %v", err)
	}
	fmt.Println("\n👋 Supervisor stopped")
}
