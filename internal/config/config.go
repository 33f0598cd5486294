// Package config loads activity-tracker and supervisor settings.
//
// Settings come from a JSON file and can be overridden by environment
// variables and then by command-line flags:
//
//	flags > environment > config file > defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/teslashibe/activity-tracker/pkg/supervisor"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.json"

// maxFileSize caps the config file size.
const maxFileSize = 1 * 1024 * 1024

// Environment variables.
const (
	EnvConfig        = "ACTIVITY_CONFIG"
	EnvVideoPath     = "ACTIVITY_VIDEO_PATH"
	EnvLogPath       = "ACTIVITY_LOG_PATH"
	EnvDashboardAddr = "ACTIVITY_DASHBOARD_ADDR"
)

// Duration is a time.Duration that reads "600s"-style strings or a plain
// number of seconds from JSON.
type Duration time.Duration

// UnmarshalJSON accepts "1m30s" or 90.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*d = Duration(val * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ROI is the crop region as fractions of the frame.
type ROI struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Pose configures the pose estimator.
type Pose struct {
	ModelPath  string  `json:"model_path"`
	ConfigPath string  `json:"config_path"`
	InputSize  int     `json:"input_size"`
	Confidence float64 `json:"confidence"`

	// ReplayMinVisibility is the MediaPipe visibility cutoff for recorded
	// keypoints. Recordings without visibility read as 0.
	ReplayMinVisibility float64 `json:"replay_min_visibility"`
}

// Supervisor configures the process supervisor.
type Supervisor struct {
	ProcessName  string   `json:"process_name"`
	StartCommand string   `json:"start_command"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	PollInterval Duration `json:"poll_interval"`
}

// Config is the root config file structure.
type Config struct {
	VideoPath         string   `json:"video_path"`
	IdleTimeout       Duration `json:"idle_timeout"`
	MovementThreshold float64  `json:"movement_threshold"`
	LogPath           string   `json:"log_path"`
	ROI               ROI      `json:"roi"`
	Pose              Pose     `json:"pose"`
	Display           bool     `json:"display"`
	FrameInterval     Duration `json:"frame_interval"`
	DashboardAddr     string   `json:"dashboard_addr,omitempty"`

	Supervisor Supervisor `json:"supervisor"`
}

// Default returns the built-in configuration. VideoPath has no default.
func Default() Config {
	return Config{
		IdleTimeout:       Duration(600 * time.Second),
		MovementThreshold: 0.01,
		LogPath:           "activity_log.csv",
		ROI:               ROI{X: 0.2, Y: 0.2, W: 0.6, H: 0.6},
		Pose: Pose{
			ModelPath:  "models/pose_iter_440000.caffemodel",
			ConfigPath: "models/openpose_pose_coco.prototxt",
			InputSize:  368,
			Confidence: 0.1,
		},
		Display: true,
		Supervisor: Supervisor{
			ProcessName:  "activity-tracker",
			StartCommand: "activity-tracker -headless",
			StartTime:    "00:00:00",
			EndTime:      "23:59:00",
			PollInterval: Duration(5 * time.Second),
		},
	}
}

// ResolvePath picks the config file: the flag value, then ACTIVITY_CONFIG,
// then DefaultPath. explicit is false only for the fallback.
func ResolvePath(flagPath string) (path string, explicit bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p, true
	}
	return DefaultPath, false
}

// Load reads path over the defaults. A missing file is an error only when
// explicit is set; otherwise the defaults are returned.
// The result is not validated, so overrides can be applied first.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv() {
	c.VideoPath = envOr(EnvVideoPath, c.VideoPath)
	c.LogPath = envOr(EnvLogPath, c.LogPath)
	c.DashboardAddr = envOr(EnvDashboardAddr, c.DashboardAddr)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks the tracker settings.
func (c *Config) Validate() error {
	var problems []string

	if c.VideoPath == "" {
		problems = append(problems, "video_path is required")
	}
	if c.MovementThreshold <= 0 || c.MovementThreshold >= 1 {
		problems = append(problems, "movement_threshold must be in (0, 1)")
	}
	if c.IdleTimeout <= 0 {
		problems = append(problems, "idle_timeout must be positive")
	}
	if c.FrameInterval < 0 {
		problems = append(problems, "frame_interval must not be negative")
	}
	if c.LogPath == "" {
		problems = append(problems, "log_path is required")
	}

	r := c.ROI
	if r.X < 0 || r.Y < 0 || r.W <= 0 || r.H <= 0 || r.X+r.W > 1 || r.Y+r.H > 1 {
		problems = append(problems, "roi must lie inside [0, 1] with positive size")
	}
	if c.Pose.Confidence < 0 || c.Pose.Confidence > 1 {
		problems = append(problems, "pose.confidence must be in [0, 1]")
	}
	if c.Pose.ReplayMinVisibility < 0 || c.Pose.ReplayMinVisibility > 1 {
		problems = append(problems, "pose.replay_min_visibility must be in [0, 1]")
	}
	if c.Pose.InputSize < 0 {
		problems = append(problems, "pose.input_size must not be negative")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// SupervisorConfig validates the supervisor section and converts it.
func (c *Config) SupervisorConfig() (supervisor.Config, error) {
	s := c.Supervisor
	window, err := supervisor.ParseWindow(s.StartTime, s.EndTime)
	if err != nil {
		return supervisor.Config{}, fmt.Errorf("supervisor.%w", err)
	}

	out := supervisor.Config{
		ProcessName:  s.ProcessName,
		StartCommand: s.StartCommand,
		Window:       window,
		PollInterval: s.PollInterval.Std(),
	}
	if err := out.Validate(); err != nil {
		return supervisor.Config{}, fmt.Errorf("supervisor.%w", err)
	}
	return out, nil
}

// IsReplay reports whether VideoPath names a recorded pose file rather
// than a video.
func (c *Config) IsReplay() bool {
	return strings.EqualFold(filepath.Ext(c.VideoPath), ".json")
}

// Overrides holds command-line values. Nil fields were not given.
type Overrides struct {
	VideoPath     *string
	LogPath       *string
	DashboardAddr *string
	Display       *bool
}

// Apply sets every non-nil override.
func (o Overrides) Apply(c *Config) {
	if o.VideoPath != nil {
		c.VideoPath = *o.VideoPath
	}
	if o.LogPath != nil {
		c.LogPath = *o.LogPath
	}
	if o.DashboardAddr != nil {
		c.DashboardAddr = *o.DashboardAddr
	}
	if o.Display != nil {
		c.Display = *o.Display
	}
}

// LoadWithOverrides resolves the config path, loads it, then applies the
// environment and the flag overrides in that order.
// Priority (highest to lowest): CLI flags > Environment variables > Config file > Defaults
func LoadWithOverrides(flagPath string, o Overrides) (*Config, string, error) {
	path, explicit := ResolvePath(flagPath)
	cfg, err := Load(path, explicit)
	if err != nil {
		return nil, path, err
	}
	cfg.ApplyEnv()
	o.Apply(cfg)
	return cfg, path, nil
}
