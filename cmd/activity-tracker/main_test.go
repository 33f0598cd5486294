package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/activity-tracker/internal/config"
)

const recording = `{"frames": {
  "0": {"mediapipe": {"left_wrist": {"x": 0.2, "y": 0.3}}},
  "1": {"mediapipe": {"left_wrist": {"x": 0.4, "y": 0.3}}}
}}`

func replayConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	rec := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(rec, []byte(recording), 0644))

	cfg := config.Default()
	cfg.VideoPath = rec
	cfg.LogPath = filepath.Join(dir, "activity_log.csv")
	cfg.Display = false
	require.NoError(t, cfg.Validate())
	return &cfg
}

func logLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRun_Replay(t *testing.T) {
	cfg := replayConfig(t)

	require.NoError(t, run(context.Background(), cfg))

	lines := logLines(t, cfg.LogPath)
	require.Len(t, lines, 3, "header plus one row per recorded frame")
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,left_wrist_x"))
	assert.Contains(t, lines[2], ",0.4,0.3,")
}

func TestRun_SignalDuringStartup(t *testing.T) {
	cfg := replayConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, run(ctx, cfg))

	lines := logLines(t, cfg.LogPath)
	assert.Len(t, lines, 1, "no frames are processed after a startup interrupt")
}
