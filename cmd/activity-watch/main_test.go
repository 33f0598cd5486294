package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/activity-tracker/pkg/activity"
)

func result(seq int, status activity.Status, state activity.IdleState) []byte {
	data, _ := json.Marshal(activity.FrameResult{
		RunID:     "r",
		Seq:       seq,
		Time:      time.Date(2026, 4, 1, 9, 0, seq, 0, time.UTC),
		Detected:  true,
		Status:    status,
		IdleState: state,
		IdleFor:   601 * time.Second,
	})
	return data
}

func TestPrinter_Transitions(t *testing.T) {
	var out bytes.Buffer
	p := newPrinter(&out, false)

	frames := [][]byte{
		result(1, activity.Idle, activity.Active),
		result(2, activity.Idle, activity.Active),
		result(3, activity.Working, activity.Active),
		result(4, activity.Working, activity.Active),
		result(5, activity.Idle, activity.TimedOut),
	}
	for _, f := range frames {
		if err := p.handle(f); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "frame 3: Working") {
		t.Errorf("line 2 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "no movement for 10m1s") {
		t.Errorf("line 3 = %q", lines[2])
	}
}

func TestPrinter_All(t *testing.T) {
	var out bytes.Buffer
	p := newPrinter(&out, true)
	for i := 0; i < 4; i++ {
		p.handle(result(i, activity.Idle, activity.Active))
	}
	if n := strings.Count(out.String(), "\n"); n != 4 {
		t.Errorf("printed %d lines, want 4", n)
	}
}

func TestPrinter_BadJSON(t *testing.T) {
	p := newPrinter(&bytes.Buffer{}, false)
	if err := p.handle([]byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}
