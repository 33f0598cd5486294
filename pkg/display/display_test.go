package display

import (
	"testing"
	"time"

	"github.com/teslashibe/activity-tracker/pkg/activity"
)

func TestStatusText(t *testing.T) {
	tests := []struct {
		name string
		res  *activity.FrameResult
		want string
	}{
		{"no result", nil, "Status: -"},
		{"working", &activity.FrameResult{Status: activity.Working}, "Status: Working"},
		{"idle", &activity.FrameResult{Status: activity.Idle}, "Status: Idle"},
		{
			"timed out",
			&activity.FrameResult{Status: activity.Idle, IdleState: activity.TimedOut, IdleFor: 612*time.Second + 300*time.Millisecond},
			"Status: Idle (idle 10m12s)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusText(tc.res); got != tc.want {
				t.Errorf("StatusText() = %q, want %q", got, tc.want)
			}
		})
	}
}

type countingSink struct{ frames int }

func (s *countingSink) SendCameraFrame([]byte) { s.frames++ }

func TestShouldStream(t *testing.T) {
	sink := &countingSink{}
	opts := Options{Sink: sink, StreamEvery: 3}

	var streamed []int
	for i := 0; i < 7; i++ {
		if shouldStream(&opts, i) {
			streamed = append(streamed, i)
		}
	}
	if len(streamed) != 3 || streamed[0] != 0 || streamed[1] != 3 || streamed[2] != 6 {
		t.Errorf("streamed frames = %v, want [0 3 6]", streamed)
	}

	if shouldStream(&Options{StreamEvery: 1}, 0) {
		t.Error("no sink means no streaming")
	}
	if !shouldStream(&Options{Sink: sink}, 5) {
		t.Error("StreamEvery 0 streams every frame")
	}
}

func TestHeadless_NeverStops(t *testing.T) {
	h := NewHeadless(DefaultOptions())
	for i := 0; i < 5; i++ {
		if h.Show(nil, &activity.FrameResult{Seq: i}) {
			t.Fatal("headless display requested a stop")
		}
	}
}
