package pose

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLandmark_String(t *testing.T) {
	want := []string{"left_wrist", "right_wrist", "left_knee", "right_knee", "left_ankle", "right_ankle"}
	for i, l := range Landmarks() {
		if l.String() != want[i] {
			t.Errorf("Landmark(%d).String() = %q, want %q", i, l.String(), want[i])
		}
		parsed, ok := ParseLandmark(want[i])
		if !ok || parsed != l {
			t.Errorf("ParseLandmark(%q) = %v, %v", want[i], parsed, ok)
		}
	}

	if _, ok := ParseLandmark("nose"); ok {
		t.Error("ParseLandmark should reject untracked parts")
	}
	if s := Landmark(42).String(); s != "landmark(42)" {
		t.Errorf("out of range String() = %q", s)
	}
}

func TestLandmarkSet(t *testing.T) {
	s := NewLandmarkSet()
	if s.Present() != 0 {
		t.Fatalf("new set should be empty, got %d", s.Present())
	}

	s.Set(LeftKnee, Point{X: 0.25, Y: 0.75})
	p, ok := s.Get(LeftKnee)
	if !ok || p.X != 0.25 || p.Y != 0.75 {
		t.Errorf("Get(LeftKnee) = %v, %v", p, ok)
	}
	if _, ok := s.Get(RightKnee); ok {
		t.Error("RightKnee should be absent")
	}

	clone := s.Clone()
	s.Clear(LeftKnee)
	if _, ok := clone.Get(LeftKnee); !ok {
		t.Error("clone should not share storage with the original")
	}
	if s.Present() != 0 {
		t.Errorf("Clear should remove the point, %d present", s.Present())
	}

	var nilSet *LandmarkSet
	if _, ok := nilSet.Get(LeftWrist); ok {
		t.Error("nil set should report points absent")
	}
	if nilSet.Clone() != nil {
		t.Error("nil set clone should be nil")
	}
}

const recordingJSON = `{
  "frames": {
    "0": {"mediapipe": {
      "left_wrist": {"x": 0.1, "y": 0.2, "visibility": 0.9},
      "right_wrist": {"x": 0.3, "y": 0.4, "visibility": 0.2},
      "nose": {"x": 0.5, "y": 0.1, "visibility": 0.99}
    }},
    "2": {"mediapipe": {
      "left_ankle": {"x": 0.6, "y": 0.9, "visibility": 0.8}
    }}
  }
}`

func TestReplayEstimator(t *testing.T) {
	rec, err := DecodeRecording(strings.NewReader(recordingJSON))
	if err != nil {
		t.Fatalf("DecodeRecording: %v", err)
	}
	if rec.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", rec.Len())
	}

	est := NewReplayEstimator(rec, 0.5)
	src := NewReplaySource(rec.Len())

	var bodies []*Body
	for {
		f, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		b, err := est.Estimate(f)
		if err != nil {
			t.Fatalf("Estimate: %v", err)
		}
		bodies = append(bodies, b)
	}

	if len(bodies) != 3 {
		t.Fatalf("got %d frames, want 3", len(bodies))
	}

	first := bodies[0].Landmarks()
	if p, ok := first.Get(LeftWrist); !ok || p.X != 0.1 {
		t.Errorf("frame 0 left wrist = %v, %v", p, ok)
	}
	if _, ok := first.Get(RightWrist); ok {
		t.Error("low-visibility right wrist should be absent")
	}
	if len(bodies[0].Keypoints) != 3 {
		t.Errorf("frame 0 keeps all keypoints for drawing, got %d", len(bodies[0].Keypoints))
	}

	if bodies[1] != nil {
		t.Error("gap frame should be no detection")
	}
	if _, ok := bodies[2].Landmarks().Get(LeftAnkle); !ok {
		t.Error("frame 2 left ankle should be present")
	}
}

func TestReplayEstimator_NoVisibility(t *testing.T) {
	rec, err := DecodeRecording(strings.NewReader(`{"frames": {"0": {"mediapipe": {
      "left_wrist": {"x": 0.2, "y": 0.3},
      "right_knee": {"x": 0.4, "y": 0.7}
    }}}}`))
	if err != nil {
		t.Fatalf("DecodeRecording: %v", err)
	}
	f, err := NewReplaySource(rec.Len()).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	body, err := NewReplayEstimator(rec, 0).Estimate(f)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	set := body.Landmarks()
	if set == nil || set.Present() != 2 {
		t.Fatalf("landmarks without visibility should be kept at cutoff 0, got %v", set)
	}
	if p, ok := set.Get(LeftWrist); !ok || p.X != 0.2 || p.Y != 0.3 {
		t.Errorf("left wrist = %v, %v", p, ok)
	}
}

func TestDecodeRecording_Invalid(t *testing.T) {
	if _, err := DecodeRecording(strings.NewReader("{not json")); err == nil {
		t.Error("expected decode error")
	}
}
