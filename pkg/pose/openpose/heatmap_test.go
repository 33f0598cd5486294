package openpose

import (
	"math"
	"testing"

	"github.com/teslashibe/activity-tracker/pkg/pose"
)

// heatmaps builds a [channels, h, w] buffer with a single peak per listed part.
func heatmaps(channels, h, w int, peaks map[int][3]float32) []float32 {
	data := make([]float32, channels*h*w)
	for part, pk := range peaks {
		x, y, v := int(pk[0]), int(pk[1]), pk[2]
		data[part*h*w+y*w+x] = v
	}
	return data
}

func TestParseHeatmaps(t *testing.T) {
	const h, w = 4, 8
	data := heatmaps(57, h, w, map[int][3]float32{
		LWrist: {2, 1, 0.8},
		RKnee:  {7, 3, 0.05}, // below threshold
	})

	kps := ParseHeatmaps(data, 57, h, w, 0.1)
	if len(kps) != NumParts {
		t.Fatalf("got %d keypoints, want %d", len(kps), NumParts)
	}

	lw := kps[LWrist]
	if !lw.Present {
		t.Fatal("left wrist should be present")
	}
	if math.Abs(lw.X-2.5/8) > 1e-9 || math.Abs(lw.Y-1.5/4) > 1e-9 {
		t.Errorf("left wrist at (%.4f, %.4f), want (%.4f, %.4f)", lw.X, lw.Y, 2.5/8, 1.5/4)
	}
	if lw.Name != "left_wrist" {
		t.Errorf("name = %q", lw.Name)
	}

	if kps[RKnee].Present {
		t.Error("right knee below threshold should be absent")
	}
}

func TestParseHeatmaps_ShortBuffer(t *testing.T) {
	if kps := ParseHeatmaps(make([]float32, 10), 57, 4, 8, 0.1); kps != nil {
		t.Errorf("expected nil for short buffer, got %d keypoints", len(kps))
	}
}

func TestBodyFromKeypoints(t *testing.T) {
	t.Run("nothing found", func(t *testing.T) {
		kps := ParseHeatmaps(heatmaps(NumParts, 2, 2, nil), NumParts, 2, 2, 0.1)
		if b := BodyFromKeypoints(kps); b != nil {
			t.Errorf("expected nil body, got %+v", b)
		}
	})

	t.Run("untracked part still counts as detection", func(t *testing.T) {
		kps := ParseHeatmaps(heatmaps(NumParts, 2, 2, map[int][3]float32{
			Nose: {0, 0, 0.9},
		}), NumParts, 2, 2, 0.1)
		b := BodyFromKeypoints(kps)
		if b == nil {
			t.Fatal("expected a body")
		}
		if b.Landmarks().Present() != 0 {
			t.Errorf("no tracked landmarks expected, got %d", b.Landmarks().Present())
		}
	})

	t.Run("tracked parts mapped", func(t *testing.T) {
		kps := ParseHeatmaps(heatmaps(NumParts, 2, 2, map[int][3]float32{
			LAnkle: {1, 1, 0.5},
			RWrist: {0, 1, 0.5},
		}), NumParts, 2, 2, 0.1)
		b := BodyFromKeypoints(kps)
		if b == nil {
			t.Fatal("expected a body")
		}
		if _, ok := b.Landmarks().Get(pose.LeftAnkle); !ok {
			t.Error("left ankle missing")
		}
		if _, ok := b.Landmarks().Get(pose.RightWrist); !ok {
			t.Error("right wrist missing")
		}
		if len(b.Limbs) != len(Limbs) {
			t.Errorf("limbs = %d", len(b.Limbs))
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ModelPath == "" {
		t.Error("DefaultConfig: ModelPath should not be empty")
	}
	if cfg.ConfidenceThresh <= 0 || cfg.ConfidenceThresh > 1 {
		t.Errorf("DefaultConfig: ConfidenceThresh should be 0-1, got %f", cfg.ConfidenceThresh)
	}
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		t.Errorf("DefaultConfig: input size should be positive, got %dx%d", cfg.InputWidth, cfg.InputHeight)
	}
}

func TestNew_MissingModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/model.caffemodel"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for missing model file")
	}
}
