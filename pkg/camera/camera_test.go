package camera

import (
	"image"
	"testing"
)

func TestROI_Rect(t *testing.T) {
	tests := []struct {
		name string
		roi  ROI
		w, h int
		want image.Rectangle
	}{
		{"default centre crop", DefaultROI(), 1000, 500, image.Rect(200, 100, 800, 400)},
		{"full frame", FullFrame(), 640, 480, image.Rect(0, 0, 640, 480)},
		{"clamped to frame", ROI{X: 0.5, Y: 0.5, W: 1, H: 1}, 100, 100, image.Rect(50, 50, 100, 100)},
		{"degenerate region", ROI{X: 0.5, Y: 0.5, W: 0.0001, H: 0.0001}, 100, 100, image.Rect(0, 0, 1, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.roi.Rect(tc.w, tc.h); got != tc.want {
				t.Errorf("Rect() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig("video.mp4"), false},
		{"device index", DefaultConfig("0"), false},
		{"missing source", DefaultConfig(""), true},
		{"roi outside frame", Config{Source: "a.mp4", ROI: ROI{X: 0.5, Y: 0, W: 0.6, H: 1}}, true},
		{"zero size roi", Config{Source: "a.mp4", ROI: ROI{X: 0, Y: 0, W: 0, H: 1}}, true},
		{"negative size", Config{Source: "a.mp4", ROI: FullFrame(), Width: -1}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.cfg.Validate()
			if (len(errs) > 0) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", errs, tc.wantErr)
			}
		})
	}
}

func TestConfig_DeviceIndex(t *testing.T) {
	cfg := DefaultConfig("2")
	if id, ok := cfg.DeviceIndex(); !ok || id != 2 {
		t.Errorf("DeviceIndex() = %d, %v; want 2, true", id, ok)
	}
	cfg = DefaultConfig("clips/desk.mp4")
	if _, ok := cfg.DeviceIndex(); ok {
		t.Error("file path should not be a device index")
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		roi := GetPreset(name)
		if roi == nil {
			t.Fatalf("preset %q missing", name)
		}
		if errs := roi.Validate(); len(errs) > 0 {
			t.Errorf("preset %q invalid: %v", name, errs)
		}
	}
	if GetPreset("nope") != nil {
		t.Error("unknown preset should be nil")
	}
}

func TestManager_Apply(t *testing.T) {
	m := NewManager(DefaultROI())

	var notified ROI
	m.OnROIChange = func(roi ROI) { notified = roi }

	half := 0.5
	got, err := m.Apply(ROIUpdate{Preset: "left", H: &half})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := ROI{X: 0, Y: 0, W: 0.5, H: 0.5}
	if got != want || m.ROI() != want {
		t.Errorf("ROI = %+v, want %+v", m.ROI(), want)
	}
	if notified != want {
		t.Errorf("callback got %+v, want %+v", notified, want)
	}

	wide := 2.0
	if _, err := m.Apply(ROIUpdate{W: &wide}); err == nil {
		t.Error("expected error for ROI wider than frame")
	}
	if m.ROI() != want {
		t.Error("rejected update must not change the ROI")
	}

	if _, err := m.Apply(ROIUpdate{Preset: "sideways"}); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestManager_UpdateROI(t *testing.T) {
	m := NewManager(DefaultROI())

	v, err := m.UpdateROI([]byte(`{"preset": "full", "x": 0.25, "w": 0.75}`))
	if err != nil {
		t.Fatalf("UpdateROI: %v", err)
	}
	want := ROI{X: 0.25, Y: 0, W: 0.75, H: 1}
	if v != want {
		t.Errorf("UpdateROI returned %+v, want %+v", v, want)
	}
	if m.CurrentROI() != want {
		t.Errorf("CurrentROI = %+v, want %+v", m.CurrentROI(), want)
	}

	if _, err := m.UpdateROI([]byte(`{"x": "left"}`)); err == nil {
		t.Error("expected decode error")
	}
}
