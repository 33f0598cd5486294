package camera

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// ROIUpdate is a partial change to the crop region. Preset, when set, is
// applied first; any coordinate given then overrides it.
type ROIUpdate struct {
	Preset string   `json:"preset,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	W      *float64 `json:"w,omitempty"`
	H      *float64 `json:"h,omitempty"`
}

func (u ROIUpdate) applyTo(roi ROI) (ROI, error) {
	if u.Preset != "" {
		p := GetPreset(u.Preset)
		if p == nil {
			return roi, fmt.Errorf("unknown preset %q (have %s)", u.Preset, strings.Join(PresetNames(), ", "))
		}
		roi = *p
	}
	for _, f := range []struct {
		src *float64
		dst *float64
	}{{u.X, &roi.X}, {u.Y, &roi.Y}, {u.W, &roi.W}, {u.H, &roi.H}} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return roi, nil
}

// Manager holds the live crop region. The frame source reads it on every
// frame, so dashboard changes apply from the next frame on.
type Manager struct {
	mu  sync.RWMutex
	roi ROI

	// OnROIChange, if set, is called after every accepted change.
	OnROIChange func(ROI)
}

// NewManager creates a manager starting at roi.
func NewManager(roi ROI) *Manager {
	return &Manager{roi: roi}
}

// ROI returns the current crop region.
func (m *Manager) ROI() ROI {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roi
}

// SetROI validates and replaces the crop region.
func (m *Manager) SetROI(roi ROI) error {
	if problems := roi.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid roi: %s", strings.Join(problems, "; "))
	}

	m.mu.Lock()
	m.roi = roi
	notify := m.OnROIChange
	m.mu.Unlock()

	if notify != nil {
		notify(roi)
	}
	return nil
}

// Apply merges u into the current region. A rejected update leaves the
// region unchanged.
func (m *Manager) Apply(u ROIUpdate) (ROI, error) {
	roi, err := u.applyTo(m.ROI())
	if err != nil {
		return m.ROI(), err
	}
	if err := m.SetROI(roi); err != nil {
		return m.ROI(), err
	}
	return roi, nil
}

// CurrentROI returns the region for JSON responses.
func (m *Manager) CurrentROI() interface{} {
	return m.ROI()
}

// UpdateROI decodes a JSON ROIUpdate and applies it.
func (m *Manager) UpdateROI(body []byte) (interface{}, error) {
	var u ROIUpdate
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode roi update: %w", err)
	}
	roi, err := m.Apply(u)
	if err != nil {
		return nil, err
	}
	return roi, nil
}
