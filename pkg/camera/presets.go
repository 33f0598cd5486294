package camera

// ROI preset names for common camera placements
const (
	PresetCenter = "center"
	PresetFull   = "full"
	PresetLeft   = "left"
	PresetRight  = "right"
	PresetUpper  = "upper"
	PresetLower  = "lower"
)

// Presets returns all available ROI presets.
func Presets() map[string]ROI {
	return map[string]ROI{
		PresetCenter: DefaultROI(),
		PresetFull:   FullFrame(),
		PresetLeft:   {X: 0, Y: 0, W: 0.5, H: 1},
		PresetRight:  {X: 0.5, Y: 0, W: 0.5, H: 1},
		PresetUpper:  {X: 0, Y: 0, W: 1, H: 0.5},
		PresetLower:  {X: 0, Y: 0.5, W: 1, H: 0.5},
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetCenter,
		PresetFull,
		PresetLeft,
		PresetRight,
		PresetUpper,
		PresetLower,
	}
}

// GetPreset returns a preset ROI by name, or nil if not found.
func GetPreset(name string) *ROI {
	if roi, ok := Presets()[name]; ok {
		return &roi
	}
	return nil
}
