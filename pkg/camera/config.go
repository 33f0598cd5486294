// Package camera reads frames from a video file or capture device and crops
// them to a region of interest before pose estimation.
package camera

import (
	"fmt"
	"image"
	"strconv"
)

// ROI is a crop rectangle expressed as fractions of the full frame.
type ROI struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DefaultROI keeps the centre 60% of the frame.
func DefaultROI() ROI {
	return ROI{X: 0.2, Y: 0.2, W: 0.6, H: 0.6}
}

// FullFrame disables cropping.
func FullFrame() ROI {
	return ROI{X: 0, Y: 0, W: 1, H: 1}
}

// Rect converts the ROI to pixel coordinates for a width x height frame.
// The result is clamped to the frame and is never smaller than 1x1.
func (r ROI) Rect(width, height int) image.Rectangle {
	x0 := int(r.X * float64(width))
	y0 := int(r.Y * float64(height))
	x1 := int((r.X + r.W) * float64(width))
	y1 := int((r.Y + r.H) * float64(height))

	rect := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, width, height))
	if rect.Empty() {
		return image.Rect(0, 0, min(1, width), min(1, height))
	}
	return rect
}

// IsFull reports whether the ROI covers the whole frame.
func (r ROI) IsFull() bool {
	return r.X == 0 && r.Y == 0 && r.W == 1 && r.H == 1
}

// Validate returns a list of problems with the ROI, or nil.
func (r ROI) Validate() []string {
	var errors []string
	if r.X < 0 || r.X >= 1 || r.Y < 0 || r.Y >= 1 {
		errors = append(errors, "roi x and y must be in [0, 1)")
	}
	if r.W <= 0 || r.H <= 0 {
		errors = append(errors, "roi w and h must be positive")
	}
	if r.X+r.W > 1.0000001 || r.Y+r.H > 1.0000001 {
		errors = append(errors, "roi must fit inside the frame")
	}
	return errors
}

// Config holds the frame source settings.
type Config struct {
	// Source is a video file path or a numeric capture device index
	Source string `json:"source"`

	ROI ROI `json:"roi"`

	// Optional capture size request for devices (0 = driver default)
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultConfig returns the config for reading source with the default crop.
func DefaultConfig(source string) Config {
	return Config{
		Source: source,
		ROI:    DefaultROI(),
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Source == "" {
		errors = append(errors, "source must be set")
	}
	errors = append(errors, c.ROI.Validate()...)

	if c.Width < 0 || c.Height < 0 {
		errors = append(errors, "width and height must not be negative")
	}
	return errors
}

// DeviceIndex returns the capture device index if Source is numeric.
func (c *Config) DeviceIndex() (int, bool) {
	id, err := strconv.Atoi(c.Source)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func (c *Config) String() string {
	return fmt.Sprintf("%s roi=(%.2f,%.2f %.2fx%.2f)", c.Source, c.ROI.X, c.ROI.Y, c.ROI.W, c.ROI.H)
}
