// Package pose defines body landmarks and the pose estimator boundary.
//
// Coordinates are normalized to the processed frame: x and y are fractions of
// the frame width and height, in [0, 1].
package pose

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Point is a normalized 2D frame position.
type Point = r2.Point

// Landmark identifies one of the tracked body points.
type Landmark int

// Tracked landmarks, in log column order.
const (
	LeftWrist Landmark = iota
	RightWrist
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	NumLandmarks
)

var landmarkNames = [NumLandmarks]string{
	LeftWrist:  "left_wrist",
	RightWrist: "right_wrist",
	LeftKnee:   "left_knee",
	RightKnee:  "right_knee",
	LeftAnkle:  "left_ankle",
	RightAnkle: "right_ankle",
}

// String returns the snake_case landmark name used in logs and JSON.
func (l Landmark) String() string {
	if l < 0 || l >= NumLandmarks {
		return fmt.Sprintf("landmark(%d)", int(l))
	}
	return landmarkNames[l]
}

// Landmarks returns all tracked landmarks in column order.
func Landmarks() []Landmark {
	out := make([]Landmark, NumLandmarks)
	for i := range out {
		out[i] = Landmark(i)
	}
	return out
}

// ParseLandmark resolves a landmark by its snake_case name.
func ParseLandmark(name string) (Landmark, bool) {
	for i, n := range landmarkNames {
		if n == name {
			return Landmark(i), true
		}
	}
	return 0, false
}

// LandmarkSet holds the tracked points for one frame.
// A nil entry means the point was not available.
type LandmarkSet struct {
	points [NumLandmarks]*Point
}

// NewLandmarkSet returns an empty set with every point absent.
func NewLandmarkSet() *LandmarkSet {
	return &LandmarkSet{}
}

// Get returns the point for l and whether it is present.
// A nil set reports every point as absent.
func (s *LandmarkSet) Get(l Landmark) (Point, bool) {
	if s == nil || l < 0 || l >= NumLandmarks || s.points[l] == nil {
		return Point{}, false
	}
	return *s.points[l], true
}

// Set stores p for landmark l.
func (s *LandmarkSet) Set(l Landmark, p Point) {
	if l < 0 || l >= NumLandmarks {
		return
	}
	s.points[l] = &Point{X: p.X, Y: p.Y}
}

// Clear marks landmark l as absent.
func (s *LandmarkSet) Clear(l Landmark) {
	if l < 0 || l >= NumLandmarks {
		return
	}
	s.points[l] = nil
}

// Present returns the number of points that are available.
func (s *LandmarkSet) Present() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, p := range s.points {
		if p != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the set.
func (s *LandmarkSet) Clone() *LandmarkSet {
	if s == nil {
		return nil
	}
	out := NewLandmarkSet()
	for i, p := range s.points {
		if p != nil {
			out.Set(Landmark(i), *p)
		}
	}
	return out
}

// Map returns the present points keyed by landmark name.
func (s *LandmarkSet) Map() map[string]Point {
	out := make(map[string]Point, NumLandmarks)
	for _, l := range Landmarks() {
		if p, ok := s.Get(l); ok {
			out[l.String()] = p
		}
	}
	return out
}
