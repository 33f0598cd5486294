package activity

import "github.com/teslashibe/activity-tracker/pkg/pose"

// Classification is the per-frame movement verdict before the idle override.
type Classification struct {
	Status     Status
	Magnitudes [pose.NumLandmarks]float64
	Moved      []pose.Landmark // Landmarks whose movement exceeded the threshold
}

// Classifier compares each detected frame against the previous one.
// It owns the previous-position state for a single subject.
type Classifier struct {
	threshold float64
	previous  *pose.LandmarkSet
}

// NewClassifier creates a classifier with no previous positions.
func NewClassifier(threshold float64) *Classifier {
	return &Classifier{
		threshold: threshold,
		previous:  pose.NewLandmarkSet(),
	}
}

// Classify reports Working if any tracked landmark moved more than the
// threshold since the previous detected frame. The current set then
// replaces the previous positions, whatever the verdict.
func (c *Classifier) Classify(curr *pose.LandmarkSet) Classification {
	var out Classification

	for _, l := range pose.Landmarks() {
		m := Movement(point(c.previous, l), point(curr, l))
		out.Magnitudes[l] = m
		if m > c.threshold {
			out.Moved = append(out.Moved, l)
		}
	}
	if len(out.Moved) > 0 {
		out.Status = Working
	}

	if curr == nil {
		c.previous = pose.NewLandmarkSet()
	} else {
		c.previous = curr.Clone()
	}
	return out
}

// Previous returns a copy of the last seen positions.
func (c *Classifier) Previous() *pose.LandmarkSet {
	return c.previous.Clone()
}

// Threshold returns the movement threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

func point(s *pose.LandmarkSet, l pose.Landmark) *pose.Point {
	p, ok := s.Get(l)
	if !ok {
		return nil
	}
	return &p
}
