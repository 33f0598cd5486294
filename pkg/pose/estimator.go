package pose

// Frame is an image handed from a frame source to an estimator.
type Frame interface {
	// Seq is the zero-based position of the frame in its stream
	Seq() int

	// Close releases the frame's image memory
	Close() error
}

// Keypoint is one named body part produced by an estimator.
type Keypoint struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"` // Normalized position (0-1)
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
	Present    bool    `json:"present"`
}

// Body is a full-body pose for one frame.
type Body struct {
	Keypoints []Keypoint
	Limbs     [][2]int // Keypoint index pairs to connect when drawing
	Tracked   *LandmarkSet
}

// Landmarks returns the tracked landmark subset of the body.
func (b *Body) Landmarks() *LandmarkSet {
	if b == nil {
		return nil
	}
	return b.Tracked
}

// Estimator is the interface for pose estimation backends.
type Estimator interface {
	// Estimate finds a body in the frame. A nil body with a nil error
	// means nobody was detected.
	Estimate(frame Frame) (*Body, error)

	// Close releases resources
	Close() error
}
