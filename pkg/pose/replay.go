package pose

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ReplayKeypoint is a MediaPipe-style landmark as exported by pose tooling.
type ReplayKeypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
	Presence   float64 `json:"presence"`
}

// ReplayFrame is one recorded frame.
type ReplayFrame struct {
	Mediapipe map[string]ReplayKeypoint `json:"mediapipe"`
}

// Recording is a per-frame landmark capture keyed by frame index.
type Recording struct {
	Path   string              `json:"-"`
	Frames map[int]ReplayFrame `json:"frames"`
}

// LoadRecording reads a landmark recording from a JSON file.
func LoadRecording(path string) (*Recording, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	rec, err := DecodeRecording(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec.Path = path
	return rec, nil
}

// DecodeRecording decodes a landmark recording.
func DecodeRecording(r io.Reader) (*Recording, error) {
	rec := new(Recording)
	if err := json.NewDecoder(r).Decode(rec); err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}
	if rec.Frames == nil {
		rec.Frames = make(map[int]ReplayFrame)
	}
	return rec, nil
}

// Len returns the number of frames in the recording, counting gaps.
func (r *Recording) Len() int {
	last := -1
	for idx := range r.Frames {
		if idx > last {
			last = idx
		}
	}
	return last + 1
}

// ReplayEstimator answers Estimate from a recording instead of a model.
type ReplayEstimator struct {
	rec           *Recording
	minVisibility float64
	mu            sync.Mutex
}

// NewReplayEstimator creates an estimator backed by rec. Keypoints with a
// visibility below minVisibility are reported as absent.
func NewReplayEstimator(rec *Recording, minVisibility float64) *ReplayEstimator {
	return &ReplayEstimator{rec: rec, minVisibility: minVisibility}
}

// Estimate returns the recorded body for the frame's sequence number.
func (e *ReplayEstimator) Estimate(frame Frame) (*Body, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rf, ok := e.rec.Frames[frame.Seq()]
	if !ok || len(rf.Mediapipe) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(rf.Mediapipe))
	for name := range rf.Mediapipe {
		names = append(names, name)
	}
	sort.Strings(names)

	body := &Body{Tracked: NewLandmarkSet()}
	for _, name := range names {
		kp := rf.Mediapipe[name]
		present := kp.Visibility >= e.minVisibility
		body.Keypoints = append(body.Keypoints, Keypoint{
			Name:       name,
			X:          kp.X,
			Y:          kp.Y,
			Confidence: kp.Visibility,
			Present:    present,
		})
		if l, ok := ParseLandmark(name); ok && present {
			body.Tracked.Set(l, Point{X: kp.X, Y: kp.Y})
		}
	}
	return body, nil
}

// Close is a no-op.
func (e *ReplayEstimator) Close() error {
	return nil
}

// ReplaySource yields one empty frame per recorded index, for running the
// pipeline without video.
type ReplaySource struct {
	total int
	next  int
}

// NewReplaySource creates a source of total frames.
func NewReplaySource(total int) *ReplaySource {
	return &ReplaySource{total: total}
}

// Read returns the next frame or io.EOF.
func (s *ReplaySource) Read() (Frame, error) {
	if s.next >= s.total {
		return nil, io.EOF
	}
	f := replayFrame(s.next)
	s.next++
	return f, nil
}

// Len returns the total number of frames.
func (s *ReplaySource) Len() int {
	return s.total
}

// Close is a no-op.
func (s *ReplaySource) Close() error {
	return nil
}

type replayFrame int

func (f replayFrame) Seq() int     { return int(f) }
func (f replayFrame) Close() error { return nil }
