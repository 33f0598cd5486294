package camera

import (
	"errors"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"github.com/teslashibe/activity-tracker/internal/log"
	"github.com/teslashibe/activity-tracker/pkg/pose"
)

// Frame is a cropped video frame. The caller owns it and must Close it.
type Frame struct {
	seq  int
	mat  gocv.Mat
	full [2]int // Width and height before cropping
}

// Seq returns the zero-based frame number.
func (f *Frame) Seq() int { return f.seq }

// Mat returns the cropped image.
func (f *Frame) Mat() gocv.Mat { return f.mat }

// FullSize returns the frame size before the ROI crop.
func (f *Frame) FullSize() (int, int) { return f.full[0], f.full[1] }

// Close releases the image memory.
func (f *Frame) Close() error { return f.mat.Close() }

// Source reads frames from a video file or capture device.
type Source struct {
	config  Config
	capture *gocv.VideoCapture
	roi     *Manager
	raw     gocv.Mat
	device  bool
	seq     int
	total   int
}

// Open opens the configured video source. roi may be nil, in which case the
// crop is fixed to config.ROI.
func Open(config Config, roi *Manager) (*Source, error) {
	if errs := config.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}
	if roi == nil {
		roi = NewManager(config.ROI)
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	id, device := config.DeviceIndex()
	if device {
		capture, err = gocv.VideoCaptureDevice(id)
	} else {
		capture, err = gocv.VideoCaptureFile(config.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("open video source %s: %w", config.Source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video source %s could not be opened", config.Source)
	}

	if device && config.Width > 0 && config.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(config.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(config.Height))
	}

	s := &Source{
		config:  config,
		capture: capture,
		roi:     roi,
		raw:     gocv.NewMat(),
		device:  device,
	}
	if !device {
		s.total = int(capture.Get(gocv.VideoCaptureFrameCount))
	}

	log.Info("video source opened",
		"source", config.Source,
		"device", device,
		"frames", s.total,
		"fps", capture.Get(gocv.VideoCaptureFPS))
	return s, nil
}

// Read returns the next cropped frame. It returns io.EOF when a file ends.
// A device that stops delivering frames is an error.
func (s *Source) Read() (pose.Frame, error) {
	if s.capture == nil {
		return nil, errors.New("video source closed")
	}
	if ok := s.capture.Read(&s.raw); !ok || s.raw.Empty() {
		if s.device {
			return nil, fmt.Errorf("capture device %s stopped delivering frames", s.config.Source)
		}
		return nil, io.EOF
	}

	w, h := s.raw.Cols(), s.raw.Rows()
	roi := s.roi.ROI()

	var mat gocv.Mat
	if roi.IsFull() {
		mat = s.raw.Clone()
	} else {
		region := s.raw.Region(roi.Rect(w, h))
		mat = region.Clone()
		region.Close()
	}

	f := &Frame{seq: s.seq, mat: mat, full: [2]int{w, h}}
	s.seq++
	return f, nil
}

// Len returns the number of frames in a video file, or 0 for devices and
// containers that do not report a count.
func (s *Source) Len() int {
	return s.total
}

// ROI returns the crop manager.
func (s *Source) ROI() *Manager {
	return s.roi
}

// Close releases the capture device.
func (s *Source) Close() error {
	if s.capture == nil {
		return nil
	}
	s.raw.Close()
	err := s.capture.Close()
	s.capture = nil
	return err
}
