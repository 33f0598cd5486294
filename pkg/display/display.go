package display

import (
	"gocv.io/x/gocv"

	"github.com/teslashibe/activity-tracker/internal/log"
	"github.com/teslashibe/activity-tracker/pkg/activity"
	"github.com/teslashibe/activity-tracker/pkg/pose"
)

// QuitKey stops the run when pressed in the window.
const QuitKey = 'q'

// JPEGSink receives annotated frames (e.g. the dashboard camera stream).
type JPEGSink interface {
	SendCameraFrame(jpeg []byte)
}

// Options configures both display kinds.
type Options struct {
	Title       string
	WaitMillis  int      // Keyboard poll per frame
	Sink        JPEGSink // Optional
	StreamEvery int      // Encode every Nth frame for the sink
	Quality     int      // JPEG quality 1-100
}

// DefaultOptions returns the usual window settings.
func DefaultOptions() Options {
	return Options{
		Title:       "Activity Tracker",
		WaitMillis:  10,
		StreamEvery: 3,
		Quality:     70,
	}
}

// Window shows annotated frames in an OpenCV window.
type Window struct {
	opts   Options
	window *gocv.Window
	shown  int
}

// NewWindow opens the display window.
func NewWindow(opts Options) *Window {
	return &Window{
		opts:   opts,
		window: gocv.NewWindow(opts.Title),
	}
}

// Show draws the frame and polls the keyboard. It returns true when the
// quit key was pressed.
func (w *Window) Show(frame pose.Frame, res *activity.FrameResult) bool {
	img, ok := frameMat(frame)
	if !ok {
		return false
	}
	Annotate(&img, res)
	stream(&w.opts, w.shown, img)
	w.shown++

	w.window.IMShow(img)
	return w.window.WaitKey(w.opts.WaitMillis) == QuitKey
}

// Close closes the window.
func (w *Window) Close() error {
	return w.window.Close()
}

// Headless never opens a window. It only forwards annotated frames to the
// sink, if one is configured, and never requests a stop.
type Headless struct {
	opts  Options
	shown int
}

// NewHeadless creates a display without a window.
func NewHeadless(opts Options) *Headless {
	return &Headless{opts: opts}
}

// Show annotates and streams the frame when a sink is set.
func (h *Headless) Show(frame pose.Frame, res *activity.FrameResult) bool {
	if h.opts.Sink == nil {
		return false
	}
	if img, ok := frameMat(frame); ok {
		if shouldStream(&h.opts, h.shown) {
			Annotate(&img, res)
		}
		stream(&h.opts, h.shown, img)
	}
	h.shown++
	return false
}

// Close is a no-op.
func (h *Headless) Close() error {
	return nil
}

func shouldStream(opts *Options, n int) bool {
	if opts.Sink == nil {
		return false
	}
	every := opts.StreamEvery
	if every < 1 {
		every = 1
	}
	return n%every == 0
}

func stream(opts *Options, n int, img gocv.Mat) {
	if !shouldStream(opts, n) {
		return
	}
	data, err := EncodeJPEG(img, opts.Quality)
	if err != nil {
		log.Warn("camera stream encode failed", "error", err)
		return
	}
	opts.Sink.SendCameraFrame(data)
}
