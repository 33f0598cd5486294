// Package display renders annotated frames to an OpenCV window or, when
// running headless, only to an optional JPEG sink such as the dashboard.
package display

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/activity-tracker/pkg/activity"
	"github.com/teslashibe/activity-tracker/pkg/pose"
)

var (
	white    = color.RGBA{255, 255, 255, 0}
	green    = color.RGBA{0, 255, 0, 0}
	red      = color.RGBA{0, 0, 255, 0}
	skeleton = color.RGBA{255, 200, 0, 0}
)

// StatusOrigin is where the status line is drawn.
var StatusOrigin = image.Pt(30, 40)

// matFrame is a frame backed by an OpenCV image.
type matFrame interface {
	Mat() gocv.Mat
}

// frameMat extracts the image from a frame, if it has one.
func frameMat(frame pose.Frame) (gocv.Mat, bool) {
	mf, ok := frame.(matFrame)
	if !ok {
		return gocv.Mat{}, false
	}
	m := mf.Mat()
	if m.Empty() {
		return gocv.Mat{}, false
	}
	return m, true
}

// StatusText is the overlay line for a frame result.
func StatusText(res *activity.FrameResult) string {
	if res == nil {
		return "Status: -"
	}
	text := "Status: " + res.Status.String()
	if res.IdleState == activity.TimedOut {
		text += fmt.Sprintf(" (idle %s)", res.IdleFor.Truncate(time.Second))
	}
	return text
}

// Annotate draws the detected skeleton and the status line onto img.
func Annotate(img *gocv.Mat, res *activity.FrameResult) {
	if res != nil && res.Body != nil {
		drawBody(img, res.Body)
	}
	gocv.PutText(img, StatusText(res), StatusOrigin, gocv.FontHersheySimplex, 1, white, 2)
}

func drawBody(img *gocv.Mat, body *pose.Body) {
	w, h := float64(img.Cols()), float64(img.Rows())
	px := func(kp pose.Keypoint) image.Point {
		return image.Pt(int(kp.X*w), int(kp.Y*h))
	}

	for _, limb := range body.Limbs {
		a, b := limb[0], limb[1]
		if a >= len(body.Keypoints) || b >= len(body.Keypoints) {
			continue
		}
		ka, kb := body.Keypoints[a], body.Keypoints[b]
		if !ka.Present || !kb.Present {
			continue
		}
		gocv.Line(img, px(ka), px(kb), skeleton, 2)
	}

	for _, kp := range body.Keypoints {
		if !kp.Present {
			continue
		}
		c := green
		if _, ok := pose.ParseLandmark(kp.Name); ok {
			c = red
		}
		gocv.Circle(img, px(kp), 4, c, -1)
	}
}

// EncodeJPEG encodes img for streaming.
func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
