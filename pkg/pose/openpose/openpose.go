// Package openpose provides body pose estimation using OpenCV's DNN module
// and the COCO OpenPose model.
package openpose

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/activity-tracker/pkg/pose"
	"gocv.io/x/gocv"
)

// MatFrame is a frame backed by an OpenCV matrix.
type MatFrame interface {
	pose.Frame
	Mat() gocv.Mat
}

// Config holds estimator configuration
type Config struct {
	ModelPath        string  `json:"model_path"`  // Path to .caffemodel weights
	ConfigPath       string  `json:"config_path"` // Path to .prototxt (empty for ONNX)
	InputWidth       int     `json:"input_width"`
	InputHeight      int     `json:"input_height"`
	ConfidenceThresh float64 `json:"confidence"` // Minimum heatmap peak for a part
}

// DefaultConfig returns defaults for the COCO OpenPose model
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/pose_iter_440000.caffemodel",
		ConfigPath:       "models/openpose_pose_coco.prototxt",
		InputWidth:       368,
		InputHeight:      368,
		ConfidenceThresh: 0.1,
	}
}

// Estimator runs the OpenPose network on each frame
type Estimator struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex // Protects inference
}

// New loads the OpenPose network
func New(cfg Config) (*Estimator, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("model config not found: %s", cfg.ConfigPath)
		}
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load pose model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Estimator{
		net:    net,
		config: cfg,
	}, nil
}

// Estimate finds the body in the frame
func (e *Estimator) Estimate(frame pose.Frame) (*pose.Body, error) {
	mf, ok := frame.(MatFrame)
	if !ok {
		return nil, fmt.Errorf("openpose: frame %d carries no image", frame.Seq())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	img := mf.Mat()
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	blob := gocv.BlobFromImage(img, 1.0/255.0,
		image.Pt(e.config.InputWidth, e.config.InputHeight),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.net.SetInput(blob, "")

	prob := e.net.Forward("")
	defer prob.Close()

	// Output shape: [1, parts+pafs, H, W]
	dims := prob.Size()
	if len(dims) != 4 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}

	data, err := prob.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	kps := ParseHeatmaps(data, dims[1], dims[2], dims[3], e.config.ConfidenceThresh)
	return BodyFromKeypoints(kps), nil
}

// Close releases the network
func (e *Estimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}
