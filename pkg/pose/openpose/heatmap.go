package openpose

import "github.com/teslashibe/activity-tracker/pkg/pose"

// COCO body part indices in the OpenPose output.
const (
	Nose = iota
	Neck
	RShoulder
	RElbow
	RWrist
	LShoulder
	LElbow
	LWrist
	RHip
	RKnee
	RAnkle
	LHip
	LKnee
	LAnkle
	REye
	LEye
	REar
	LEar
	NumParts
)

// PartNames are the COCO part names, indexed by part.
var PartNames = [NumParts]string{
	"nose", "neck",
	"right_shoulder", "right_elbow", "right_wrist",
	"left_shoulder", "left_elbow", "left_wrist",
	"right_hip", "right_knee", "right_ankle",
	"left_hip", "left_knee", "left_ankle",
	"right_eye", "left_eye", "right_ear", "left_ear",
}

// Limbs connects parts for skeleton drawing.
var Limbs = [][2]int{
	{Neck, RShoulder}, {Neck, LShoulder},
	{RShoulder, RElbow}, {RElbow, RWrist},
	{LShoulder, LElbow}, {LElbow, LWrist},
	{Neck, RHip}, {RHip, RKnee}, {RKnee, RAnkle},
	{Neck, LHip}, {LHip, LKnee}, {LKnee, LAnkle},
	{Neck, Nose}, {Nose, REye}, {REye, REar}, {Nose, LEye}, {LEye, LEar},
}

// tracked maps parts to the landmarks the activity engine consumes.
var tracked = map[int]pose.Landmark{
	LWrist: pose.LeftWrist,
	RWrist: pose.RightWrist,
	LKnee:  pose.LeftKnee,
	RKnee:  pose.RightKnee,
	LAnkle: pose.LeftAnkle,
	RAnkle: pose.RightAnkle,
}

// ParseHeatmaps finds the peak of each part heatmap in a [1, channels, h, w]
// output. Only the first NumParts channels are read; the rest are affinity
// fields. Positions are normalized to the heatmap size.
func ParseHeatmaps(data []float32, channels, h, w int, thresh float64) []pose.Keypoint {
	parts := NumParts
	if channels < parts {
		parts = channels
	}
	plane := h * w
	if plane == 0 || len(data) < parts*plane {
		return nil
	}

	kps := make([]pose.Keypoint, parts)
	for p := 0; p < parts; p++ {
		hm := data[p*plane : (p+1)*plane]

		best, bestIdx := float32(-1), 0
		for i, v := range hm {
			if v > best {
				best, bestIdx = v, i
			}
		}

		x, y := bestIdx%w, bestIdx/w
		kps[p] = pose.Keypoint{
			Name:       PartNames[p],
			X:          (float64(x) + 0.5) / float64(w),
			Y:          (float64(y) + 0.5) / float64(h),
			Confidence: float64(best),
			Present:    float64(best) > thresh,
		}
	}
	return kps
}

// BodyFromKeypoints builds a body from parsed parts. It returns nil when
// no part cleared the threshold.
func BodyFromKeypoints(kps []pose.Keypoint) *pose.Body {
	found := false
	set := pose.NewLandmarkSet()
	for i, kp := range kps {
		if !kp.Present {
			continue
		}
		found = true
		if l, ok := tracked[i]; ok {
			set.Set(l, pose.Point{X: kp.X, Y: kp.Y})
		}
	}
	if !found {
		return nil
	}
	return &pose.Body{
		Keypoints: kps,
		Limbs:     Limbs,
		Tracked:   set,
	}
}
