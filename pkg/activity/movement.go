// Package activity classifies a subject as Working or Idle from the movement
// of tracked body landmarks between frames.
package activity

import "github.com/teslashibe/activity-tracker/pkg/pose"

// Movement returns the distance travelled between two positions.
// It is 0 when either position is missing.
func Movement(prev, curr *pose.Point) float64 {
	if prev == nil || curr == nil {
		return 0
	}
	return prev.Sub(*curr).Norm()
}
