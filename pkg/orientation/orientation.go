// Package orientation turns device tilt samples into a photo rotation.
package orientation

import (
	"math"

	"github.com/menta2k/faceblur/pkg/types"
)

// Rotation angles in degrees
const (
	Upright          = 0
	Clockwise        = 90
	CounterClockwise = -90
)

// Classify maps a tilt sample to the rotation the photo should be shown at.
// A missing sample means upright.
func Classify(t *types.Tilt) int {
	if t == nil {
		return Upright
	}

	absGamma := math.Abs(t.Gamma)
	absBeta := math.Abs(t.Beta)

	switch {
	case absGamma <= 0.04 && absBeta <= 0.24:
		// lying flat
		return Upright
	case (absGamma <= 1.0 || absGamma >= 2.3) && absBeta >= 0.5:
		return Upright
	case t.Gamma < 0:
		return CounterClockwise
	default:
		return Clockwise
	}
}
