// Package hittest resolves a tap in view space to the face overlay under it.
package hittest

import (
	"fmt"

	"github.com/menta2k/faceblur/pkg/geometry"
	"github.com/menta2k/faceblur/pkg/types"
)

// Resolve reports which face, if any, contains tap. Overlays are projected
// with geometry.ProjectToView so a tap always agrees with what was drawn.
// When overlays overlap, the lowest index wins.
func Resolve(tap types.Point, faces []types.FaceRecord, original, view types.Dimensions) (types.HitResult, error) {
	if err := geometry.Validate(original, view); err != nil {
		return types.HitResult{}, err
	}

	for i, face := range faces {
		placement, err := geometry.ProjectToView(original, view, face.Rectangle)
		if err != nil {
			return types.HitResult{}, fmt.Errorf("project face %d: %w", i, err)
		}
		if placement.Contains(tap) {
			return types.HitResult{IsModifying: true, ModifyIndex: i}, nil
		}
	}

	return types.HitResult{IsModifying: false}, nil
}
