// Package faceblur crops detected faces out of an image and keeps track of
// which of them the user selected or hid.
//
// A Session owns the face records of one source image. Records are produced
// by the crop pipeline from serialized rectangles, then projected onto
// whatever view the image is shown in:
//
//	p := cropper.New(processing.NewProcessor(), cropper.WithConfig(cfg))
//	s, err := faceblur.Open(ctx, p, src, faceData)
//	if err != nil {
//		log.Fatal(err)
//	}
//	overlays, _ := s.Overlays(types.Dimensions{Width: 300, Height: 300})
//	hit, _ := s.HitTest(types.Point{X: 35, Y: 95}, view)
//	if hit.IsModifying {
//		s.ToggleHidden(hit.ModifyIndex)
//	}
//
// The package consists of these components:
//
// 1. Geometry (pkg/geometry): contain-fit projection between image and view space
// 2. Bounds (pkg/bounds): clamping of detected rectangles to the image
// 3. Cropper (pkg/cropper): the sequential crop pipeline
// 4. Hit test (pkg/hittest): mapping a tap to the face under it
// 5. Detection (pkg/detection): vision model backends that locate faces
//
// A Session is not safe for concurrent mutation.
package faceblur

import (
	"context"
	"errors"
	"fmt"

	"github.com/menta2k/faceblur/pkg/cropper"
	"github.com/menta2k/faceblur/pkg/geometry"
	"github.com/menta2k/faceblur/pkg/hittest"
	"github.com/menta2k/faceblur/pkg/refkey"
	"github.com/menta2k/faceblur/pkg/types"
)

// Version of the faceblur library
const Version = "1.0.0"

// ErrFaceIndex is returned when a face index is out of range
var ErrFaceIndex = errors.New("face index out of range")

// Session holds the face records of one source image
type Session struct {
	src   types.Asset
	faces []types.FaceRecord
}

// Open crops every face in faceData out of src and returns a session over
// the resulting records. Faces whose crop fails are left out.
func Open(ctx context.Context, p *cropper.Pipeline, src types.Asset, faceData string) (*Session, error) {
	if !src.Dimensions().Valid() {
		return nil, fmt.Errorf("source %q: %w", src.URI, geometry.ErrInvalidGeometry)
	}

	faces, err := p.CropFaces(ctx, src, faceData)
	if err != nil {
		return nil, fmt.Errorf("crop faces: %w", err)
	}
	return &Session{src: src, faces: faces}, nil
}

// FromRecords returns a session over records produced earlier
func FromRecords(src types.Asset, faces []types.FaceRecord) (*Session, error) {
	if !src.Dimensions().Valid() {
		return nil, fmt.Errorf("source %q: %w", src.URI, geometry.ErrInvalidGeometry)
	}
	return &Session{src: src, faces: append([]types.FaceRecord(nil), faces...)}, nil
}

// Source returns the image the faces were cropped from
func (s *Session) Source() types.Asset {
	return s.src
}

// Faces returns a copy of the face records in detection order
func (s *Session) Faces() []types.FaceRecord {
	return append([]types.FaceRecord(nil), s.faces...)
}

// Len returns the number of face records
func (s *Session) Len() int {
	return len(s.faces)
}

// Overlays projects every face into a view of the given size
func (s *Session) Overlays(view types.Dimensions) ([]types.OverlayPlacement, error) {
	original := s.src.Dimensions()
	out := make([]types.OverlayPlacement, 0, len(s.faces))
	for _, f := range s.faces {
		placement, err := geometry.ProjectToView(original, view, f.Rectangle)
		if err != nil {
			return nil, err
		}
		out = append(out, placement)
	}
	return out, nil
}

// HitTest reports which face overlay, if any, contains tap
func (s *Session) HitTest(tap types.Point, view types.Dimensions) (types.HitResult, error) {
	return hittest.Resolve(tap, s.faces, s.src.Dimensions(), view)
}

// ImagePoint maps a tap in view space back to image pixels. The second
// result is false when the tap lands on the letterbox.
func (s *Session) ImagePoint(tap types.Point, view types.Dimensions) (types.Point, bool, error) {
	return geometry.ProjectToImage(s.src.Dimensions(), view, tap)
}

// Select marks face i as selected and clears every other selection
func (s *Session) Select(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	for j := range s.faces {
		s.faces[j].IsSelected = j == i
	}
	return nil
}

// ClearSelection deselects all faces
func (s *Session) ClearSelection() {
	for j := range s.faces {
		s.faces[j].IsSelected = false
	}
}

// ToggleHidden flips the hidden flag of face i and returns the new value
func (s *Session) ToggleHidden(i int) (bool, error) {
	if err := s.check(i); err != nil {
		return false, err
	}
	s.faces[i].IsHidden = !s.faces[i].IsHidden
	return s.faces[i].IsHidden, nil
}

// Visible returns the faces that are neither hidden nor empty
func (s *Session) Visible() []types.FaceRecord {
	var out []types.FaceRecord
	for _, f := range s.faces {
		if !f.IsHidden && !f.Empty() {
			out = append(out, f)
		}
	}
	return out
}

// RefKey returns the render key of img for the current blur state
func (s *Session) RefKey(img refkey.Image, activeID string, blurFaces bool, hit types.HitResult) string {
	return refkey.ForImage(img, activeID, blurFaces, hit)
}

func (s *Session) check(i int) error {
	if i < 0 || i >= len(s.faces) {
		return fmt.Errorf("%w: %d of %d", ErrFaceIndex, i, len(s.faces))
	}
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
