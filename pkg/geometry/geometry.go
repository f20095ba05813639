// Package geometry maps rectangles between original-image space and the view
// space of an image contain-fitted and centered inside a viewport.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/menta2k/faceblur/pkg/types"
)

// ErrInvalidGeometry is returned for zero, negative or non-finite dimensions
var ErrInvalidGeometry = errors.New("invalid geometry")

// Fit is the size of an image after contain-fitting it into a viewport
type Fit struct {
	ScaledWidth  float64 `json:"scaledWidth"`
	ScaledHeight float64 `json:"scaledHeight"`
}

// Offset returns the centering offsets of the fitted image inside view
func (f Fit) Offset(view types.Dimensions) (left, top float64) {
	return (view.Width - f.ScaledWidth) / 2, (view.Height - f.ScaledHeight) / 2
}

// Validate rejects dimensions that would make the transform undefined
func Validate(original, view types.Dimensions) error {
	if !original.Valid() {
		return fmt.Errorf("%w: image %gx%g", ErrInvalidGeometry, original.Width, original.Height)
	}
	if !view.Valid() {
		return fmt.Errorf("%w: view %gx%g", ErrInvalidGeometry, view.Width, view.Height)
	}
	return nil
}

// FitDimensions scales original to fit entirely inside view while keeping its
// aspect ratio.
func FitDimensions(original, view types.Dimensions) (Fit, error) {
	if err := Validate(original, view); err != nil {
		return Fit{}, err
	}

	// Height if the view width limits, width if the view height limits
	scaledHeight := view.Width * original.Height / original.Width
	scaledWidth := view.Height * original.Width / original.Height

	return Fit{
		ScaledWidth:  math.Min(view.Width, scaledWidth),
		ScaledHeight: math.Min(view.Height, scaledHeight),
	}, nil
}

// ProjectToView places a rectangle given in original-image space onto the
// viewport. Every caller that needs the forward transform goes through here.
func ProjectToView(original, view types.Dimensions, r types.Rectangle) (types.OverlayPlacement, error) {
	fit, err := FitDimensions(original, view)
	if err != nil {
		return types.OverlayPlacement{}, err
	}
	left, top := fit.Offset(view)

	return types.OverlayPlacement{
		OffsetTop:    (r.Y/original.Height)*fit.ScaledHeight + top,
		OffsetLeft:   (r.X/original.Width)*fit.ScaledWidth + left,
		Height:       (r.Height / original.Height) * fit.ScaledHeight,
		Width:        (r.Width / original.Width) * fit.ScaledWidth,
		ScaledWidth:  fit.ScaledWidth,
		ScaledHeight: fit.ScaledHeight,
	}, nil
}

// ProjectToImage maps a view-space point back to original-image space. The
// returned flag is false when the point falls in the letterbox margin.
func ProjectToImage(original, view types.Dimensions, p types.Point) (types.Point, bool, error) {
	fit, err := FitDimensions(original, view)
	if err != nil {
		return types.Point{}, false, err
	}
	left, top := fit.Offset(view)

	img := types.Point{
		X: (p.X - left) / fit.ScaledWidth * original.Width,
		Y: (p.Y - top) / fit.ScaledHeight * original.Height,
	}
	inside := img.X >= 0 && img.X <= original.Width && img.Y >= 0 && img.Y <= original.Height
	return img, inside, nil
}
