package types

import (
	"encoding/json"
	"math"
)

// Dimensions is the pixel size of an image or the rendered size of a viewport
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both sides are finite and strictly positive
func (d Dimensions) Valid() bool {
	return positive(d.Width) && positive(d.Height)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Point is a location in either original-image space or view space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rectangle is an axis-aligned box. It is not guaranteed to lie within any
// bounds until it has been clamped.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the rectangle covers no area
func (r Rectangle) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the geometric center of the rectangle
func (r Rectangle) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ClampedRectangle is a rectangle adjusted to image bounds together with the
// margin hints used to decide how much context to show around a crop.
type ClampedRectangle struct {
	Rectangle
	BorderLeft  float64 `json:"borderLeft"`
	BorderRight float64 `json:"borderRight"`
}

// Asset references an encoded image and its pixel size
type Asset struct {
	URI    string `json:"uri"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Dimensions returns the asset size as Dimensions
func (a Asset) Dimensions() Dimensions {
	return Dimensions{Width: float64(a.Width), Height: float64(a.Height)}
}

// FaceRecord is one detected face of an edit session
type FaceRecord struct {
	ClampedRectangle
	IsSelected bool  `json:"isSelected"`
	IsHidden   bool  `json:"isHidden"`
	Crop       Asset `json:"-"`
}

type faceRecordJSON struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	BorderLeft  float64 `json:"borderLeft"`
	BorderRight float64 `json:"borderRight"`
	IsSelected  bool    `json:"isSelected"`
	IsHidden    bool    `json:"isHidden"`
	URI         string  `json:"uri"`
	CropWidth   int     `json:"cropWidth"`
	CropHeight  int     `json:"cropHeight"`
}

// MarshalJSON writes the record in its flat wire form
func (f FaceRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(faceRecordJSON{
		X:           f.X,
		Y:           f.Y,
		Width:       f.Width,
		Height:      f.Height,
		BorderLeft:  f.BorderLeft,
		BorderRight: f.BorderRight,
		IsSelected:  f.IsSelected,
		IsHidden:    f.IsHidden,
		URI:         f.Crop.URI,
		CropWidth:   f.Crop.Width,
		CropHeight:  f.Crop.Height,
	})
}

// UnmarshalJSON reads the flat wire form written by MarshalJSON
func (f *FaceRecord) UnmarshalJSON(data []byte) error {
	var raw faceRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = FaceRecord{
		ClampedRectangle: ClampedRectangle{
			Rectangle:   Rectangle{X: raw.X, Y: raw.Y, Width: raw.Width, Height: raw.Height},
			BorderLeft:  raw.BorderLeft,
			BorderRight: raw.BorderRight,
		},
		IsSelected: raw.IsSelected,
		IsHidden:   raw.IsHidden,
		Crop:       Asset{URI: raw.URI, Width: raw.CropWidth, Height: raw.CropHeight},
	}
	return nil
}

// OverlayPlacement is a face rectangle projected into view space for the
// current viewport. It is recomputed on every layout change.
type OverlayPlacement struct {
	OffsetTop    float64 `json:"offsetTop"`
	OffsetLeft   float64 `json:"offsetLeft"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	ScaledWidth  float64 `json:"scaledWidth"`
	ScaledHeight float64 `json:"scaledHeight"`
}

// Contains reports whether p lies inside the overlay, edges included
func (o OverlayPlacement) Contains(p Point) bool {
	return o.OffsetLeft <= p.X && o.OffsetLeft+o.Width >= p.X &&
		o.OffsetTop <= p.Y && o.OffsetTop+o.Height >= p.Y
}

// Rectangle returns the overlay as a view-space rectangle
func (o OverlayPlacement) Rectangle() Rectangle {
	return Rectangle{X: o.OffsetLeft, Y: o.OffsetTop, Width: o.Width, Height: o.Height}
}

// HitResult is the outcome of resolving one tap against the overlays
type HitResult struct {
	IsModifying bool `json:"isModifying"`
	ModifyIndex int  `json:"modifyIndex,omitempty"`
}

// MarshalJSON keeps modifyIndex 0 when a hit resolved to the first face
func (h HitResult) MarshalJSON() ([]byte, error) {
	if !h.IsModifying {
		return json.Marshal(struct {
			IsModifying bool `json:"isModifying"`
		}{false})
	}
	return json.Marshal(struct {
		IsModifying bool `json:"isModifying"`
		ModifyIndex int  `json:"modifyIndex"`
	}{true, h.ModifyIndex})
}

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ToRectangle converts the normalized box to pixels of an image of size d
func (b Box) ToRectangle(d Dimensions) Rectangle {
	return Rectangle{
		X:      b.X * d.Width,
		Y:      b.Y * d.Height,
		Width:  b.W * d.Width,
		Height: b.H * d.Height,
	}
}

// Tilt is a device orientation sample in radians
type Tilt struct {
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// CropConfig defines the compression and format policy of face crops
type CropConfig struct {
	Quality   int
	Format    string
	Lossless  bool
	OutputDir string
}

// DefaultCropConfig returns JPEG output at quality 80
func DefaultCropConfig() CropConfig {
	return CropConfig{
		Quality:   80,
		Format:    "jpg",
		OutputDir: ".",
	}
}

// DetectionResult is the parsed reply of a face-locating vision model
type DetectionResult struct {
	Faces []DetectedFace `json:"faces"`
}

// DetectedFace is one face box reported by a vision model
type DetectedFace struct {
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}
