package faceblur

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/faceblur/pkg/cropper"
	"github.com/menta2k/faceblur/pkg/geometry"
	"github.com/menta2k/faceblur/pkg/refkey"
	"github.com/menta2k/faceblur/pkg/types"
)

type stubCropper struct {
	fail map[float64]bool
}

func (s stubCropper) Crop(ctx context.Context, uri string, r types.Rectangle, cfg types.CropConfig) (types.Asset, error) {
	if s.fail[r.X] {
		return types.Asset{}, errors.New("decode failed")
	}
	return types.Asset{URI: "face.jpg", Width: int(r.Width), Height: int(r.Height)}, nil
}

const faceData = `[
	{"x":100,"y":100,"width":200,"height":100},
	{"x":600,"y":200,"width":100,"height":100},
	{"x":800,"y":300,"width":100,"height":100}
]`

var (
	src  = types.Asset{URI: "file:///photo.jpg", Width: 1000, Height: 500}
	view = types.Dimensions{Width: 300, Height: 300}
)

func pipeline(fail map[float64]bool) *cropper.Pipeline {
	return cropper.New(stubCropper{fail: fail},
		cropper.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
}

func openSession(t *testing.T) *Session {
	t.Helper()
	s, err := Open(context.Background(), pipeline(nil), src, faceData)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	return s
}

func TestOpen(t *testing.T) {
	s := openSession(t)
	assert.Equal(t, src, s.Source())

	for _, f := range s.Faces() {
		assert.False(t, f.IsSelected)
		assert.False(t, f.IsHidden)
		assert.Equal(t, "face.jpg", f.Crop.URI)
	}
}

func TestOpenSkipsFailedCrops(t *testing.T) {
	s, err := Open(context.Background(), pipeline(map[float64]bool{600: true}), src, faceData)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 100.0, s.Faces()[0].X)
	assert.Equal(t, 800.0, s.Faces()[1].X)
}

func TestOpenNoFaces(t *testing.T) {
	s, err := Open(context.Background(), pipeline(nil), src, "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Visible())
}

func TestOpenInvalidSource(t *testing.T) {
	_, err := Open(context.Background(), pipeline(nil), types.Asset{URI: "x"}, faceData)
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)

	_, err = FromRecords(types.Asset{URI: "x", Width: 10}, nil)
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)
}

func TestFacesReturnsCopy(t *testing.T) {
	s := openSession(t)
	faces := s.Faces()
	faces[0].IsHidden = true
	assert.False(t, s.Faces()[0].IsHidden)
}

func TestOverlays(t *testing.T) {
	s := openSession(t)
	overlays, err := s.Overlays(view)
	require.NoError(t, err)
	require.Len(t, overlays, 3)

	// 1000x500 into 300x300 fits to 300x150, letterboxed 75 from the top
	first := overlays[0]
	assert.InDelta(t, 30, first.OffsetLeft, 1e-9)
	assert.InDelta(t, 105, first.OffsetTop, 1e-9)
	assert.InDelta(t, 60, first.Width, 1e-9)
	assert.InDelta(t, 30, first.Height, 1e-9)
	assert.InDelta(t, 300, first.ScaledWidth, 1e-9)
	assert.InDelta(t, 150, first.ScaledHeight, 1e-9)

	_, err = s.Overlays(types.Dimensions{})
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)
}

func TestHitTest(t *testing.T) {
	s := openSession(t)

	hit, err := s.HitTest(types.Point{X: 35, Y: 110}, view)
	require.NoError(t, err)
	assert.Equal(t, types.HitResult{IsModifying: true, ModifyIndex: 0}, hit)

	hit, err = s.HitTest(types.Point{X: 150, Y: 10}, view)
	require.NoError(t, err)
	assert.False(t, hit.IsModifying)
}

func TestImagePoint(t *testing.T) {
	s := openSession(t)

	p, inside, err := s.ImagePoint(types.Point{X: 30, Y: 105}, view)
	require.NoError(t, err)
	assert.True(t, inside)
	assert.InDelta(t, 100, p.X, 1e-9)
	assert.InDelta(t, 100, p.Y, 1e-9)

	_, inside, err = s.ImagePoint(types.Point{X: 150, Y: 10}, view)
	require.NoError(t, err)
	assert.False(t, inside)
}

func TestSelect(t *testing.T) {
	s := openSession(t)

	require.NoError(t, s.Select(1))
	require.NoError(t, s.Select(2))
	faces := s.Faces()
	assert.False(t, faces[0].IsSelected)
	assert.False(t, faces[1].IsSelected)
	assert.True(t, faces[2].IsSelected)

	s.ClearSelection()
	for _, f := range s.Faces() {
		assert.False(t, f.IsSelected)
	}

	assert.ErrorIs(t, s.Select(3), ErrFaceIndex)
	assert.ErrorIs(t, s.Select(-1), ErrFaceIndex)
}

func TestToggleHidden(t *testing.T) {
	s := openSession(t)

	hidden, err := s.ToggleHidden(1)
	require.NoError(t, err)
	assert.True(t, hidden)
	assert.Len(t, s.Visible(), 2)

	hidden, err = s.ToggleHidden(1)
	require.NoError(t, err)
	assert.False(t, hidden)
	assert.Len(t, s.Visible(), 3)

	_, err = s.ToggleHidden(7)
	assert.ErrorIs(t, err, ErrFaceIndex)
}

func TestRefKey(t *testing.T) {
	s := openSession(t)
	img := refkey.Image{ID: "1", Name: "DCIM/IMG_0001.jpg"}

	hit, err := s.HitTest(types.Point{X: 35, Y: 110}, view)
	require.NoError(t, err)

	assert.Equal(t, "IMG_0001,jpg#1#1", s.RefKey(img, "1", true, hit))
	assert.Equal(t, "IMG_0001,jpg#0#0", s.RefKey(img, "2", true, hit))
	assert.Equal(t, "IMG_0001,jpg#1#0", s.RefKey(img, "1", true, types.HitResult{}))
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
