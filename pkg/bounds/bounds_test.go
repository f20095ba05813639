package bounds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/menta2k/faceblur/pkg/types"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		rect     types.Rectangle
		dims     types.Dimensions
		expected types.ClampedRectangle
	}{
		{
			name: "negative x is clamped to zero",
			rect: types.Rectangle{X: -10, Y: 0, Width: 50, Height: 50},
			dims: types.Dimensions{Width: 100, Height: 100},
			expected: types.ClampedRectangle{
				Rectangle:   types.Rectangle{X: 0, Y: 0, Width: 50, Height: 50},
				BorderLeft:  0,
				BorderRight: 50,
			},
		},
		{
			name: "inside bounds is unchanged",
			rect: types.Rectangle{X: 10, Y: 20, Width: 30, Height: 40},
			dims: types.Dimensions{Width: 100, Height: 100},
			expected: types.ClampedRectangle{
				Rectangle:   types.Rectangle{X: 10, Y: 20, Width: 30, Height: 40},
				BorderLeft:  10,
				BorderRight: 10,
			},
		},
		{
			name: "right overflow shrinks width",
			rect: types.Rectangle{X: 80, Y: 10, Width: 50, Height: 20},
			dims: types.Dimensions{Width: 100, Height: 100},
			expected: types.ClampedRectangle{
				Rectangle:   types.Rectangle{X: 80, Y: 10, Width: 20, Height: 20},
				BorderLeft:  80,
				BorderRight: 10,
			},
		},
		{
			name: "bottom overflow shrinks height",
			rect: types.Rectangle{X: 0, Y: 90, Width: 10, Height: 50},
			dims: types.Dimensions{Width: 100, Height: 100},
			expected: types.ClampedRectangle{
				Rectangle:   types.Rectangle{X: 0, Y: 90, Width: 10, Height: 10},
				BorderLeft:  0,
				BorderRight: -80,
			},
		},
		{
			name: "borders are capped",
			rect: types.Rectangle{X: 500, Y: 0, Width: 400, Height: 100},
			dims: types.Dimensions{Width: 1000, Height: 1000},
			expected: types.ClampedRectangle{
				Rectangle:   types.Rectangle{X: 500, Y: 0, Width: 400, Height: 100},
				BorderLeft:  MaxBorder,
				BorderRight: MaxBorder,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clamp(tt.rect, tt.dims))
		})
	}
}

// The y coordinate is checked against the image width. A y inside the height
// but beyond the width is reset to zero, while a y beyond the height but
// within the width is kept.
func TestClampComparesYAgainstWidth(t *testing.T) {
	tall := types.Dimensions{Width: 100, Height: 1000}
	got := Clamp(types.Rectangle{X: 0, Y: 150, Width: 10, Height: 10}, tall)
	assert.Equal(t, 0.0, got.Y)
	assert.Equal(t, 10.0, got.Height)

	wide := types.Dimensions{Width: 1000, Height: 100}
	got = Clamp(types.Rectangle{X: 0, Y: 150, Width: 10, Height: 10}, wide)
	assert.Equal(t, 150.0, got.Y)
	// Height is shrunk with the raw y and goes negative
	assert.Equal(t, -50.0, got.Height)
}

func TestClampBorderRightUsesClampedY(t *testing.T) {
	got := Clamp(types.Rectangle{X: 10, Y: 400, Width: 640, Height: 100}, types.Dimensions{Width: 1000, Height: 1000})
	assert.Equal(t, 200.0, got.BorderRight)

	got = Clamp(types.Rectangle{X: 10, Y: 500, Width: 640, Height: 100}, types.Dimensions{Width: 1000, Height: 1000})
	assert.Equal(t, 140.0, got.BorderRight)
}

func TestClampNegativeXWidthUsesRawX(t *testing.T) {
	got := Clamp(types.Rectangle{X: -20, Y: 0, Width: 150, Height: 10}, types.Dimensions{Width: 100, Height: 100})
	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 120.0, got.Width)
}

func TestClampIsIdempotent(t *testing.T) {
	dims := types.Dimensions{Width: 640, Height: 480}
	values := []float64{0, 1, 50, 200, 479, 480, 600, 640, 700}
	sizes := []float64{0, 10, 100, 300, 700}

	for _, x := range values {
		for _, y := range values {
			for _, w := range sizes {
				for _, h := range sizes {
					once := Clamp(types.Rectangle{X: x, Y: y, Width: w, Height: h}, dims)
					twice := Clamp(once.Rectangle, dims)
					if once != twice {
						t.Fatalf("clamp not idempotent for %v,%v,%v,%v: %+v then %+v", x, y, w, h, once, twice)
					}
				}
			}
		}
	}
}

func TestClampNeverPanicsOnDegenerateInput(t *testing.T) {
	got := Clamp(types.Rectangle{X: 500, Y: 500, Width: 10, Height: 10}, types.Dimensions{Width: 100, Height: 100})
	assert.True(t, got.Empty())
}

func TestContains(t *testing.T) {
	dims := types.Dimensions{Width: 100, Height: 100}
	assert.True(t, Contains(types.Rectangle{X: 0, Y: 0, Width: 100, Height: 100}, dims))
	assert.False(t, Contains(types.Rectangle{X: -1, Y: 0, Width: 10, Height: 10}, dims))
	assert.False(t, Contains(types.Rectangle{X: 95, Y: 0, Width: 10, Height: 10}, dims))
}
