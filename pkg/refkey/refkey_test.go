package refkey

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/faceblur/pkg/types"
)

func TestForImage(t *testing.T) {
	img := Image{ID: "42", Name: "/DCIM/Camera/IMG_0001.jpg"}
	hit := types.HitResult{IsModifying: true, ModifyIndex: 0}

	tests := []struct {
		name      string
		activeID  string
		blurFaces bool
		hit       types.HitResult
		expected  string
	}{
		{"inactive image", "7", true, hit, "IMG_0001,jpg#0#0"},
		{"blur off", "42", false, hit, "IMG_0001,jpg#0#0"},
		{"faces shown", "42", true, types.HitResult{}, "IMG_0001,jpg#1#0"},
		{"active blur", "42", true, hit, "IMG_0001,jpg#1#1"},
		{"negative index", "42", true, types.HitResult{IsModifying: true, ModifyIndex: -1}, "IMG_0001,jpg#1#0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForImage(img, tt.activeID, tt.blurFaces, tt.hit))
		})
	}
}

func TestFileNameExt(t *testing.T) {
	assert.Nil(t, FileNameExt(""))
	assert.Equal(t, []string{"photo", "jpg"}, FileNameExt("photo.jpg"))
	assert.Equal(t, []string{"archive", "tar", "gz"}, FileNameExt("/tmp/archive.tar.gz"))
	assert.Equal(t, []string{"README"}, FileNameExt("docs/README"))
}

func TestNewUUID(t *testing.T) {
	a, b := NewUUID(), NewUUID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}
