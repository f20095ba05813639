// Package refkey builds stable identity keys used by the gallery to decide
// when an image view must re-render.
package refkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/menta2k/faceblur/pkg/types"
)

// Image is the part of a gallery item the key depends on
type Image struct {
	ID   string
	Name string
}

// ForImage returns "<name parts>#<showFaces>#<hasActiveBlur>". Faces are shown
// only for the active image when blurring is on, and an active blur needs a
// resolved hit on top of that.
func ForImage(img Image, activeID string, blurFaces bool, hit types.HitResult) string {
	showFaces := blurFaces && activeID == img.ID
	hasActiveBlur := showFaces && hit.IsModifying && hit.ModifyIndex >= 0

	return fmt.Sprintf("%s#%d#%d", strings.Join(FileNameExt(img.Name), ","), flag(showFaces), flag(hasActiveBlur))
}

// FileNameExt splits the last path segment on dots, so "a/b/photo.jpg"
// yields ["photo", "jpg"].
func FileNameExt(path string) []string {
	if path == "" {
		return nil
	}
	base := path[strings.LastIndex(path, "/")+1:]
	return strings.Split(base, ".")
}

// NewUUID returns a random version 4 UUID
func NewUUID() string {
	return uuid.NewString()
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
