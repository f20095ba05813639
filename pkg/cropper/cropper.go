package cropper

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/menta2k/faceblur/pkg/bounds"
	"github.com/menta2k/faceblur/pkg/types"
)

// Cropper is the external crop-and-encode primitive. It cuts r out of the
// image at uri and returns the encoded result.
type Cropper interface {
	Crop(ctx context.Context, uri string, r types.Rectangle, cfg types.CropConfig) (types.Asset, error)
}

// Pipeline crops every detected face out of a source image, one at a time
type Pipeline struct {
	cropper  Cropper
	config   types.CropConfig
	logger   *slog.Logger
	progress func(done, total int)
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithConfig sets the compression and format policy passed to the cropper
func WithConfig(cfg types.CropConfig) Option {
	return func(p *Pipeline) { p.config = cfg }
}

// WithLogger sets the logger used to report skipped faces
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithProgress registers a callback invoked after each face resolves
func WithProgress(fn func(done, total int)) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New creates a Pipeline over the given crop primitive
func New(c Cropper, opts ...Option) *Pipeline {
	p := &Pipeline{
		cropper: c,
		config:  types.DefaultCropConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the crop policy of the pipeline
func (p *Pipeline) Config() types.CropConfig {
	return p.config
}

// ParseFaceData decodes a serialized rectangle list. Empty, absent or
// malformed data means no faces.
func ParseFaceData(data string) []types.Rectangle {
	data = strings.TrimSpace(data)
	if data == "" || data == "null" {
		return nil
	}

	var rects []types.Rectangle
	if err := json.Unmarshal([]byte(data), &rects); err != nil {
		slog.Warn("ignoring malformed face data", "error", err)
		return nil
	}
	if len(rects) == 0 {
		return nil
	}
	return rects
}

// CropFaces parses faceData and crops each face out of src. It returns nil
// when there are no faces. Faces whose crop fails are logged and left out;
// the remaining records keep input order.
func (p *Pipeline) CropFaces(ctx context.Context, src types.Asset, faceData string) ([]types.FaceRecord, error) {
	return p.CropFacesFromRects(ctx, src, ParseFaceData(faceData))
}

// CropFacesFromRects is CropFaces for rectangles that are already decoded.
//
// Crops run strictly in sequence so that only one decoded image and one
// encoder are alive at a time. If ctx is cancelled between two crops, the
// records gathered so far are returned with the context error.
func (p *Pipeline) CropFacesFromRects(ctx context.Context, src types.Asset, rects []types.Rectangle) ([]types.FaceRecord, error) {
	if len(rects) == 0 {
		return nil, nil
	}

	dims := src.Dimensions()
	faces := make([]types.FaceRecord, 0, len(rects))

	for i, rect := range rects {
		if err := ctx.Err(); err != nil {
			return faces, err
		}

		face := types.FaceRecord{
			ClampedRectangle: bounds.Clamp(rect, dims),
			IsSelected:       false,
			IsHidden:         false,
		}

		crop, err := p.cropper.Crop(ctx, src.URI, face.Rectangle, p.config)
		if err != nil {
			p.logger.Warn("face crop failed, skipping",
				"index", i,
				"uri", src.URI,
				"x", face.X, "y", face.Y, "width", face.Width, "height", face.Height,
				"error", err)
		} else {
			face.Crop = crop
			faces = append(faces, face)
		}

		if p.progress != nil {
			p.progress(i+1, len(rects))
		}
	}

	return faces, nil
}
