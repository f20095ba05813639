package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/faceblur/pkg/geometry"
	"github.com/menta2k/faceblur/pkg/types"
)

// ErrEmptyCrop is returned when a rectangle covers no pixels of the source
var ErrEmptyCrop = errors.New("empty crop rectangle")

// Processor handles image processing operations
type Processor struct {
	httpClient *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LoadImageFromURL downloads and loads an image from a URL
func (p *Processor) LoadImageFromURL(ctx context.Context, imageURL string) (image.Image, error) {
	// Validate URL
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "faceblur/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return p.decodeImageFromBytes(imageData)
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders). EXIF orientation is not applied so
	// pixels match the header dimensions face rectangles are expressed in.
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.Contains(strings.ToLower(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// LoadImageSmart loads an image from a file path, a file:// URI or an http(s) URL
func (p *Processor) LoadImageSmart(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(ctx, source)
	}
	return p.LoadImage(LocalPath(source))
}

// LocalPath strips a file:// scheme from uri
func LocalPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// decodeImageFromBytes decodes an image from byte data with WebP support
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	reader := bytes.NewReader(data)
	if img, _, err := image.Decode(reader); err == nil {
		return img, nil
	}

	reader = bytes.NewReader(data)
	if img, err := webp.Decode(reader); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// PrepareImageForModel converts an image to base64 for sending to vision models
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	data, err := p.EncodeForModel(img, format, maxDim, quality)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// EncodeForModel downsizes img so its long side is at most maxDim and encodes it
func (p *Processor) EncodeForModel(img image.Image, format string, maxDim int, quality int) ([]byte, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// PixelRect rounds a rectangle to whole pixels and intersects it with bounds
func PixelRect(r types.Rectangle, bounds image.Rectangle) image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.Width))
	y1 := int(math.Round(r.Y + r.Height))
	if x1 < x0 || y1 < y0 {
		return image.Rectangle{}
	}
	return image.Rect(x0, y0, x1, y1).Add(bounds.Min).Intersect(bounds)
}

// Crop cuts r out of the image at uri and writes it to cfg.OutputDir using the
// configured format and quality. The source is opened and released within the
// call. The returned asset carries the size of the encoded crop, which can
// differ from r after rounding and intersection with the image bounds.
func (p *Processor) Crop(ctx context.Context, uri string, r types.Rectangle, cfg types.CropConfig) (types.Asset, error) {
	if r.Empty() {
		return types.Asset{}, fmt.Errorf("%w: %gx%g", ErrEmptyCrop, r.Width, r.Height)
	}

	img, err := p.LoadImageSmart(ctx, uri)
	if err != nil {
		return types.Asset{}, fmt.Errorf("failed to load source: %w", err)
	}

	rect := PixelRect(r, img.Bounds())
	if rect.Empty() {
		return types.Asset{}, fmt.Errorf("%w: %v outside %v", ErrEmptyCrop, r, img.Bounds())
	}
	cropped := imaging.Crop(img, rect)

	if err := ctx.Err(); err != nil {
		return types.Asset{}, err
	}

	format := normalizeFormat(cfg.Format)
	dir := cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.Asset{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	out := filepath.Join(dir, fmt.Sprintf("face_%s.%s", uuid.NewString(), format))

	if err := p.SaveImage(cropped, out, format, cfg.Quality, cfg.Lossless); err != nil {
		_ = os.Remove(out)
		return types.Asset{}, fmt.Errorf("failed to encode crop: %w", err)
	}

	b := cropped.Bounds()
	return types.Asset{URI: out, Width: b.Dx(), Height: b.Dy()}, nil
}

func normalizeFormat(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "png"
	case "webp":
		return "webp"
	default:
		return "jpg"
	}
}

// Rotate turns img by degrees, positive meaning clockwise. Only multiples
// of 90 are supported; other values return img unchanged.
func Rotate(img image.Image, degrees int) image.Image {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// PreviewOptions controls RenderPreview
type PreviewOptions struct {
	BlurSigma  float64
	Stroke     int
	Background color.NRGBA
	ShowHidden bool
}

// DefaultPreviewOptions returns a black letterbox with a strong blur
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		BlurSigma:  12,
		Stroke:     2,
		Background: color.NRGBA{0, 0, 0, 255},
	}
}

// RenderPreview draws img contain-fitted into a canvas of the view size,
// blurs every face that is not hidden and outlines each overlay. Selected
// faces are outlined in gold, the rest in green, hidden ones in blue.
func (p *Processor) RenderPreview(img image.Image, view types.Dimensions, faces []types.FaceRecord, opts PreviewOptions) (image.Image, error) {
	b := img.Bounds()
	original := types.Dimensions{Width: float64(b.Dx()), Height: float64(b.Dy())}

	fit, err := geometry.FitDimensions(original, view)
	if err != nil {
		return nil, err
	}
	left, top := fit.Offset(view)

	fw := maxInt(1, int(math.Round(fit.ScaledWidth)))
	fh := maxInt(1, int(math.Round(fit.ScaledHeight)))
	fitted := imaging.Resize(img, fw, fh, imaging.Lanczos)

	placements := make([]types.OverlayPlacement, len(faces))
	for i, face := range faces {
		placement, err := geometry.ProjectToView(original, view, face.Rectangle)
		if err != nil {
			return nil, err
		}
		placements[i] = placement

		if face.IsHidden || face.Empty() || opts.BlurSigma <= 0 {
			continue
		}
		// Placement relative to the fitted image, not the canvas
		region := PixelRect(types.Rectangle{
			X:      placement.OffsetLeft - left,
			Y:      placement.OffsetTop - top,
			Width:  placement.Width,
			Height: placement.Height,
		}, fitted.Bounds())
		if region.Empty() {
			continue
		}
		blurred := imaging.Blur(imaging.Crop(fitted, region), opts.BlurSigma)
		fitted = imaging.Paste(fitted, blurred, region.Min)
	}

	canvas := imaging.New(int(math.Round(view.Width)), int(math.Round(view.Height)), opts.Background)
	origin := image.Pt(int(math.Round(left)), int(math.Round(top)))
	draw.Draw(canvas, fitted.Bounds().Add(origin), fitted, image.Point{}, draw.Over)

	stroke := opts.Stroke
	if stroke <= 0 {
		stroke = 1
	}
	for i, face := range faces {
		if face.IsHidden && !opts.ShowHidden {
			continue
		}
		c := color.NRGBA{0, 255, 0, 255} // visible blur
		switch {
		case face.IsHidden:
			c = color.NRGBA{0, 170, 255, 255}
		case face.IsSelected:
			c = color.NRGBA{255, 204, 0, 255}
		}
		drawRect(canvas, PixelRect(placements[i].Rectangle(), canvas.Bounds()), c, stroke)
	}

	return canvas, nil
}

// Helper functions
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func drawRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	if r.Empty() {
		return
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
