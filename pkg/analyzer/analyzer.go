package analyzer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/menta2k/faceblur/pkg/types"
)

// ImageAnalyzer reads source image descriptors without decoding pixel data
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []string
	MinImageSize     int
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []string{"jpeg", "png", "webp"},
			MinImageSize:     16,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// Probe returns the descriptor {uri, width, height} of the image at path.
// Only the header is read.
func (a *ImageAnalyzer) Probe(path string) (types.Asset, error) {
	file, err := os.Open(strings.TrimPrefix(path, "file://"))
	if err != nil {
		return types.Asset{}, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return a.ProbeReader(path, file)
}

// ProbeReader is Probe for an already opened image
func (a *ImageAnalyzer) ProbeReader(uri string, reader io.Reader) (types.Asset, error) {
	cfg, format, err := image.DecodeConfig(reader)
	if err != nil {
		return types.Asset{}, fmt.Errorf("failed to decode image header: %w", err)
	}

	if !a.isFormatSupported(format) {
		return types.Asset{}, fmt.Errorf("unsupported image format: %s", format)
	}

	return types.Asset{URI: uri, Width: cfg.Width, Height: cfg.Height}, nil
}

// DescribeImage returns the descriptor of an already decoded image
func (a *ImageAnalyzer) DescribeImage(uri string, img image.Image) types.Asset {
	bounds := img.Bounds()
	return types.Asset{URI: uri, Width: bounds.Dx(), Height: bounds.Dy()}
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateAsset checks if an image meets minimum requirements
func (a *ImageAnalyzer) ValidateAsset(asset types.Asset) error {
	if asset.Width < a.config.MinImageSize || asset.Height < a.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			asset.Width, asset.Height, a.config.MinImageSize)
	}
	return nil
}
