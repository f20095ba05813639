package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/menta2k/faceblur/pkg/analyzer"
	"github.com/menta2k/faceblur/pkg/processing"
	"github.com/menta2k/faceblur/pkg/types"
)

// parseSize parses "WxH" into view dimensions
func parseSize(s string) (types.Dimensions, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return types.Dimensions{}, fmt.Errorf("invalid size %q: want WxH", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return types.Dimensions{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return types.Dimensions{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	d := types.Dimensions{Width: width, Height: height}
	if !d.Valid() {
		return types.Dimensions{}, fmt.Errorf("invalid size %q: both sides must be positive", s)
	}
	return d, nil
}

// parsePoint parses "X,Y" into a view-space point
func parsePoint(s string) (types.Point, error) {
	x, y, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return types.Point{}, fmt.Errorf("invalid point %q: want X,Y", s)
	}
	px, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	py, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return types.Point{X: px, Y: py}, nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// probeSource returns the descriptor of the source image. Local files are
// probed from their header only.
func probeSource(ctx context.Context, p *processing.Processor, src string) (types.Asset, error) {
	a := analyzer.NewWithConfig(analyzer.Config{
		SupportedFormats: cfg.Analyzer.SupportedFormats,
		MinImageSize:     cfg.Analyzer.MinImageSize,
	})

	var asset types.Asset
	if isRemote(src) {
		img, err := p.LoadImageFromURL(ctx, src)
		if err != nil {
			return types.Asset{}, err
		}
		asset = a.DescribeImage(src, img)
	} else {
		var err error
		asset, err = a.Probe(src)
		if err != nil {
			return types.Asset{}, err
		}
	}

	if err := a.ValidateAsset(asset); err != nil {
		return types.Asset{}, err
	}
	return asset, nil
}

// loadSource decodes the full source image and returns it with its descriptor
func loadSource(ctx context.Context, p *processing.Processor, src string) (image.Image, types.Asset, error) {
	img, err := p.LoadImageSmart(ctx, src)
	if err != nil {
		return nil, types.Asset{}, fmt.Errorf("failed to load image: %w", err)
	}
	bounds := img.Bounds()
	return img, types.Asset{URI: src, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// readFaces loads face records written by the crop command
func readFaces(path string) ([]types.FaceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read faces file: %w", err)
	}
	var faces []types.FaceRecord
	if err := json.Unmarshal(data, &faces); err != nil {
		return nil, fmt.Errorf("failed to parse faces file: %w", err)
	}
	return faces, nil
}

// writeFaces stores face records in the format readFaces expects
func writeFaces(path string, faces []types.FaceRecord) error {
	data, err := json.MarshalIndent(faces, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
