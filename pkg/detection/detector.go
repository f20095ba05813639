package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/menta2k/faceblur/pkg/client"
	"github.com/menta2k/faceblur/pkg/types"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks the model for every human face in the image
const DefaultPrompt = `You are a face locator.

Return JSON only:
{
  "faces": [
    {"confidence": 0.0, "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}}
  ]
}

HARD RULES
- One entry per visible human face, including partial and profile faces.
- All coordinates are normalized to [0,1] (NOT pixels). x,y is the top-left corner.
- The box should tightly include the face from hairline to chin.
- Do not describe or identify anyone.
- If there are no faces, return {"faces": []}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// DefaultMinConfidence drops boxes the model is unsure about
const DefaultMinConfidence = 0.3

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLine     = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// Detector locates faces using a vision model
type Detector struct {
	client        client.VisionClient
	prompt        string
	minConfidence float64
}

// NewDetector creates a new detector with a vision client
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{
		client:        client,
		prompt:        DefaultPrompt,
		minConfidence: DefaultMinConfidence,
	}
}

// SetPrompt replaces the face-locating prompt
func (d *Detector) SetPrompt(prompt string) {
	if prompt != "" {
		d.prompt = prompt
	}
}

// SetMinConfidence sets the threshold below which boxes are discarded
func (d *Detector) SetMinConfidence(v float64) {
	d.minConfidence = clamp(v, 0, 1)
}

// Locate asks the model for faces and returns them as pixel rectangles of
// an image of size dims.
func (d *Detector) Locate(ctx context.Context, model, imageB64 string, dims types.Dimensions) ([]types.Rectangle, error) {
	if !dims.Valid() {
		return nil, fmt.Errorf("invalid image dimensions %vx%v", dims.Width, dims.Height)
	}

	raw, err := d.client.LocateFaces(ctx, model, d.prompt, imageB64)
	if err != nil {
		return nil, err
	}

	result := ParseFaces(raw)
	rects := make([]types.Rectangle, 0, len(result.Faces))
	for _, f := range result.Faces {
		if f.Confidence < d.minConfidence {
			continue
		}
		box := normalizeBox(f.Box, dims)
		if box.W <= 0 || box.H <= 0 {
			continue
		}
		rects = append(rects, box.ToRectangle(dims))
	}
	return rects, nil
}

// DetectFaces runs Locate and serializes the rectangles into the face data
// format accepted by the crop pipeline.
func (d *Detector) DetectFaces(ctx context.Context, model, imageB64 string, dims types.Dimensions) (string, error) {
	rects, err := d.Locate(ctx, model, imageB64, dims)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(rects)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// TestVision tests if the model can actually see the image with a simple prompt
func (d *Detector) TestVision(ctx context.Context, model, imageB64 string) (string, error) {
	return d.client.SimpleQuery(ctx, model, SimpleTestPrompt, imageB64)
}

// ParseFaces decodes a model reply. Replies that cannot be parsed yield no
// faces. A bare array of faces is accepted too.
func ParseFaces(raw string) types.DetectionResult {
	raw = sanitizeModelJSON(raw)

	var result types.DetectionResult
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &result.Faces); err != nil {
			return types.DetectionResult{}
		}
		return result
	}

	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return types.DetectionResult{}
	}
	return result
}

// sanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reLine.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost object or array
	openCh, closeCh := "{", "}"
	if a, o := strings.Index(raw, "["), strings.Index(raw, "{"); a >= 0 && (o < 0 || a < o) {
		openCh, closeCh = "[", "]"
	}
	if start := strings.Index(raw, openCh); start >= 0 {
		if end := strings.LastIndex(raw, closeCh); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeBox ensures box coordinates are within [0,1] bounds. Models
// sometimes answer in pixels; any value above 1 is taken as such.
func normalizeBox(b types.Box, d types.Dimensions) types.Box {
	if b.X > 1 || b.Y > 1 || b.W > 1 || b.H > 1 {
		b = types.Box{
			X: b.X / d.Width,
			Y: b.Y / d.Height,
			W: b.W / d.Width,
			H: b.H / d.Height,
		}
	}

	x := clamp(b.X, 0, 1)
	y := clamp(b.Y, 0, 1)
	return types.Box{
		X: x,
		Y: y,
		W: clamp(b.W, 0, 1-x),
		H: clamp(b.H, 0, 1-y),
	}
}
