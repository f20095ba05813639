package client

import (
	"context"
)

// VisionClient is a vision-model backend able to look at an image.
// LocateFaces asks for a JSON reply and returns the raw model text.
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	LocateFaces(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
