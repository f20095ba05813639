package llamacpp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	defaultServerURL = "http://localhost:8080"
	// llama-server accepts any key unless started with --api-key
	defaultAPIKey = "sk-no-key-required"
)

// Client talks to a llama.cpp server through its OpenAI-compatible API
type Client struct {
	client  *openai.Client
	baseURL string
}

// NewClient creates a client for the llama.cpp server at serverURL. apiKey
// may be empty.
func NewClient(serverURL, apiKey string) (*Client, error) {
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	parsed, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid llama.cpp URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid llama.cpp URL scheme %q: must be http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid llama.cpp URL: missing host")
	}
	if apiKey == "" {
		apiKey = defaultAPIKey
	}

	baseURL := parsed.Scheme + "://" + parsed.Host + "/v1/"
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	)

	return &Client{client: &client, baseURL: baseURL}, nil
}

// BaseURL returns the OpenAI-compatible endpoint root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SimpleQuery asks a free-form question about the image
func (c *Client) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    buildMessages(prompt, imgB64),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2048),
	})
}

// LocateFaces sends the face-locating prompt in JSON mode and returns the raw reply
func (c *Client) LocateFaces(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    buildMessages(prompt, imgB64),
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(1024),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
}

func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llama.cpp API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from llama.cpp")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", errors.New("empty response from llama.cpp")
	}
	return content, nil
}

func buildMessages(prompt, imgB64 string) []openai.ChatCompletionMessageParamUnion {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
	}
	if imgB64 != "" {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: "data:image/jpeg;base64," + imgB64,
		}))
	}

	return []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: parts,
				},
			},
		},
	}
}
