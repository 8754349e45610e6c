// Package gemini relays prompts to the Gemini API through the official
// google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

const model = "gemini-1.5-flash"

// ErrNotConfigured means no API key was present at startup. The check happens
// once, in New; Generate never touches the network for an unconfigured client.
var ErrNotConfigured = errors.New("gemini: client not configured")

// GenerationError wraps any provider-side failure.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "gemini: generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type Client struct {
	inner *genai.Client
}

// New builds the client. An empty apiKey yields a degraded client whose
// Generate always returns ErrNotConfigured, so a missing credential downgrades
// the feature instead of failing startup.
func New(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return &Client{}, nil
	}

	inner, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Client{inner: inner}, nil
}

func (c *Client) Configured() bool {
	return c.inner != nil
}

// Generate submits the prompt and returns the produced text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.inner == nil {
		return "", ErrNotConfigured
	}

	resp, err := c.inner.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", &GenerationError{Err: err}
	}

	return resp.Text(), nil
}
