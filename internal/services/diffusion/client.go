// Package diffusion wraps the Stable Diffusion WebUI txt2img API.
package diffusion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"genarrative/internal/config"
	"genarrative/internal/services"
)

const defaultHTTPTimeout = 300 * time.Second

// Client generates images through the WebUI HTTP API.
type Client struct {
	cfg        config.Diffusion
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a diffusion client from backend configuration.
func NewClient(cfg config.Diffusion, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Request describes one image generation.
type Request struct {
	Prompt         string
	NegativePrompt string
	// Width/Height/Steps override config defaults when positive.
	Width  int
	Height int
	Steps  int
}

type txt2imgRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

// Generate produces one image and returns its raw PNG bytes.
func (c *Client) Generate(ctx context.Context, req Request) ([]byte, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, services.Wrap(services.ErrValidation, "diffusion", "generate", "prompt required", nil)
	}

	payload := txt2imgRequest{
		Prompt:         prompt,
		NegativePrompt: strings.TrimSpace(req.NegativePrompt),
		Width:          c.cfg.Width,
		Height:         c.cfg.Height,
		Steps:          c.cfg.Steps,
	}
	if req.Width > 0 {
		payload.Width = req.Width
	}
	if req.Height > 0 {
		payload.Height = req.Height
	}
	if req.Steps > 0 {
		payload.Steps = req.Steps
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("diffusion request: encode body: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/sdapi/v1/txt2img"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("diffusion request: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrBackendUnavailable, "diffusion", "generate", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrBackendUnavailable, "diffusion", "generate", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrBackendUnavailable, "diffusion", "generate",
			fmt.Sprintf("http %d: %s", resp.StatusCode, summarize(body)), nil)
	}

	var decoded txt2imgResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrMalformedOutput, "diffusion", "generate", "decode response", err)
	}
	if len(decoded.Images) == 0 {
		return nil, services.Wrap(services.ErrMalformedOutput, "diffusion", "generate", "no images in response", nil)
	}

	image, err := base64.StdEncoding.DecodeString(decoded.Images[0])
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedOutput, "diffusion", "generate", "decode image data", err)
	}
	return image, nil
}

func summarize(body []byte) string {
	text := strings.TrimSpace(string(body))
	const limit = 160
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
