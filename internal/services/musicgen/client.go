// Package musicgen wraps the MusicGen HTTP service.
package musicgen

import (
	"bytes"
	"context"
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

// Client generates music clips through the MusicGen API.
type Client struct {
	cfg        config.MusicGen
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

// NewClient constructs a music client from backend configuration.
func NewClient(cfg config.MusicGen, opts ...Option) *Client {
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

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration"`
}

// Generate produces one music clip and returns its raw WAV bytes.
// A non-positive duration falls back to the configured default.
func (c *Client) Generate(ctx context.Context, prompt string, durationSeconds int) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, services.Wrap(services.ErrValidation, "musicgen", "generate", "prompt required", nil)
	}
	if durationSeconds <= 0 {
		durationSeconds = c.cfg.DurationSeconds
	}

	encoded, err := json.Marshal(generateRequest{Prompt: prompt, Duration: durationSeconds})
	if err != nil {
		return nil, fmt.Errorf("musicgen request: encode body: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("musicgen request: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrBackendUnavailable, "musicgen", "generate", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrBackendUnavailable, "musicgen", "generate", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrBackendUnavailable, "musicgen", "generate",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	if !isWAV(body) {
		return nil, services.Wrap(services.ErrMalformedOutput, "musicgen", "generate", "response is not WAV audio", nil)
	}
	return body, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}
