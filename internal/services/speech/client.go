// Package speech wraps a Coqui-style TTS HTTP service.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"genarrative/internal/config"
	"genarrative/internal/services"
)

const defaultHTTPTimeout = 120 * time.Second

// Client synthesizes narration through the TTS API.
type Client struct {
	cfg        config.Speech
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

// NewClient constructs a speech client from backend configuration.
func NewClient(cfg config.Speech, opts ...Option) *Client {
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

// Synthesize renders the text as speech and returns raw WAV bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "speech", "synthesize", "text required", nil)
	}

	endpoint := c.cfg.BaseURL + "/api/tts?text=" + url.QueryEscape(text)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("speech request: new request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrBackendUnavailable, "speech", "synthesize", c.cfg.BaseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrBackendUnavailable, "speech", "synthesize", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrBackendUnavailable, "speech", "synthesize",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	if !isWAV(body) {
		return nil, services.Wrap(services.ErrMalformedOutput, "speech", "synthesize", "response is not WAV audio", nil)
	}
	return body, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}
