// Package ollama wraps the Ollama chat API for structured extraction.
//
// Extraction and reconciliation both need schema-constrained JSON from a
// multimodal model; the format field pins the response to a JSON schema
// so the dispatcher can decode it without prompt gymnastics.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"genarrative/internal/config"
	"genarrative/internal/services"
)

const defaultHTTPTimeout = 300 * time.Second

// Client issues structured-output chat requests against an Ollama server.
type Client struct {
	api     *api.Client
	model   string
	baseURL string
}

// Option customizes the client.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// NewClient constructs an Ollama client from backend configuration.
func NewClient(cfg config.Ollama, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ollama", "new client", "parse base url", err)
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	settings := options{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(&settings)
	}

	return &Client{
		api:     api.NewClient(base, settings.httpClient),
		model:   strings.TrimSpace(cfg.Model),
		baseURL: base.String(),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Request describes one structured chat completion.
type Request struct {
	System string
	Prompt string
	// Images are raw attachment bytes for multimodal extraction.
	Images [][]byte
	// Schema constrains the response shape. Required: every call in
	// this system expects decodable JSON back.
	Schema json.RawMessage
}

// ChatStructured runs a chat completion and returns the raw JSON the
// model produced.
func (c *Client) ChatStructured(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", services.Wrap(services.ErrValidation, "ollama", "chat", "prompt required", nil)
	}
	if len(req.Schema) == 0 {
		return "", services.Wrap(services.ErrValidation, "ollama", "chat", "response schema required", nil)
	}

	messages := make([]api.Message, 0, 2)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, api.Message{Role: "system", Content: system})
	}
	userMsg := api.Message{Role: "user", Content: req.Prompt}
	for _, img := range req.Images {
		userMsg.Images = append(userMsg.Images, api.ImageData(img))
	}
	messages = append(messages, userMsg)

	stream := false
	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Format:   req.Schema,
		Options:  map[string]any{"temperature": 0},
	}

	var content strings.Builder
	err := c.api.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrBackendUnavailable, "ollama", "chat",
			fmt.Sprintf("model %s at %s", c.model, c.baseURL), err)
	}

	payload := strings.TrimSpace(content.String())
	if payload == "" {
		return "", services.Wrap(services.ErrMalformedOutput, "ollama", "chat", "empty completion", nil)
	}
	return payload, nil
}

// HealthCheck verifies the server is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.api.Heartbeat(ctx); err != nil {
		return services.Wrap(services.ErrBackendUnavailable, "ollama", "health", c.baseURL, err)
	}
	return nil
}
