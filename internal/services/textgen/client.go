// Package textgen wraps an OpenAI-compatible chat completion endpoint
// for prose generation. Local Ollama serves the same API surface, so
// the backend swaps between local and hosted models by base URL alone.
package textgen

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"genarrative/internal/config"
	"genarrative/internal/services"
)

const defaultHTTPTimeout = 300 * time.Second

// Client generates prose through the chat completion API.
type Client struct {
	api   *openai.Client
	model string
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

// NewClient constructs a text generation client from backend configuration.
func NewClient(cfg config.TextGen, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	settings := options{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(&settings)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		// Local OpenAI-compatible servers ignore the key but the SDK
		// requires a non-empty value.
		apiKey = "none"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	clientCfg.HTTPClient = settings.httpClient

	return &Client{
		api:   openai.NewClientWithConfig(clientCfg),
		model: strings.TrimSpace(cfg.Model),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete runs one chat completion and returns the generated prose.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", services.Wrap(services.ErrValidation, "textgen", "complete", "user prompt required", nil)
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrBackendUnavailable, "textgen", "complete", "model "+c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrMalformedOutput, "textgen", "complete", "empty choices", nil)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", services.Wrap(services.ErrMalformedOutput, "textgen", "complete", "empty completion", nil)
	}
	return content, nil
}
