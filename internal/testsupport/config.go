package testsupport

import (
	"path/filepath"
	"testing"

	"genarrative/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithOllamaBaseURL points the structured-output backend at a test server.
func WithOllamaBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Backends.Ollama.BaseURL = url
	}
}

// WithTextBaseURL points the text generation backend at a test server.
func WithTextBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Backends.Text.BaseURL = url
	}
}
