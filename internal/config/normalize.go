package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBackends()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBackends() {
	c.Backends.Ollama.BaseURL = trimBaseURL(c.Backends.Ollama.BaseURL, defaultOllamaBaseURL)
	c.Backends.Text.BaseURL = trimBaseURL(c.Backends.Text.BaseURL, defaultTextBaseURL)
	c.Backends.Image.BaseURL = trimBaseURL(c.Backends.Image.BaseURL, defaultImageBaseURL)
	c.Backends.Music.BaseURL = trimBaseURL(c.Backends.Music.BaseURL, defaultMusicBaseURL)
	c.Backends.Speech.BaseURL = trimBaseURL(c.Backends.Speech.BaseURL, defaultSpeechBaseURL)

	if c.Backends.Ollama.TimeoutSeconds <= 0 {
		c.Backends.Ollama.TimeoutSeconds = defaultOllamaTimeout
	}
	if c.Backends.Text.TimeoutSeconds <= 0 {
		c.Backends.Text.TimeoutSeconds = defaultTextTimeout
	}
	if c.Backends.Image.TimeoutSeconds <= 0 {
		c.Backends.Image.TimeoutSeconds = defaultImageTimeout
	}
	if c.Backends.Music.TimeoutSeconds <= 0 {
		c.Backends.Music.TimeoutSeconds = defaultMusicTimeout
	}
	if c.Backends.Speech.TimeoutSeconds <= 0 {
		c.Backends.Speech.TimeoutSeconds = defaultSpeechTimeout
	}

	if c.Backends.Text.WordCount <= 0 {
		c.Backends.Text.WordCount = defaultTextWordCount
	}
	if c.Backends.Image.Width <= 0 {
		c.Backends.Image.Width = defaultImageWidth
	}
	if c.Backends.Image.Height <= 0 {
		c.Backends.Image.Height = defaultImageHeight
	}
	if c.Backends.Image.Steps <= 0 {
		c.Backends.Image.Steps = defaultImageSteps
	}
	if c.Backends.Music.DurationSeconds <= 0 {
		c.Backends.Music.DurationSeconds = defaultMusicDuration
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxConcurrentGenerations <= 0 {
		c.Workflow.MaxConcurrentGenerations = defaultMaxConcurrentGenerations
	}
	if c.Workflow.RetryAttempts < 0 {
		c.Workflow.RetryAttempts = 0
	}
	if c.Workflow.RetryBaseDelaySeconds <= 0 {
		c.Workflow.RetryBaseDelaySeconds = defaultRetryBaseDelaySeconds
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimBaseURL(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	return strings.TrimSuffix(value, "/")
}
