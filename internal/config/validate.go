package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBackends(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateBackends() error {
	for _, entry := range []struct {
		name string
		url  string
	}{
		{"backends.ollama.base_url", c.Backends.Ollama.BaseURL},
		{"backends.text.base_url", c.Backends.Text.BaseURL},
		{"backends.image.base_url", c.Backends.Image.BaseURL},
		{"backends.music.base_url", c.Backends.Music.BaseURL},
		{"backends.speech.base_url", c.Backends.Speech.BaseURL},
	} {
		parsed, err := url.Parse(entry.url)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", entry.name, entry.url)
		}
	}
	if strings.TrimSpace(c.Backends.Ollama.Model) == "" {
		return errors.New("backends.ollama.model must be set")
	}
	if strings.TrimSpace(c.Backends.Text.Model) == "" {
		return errors.New("backends.text.model must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
