package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genarrative/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "genarrative")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "genarrative", "library") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Backends.Ollama.BaseURL != "http://localhost:11434" {
		t.Fatalf("unexpected ollama base url: %q", cfg.Backends.Ollama.BaseURL)
	}
	if cfg.Backends.Image.Width != 1024 || cfg.Backends.Image.Height != 768 {
		t.Fatalf("unexpected image size: %dx%d", cfg.Backends.Image.Width, cfg.Backends.Image.Height)
	}
	if cfg.Workflow.MaxConcurrentGenerations != 4 {
		t.Fatalf("unexpected concurrency default: %d", cfg.Workflow.MaxConcurrentGenerations)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadExplicitFileOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "~/sis-data"`,
		"",
		"[backends.music]",
		`base_url = "http://music.internal:5003/"`,
		"duration_seconds = 12",
		"",
		"[workflow]",
		"max_concurrent_generations = 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "sis-data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Backends.Music.BaseURL != "http://music.internal:5003" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.Backends.Music.BaseURL)
	}
	if cfg.Backends.Music.DurationSeconds != 12 {
		t.Fatalf("unexpected music duration: %d", cfg.Backends.Music.DurationSeconds)
	}
	if cfg.Workflow.MaxConcurrentGenerations != 2 {
		t.Fatalf("unexpected concurrency: %d", cfg.Workflow.MaxConcurrentGenerations)
	}
	// Untouched sections keep defaults.
	if cfg.Backends.Text.Model != config.Default().Backends.Text.Model {
		t.Fatalf("unexpected text model: %q", cfg.Backends.Text.Model)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bad base url",
			content: "[backends.image]\nbase_url = \"not-a-url\"",
			want:    "backends.image.base_url",
		},
		{
			name:    "bad log format",
			content: "[logging]\nformat = \"xml\"",
			want:    "logging.format",
		},
		{
			name:    "bad log level",
			content: "[logging]\nlevel = \"verbose\"",
			want:    "logging.level",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestLoadAppliesFloorsToNonPositiveValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	content := strings.Join([]string{
		"[backends.image]",
		"width = 0",
		"steps = -5",
		"",
		"[backends.music]",
		"duration_seconds = 0",
		"",
		"[workflow]",
		"max_concurrent_generations = -1",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backends.Image.Width != 1024 {
		t.Fatalf("expected width floor, got %d", cfg.Backends.Image.Width)
	}
	if cfg.Backends.Image.Steps != 20 {
		t.Fatalf("expected steps floor, got %d", cfg.Backends.Image.Steps)
	}
	if cfg.Backends.Music.DurationSeconds != 30 {
		t.Fatalf("expected duration floor, got %d", cfg.Backends.Music.DurationSeconds)
	}
	if cfg.Workflow.MaxConcurrentGenerations != 4 {
		t.Fatalf("expected concurrency fallback, got %d", cfg.Workflow.MaxConcurrentGenerations)
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[backends.ollama]") {
		t.Fatal("sample config missing backends.ollama section")
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}
