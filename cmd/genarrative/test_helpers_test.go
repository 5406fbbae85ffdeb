package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"genarrative/internal/config"
	"genarrative/internal/sis"
	"genarrative/internal/testsupport"
)

// writeCLIConfig persists a test config so commands can load it through
// the --config flag, and returns its path.
func writeCLIConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func newCLIConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return cfg, writeCLIConfig(t, cfg)
}

// runCLI executes the root command against a fresh command tree so
// per-invocation state never leaks between test cases.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func cliScene(id string) *sis.SceneSIS {
	return &sis.SceneSIS{
		SISType: sis.KindScene,
		SceneID: id,
		Summary: "A courier crosses the flooded bridge at dusk.",
		Semantics: sis.Semantics{
			Common: sis.CommonSemantics{
				Mood:       "urgent",
				Location:   "river bridge",
				Characters: []sis.Character{{Name: "courier", Traits: []string{"soaked", "determined"}}},
			},
		},
	}
}

func cliStory(id string) *sis.StorySIS {
	return &sis.StorySIS{
		SISType:   sis.KindStory,
		StoryID:   id,
		Title:     "The Crossing",
		Summary:   "A courier races the flood to deliver a warning.",
		StoryType: sis.StoryThreeAct,
		Semantics: sis.StorySemantics{
			Common: sis.StoryCommonSemantics{Themes: []string{"duty"}},
		},
		SceneBlueprints: []sis.Blueprint{
			{SceneType: "setup", Summary: "The courier takes the message."},
			{SceneType: "conflict", Summary: "The bridge is flooding."},
			{SceneType: "resolution", Summary: "The warning arrives in time."},
		},
	}
}
