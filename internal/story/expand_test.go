package story_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"genarrative/internal/logging"
	"genarrative/internal/services"
	"genarrative/internal/sis"
	"genarrative/internal/story"
)

func testStory() *sis.StorySIS {
	return &sis.StorySIS{
		SISType:   sis.KindStory,
		StoryID:   "story_20250601_120000_000000",
		Title:     "The Last Keeper",
		StoryType: sis.StoryThreeAct,
		Semantics: sis.StorySemantics{
			Common: sis.StoryCommonSemantics{Themes: []string{"isolation", "duty"}},
			PolicySet: sis.PolicySet{
				Visual: &sis.VisualPolicy{Style: "oil painting"},
			},
		},
		SceneBlueprints: []sis.Blueprint{
			{SceneType: "setup", Summary: "The keeper tends the light alone."},
			{SceneType: "conflict", Summary: "A storm cuts the island off."},
			{SceneType: "resolution", Summary: "Rescue arrives at dawn."},
		},
	}
}

const expandedScene = `{
	"summary": "Wind-driven rain hammers the gallery glass while the keeper wedges the door and counts the seconds between flashes.",
	"mood": "tense",
	"location": "lighthouse gallery",
	"time": "night",
	"weather": "storm",
	"descriptions": ["The lamp flickers with each gust.", "Salt water seeps under the door."],
	"characters": [{"name": "keeper", "traits": ["stubborn"], "visual": {"clothes": "oilskin coat"}}],
	"objects": [{"name": "storm lantern", "colors": ["brass"]}]
}`

func TestExpandBlueprintProducesRicherScene(t *testing.T) {
	chatter := &fakeChatter{response: expandedScene}
	svc := story.NewService(chatter, logging.NewNop(), story.WithClock(fixedClock()))

	expansion, err := svc.ExpandBlueprint(context.Background(), testStory(), 1)
	if err != nil {
		t.Fatalf("ExpandBlueprint: %v", err)
	}
	scene := expansion.Scene
	if !strings.HasPrefix(scene.SceneID, "scene_20250601_") {
		t.Fatalf("scene ID: %q", scene.SceneID)
	}
	if scene.Semantics.Common.Mood != "tense" {
		t.Fatalf("mood: %q", scene.Semantics.Common.Mood)
	}
	if len(scene.Semantics.Common.Descriptions) != 2 {
		t.Fatalf("descriptions: %v", scene.Semantics.Common.Descriptions)
	}
	if !strings.Contains(chatter.lastReq.Prompt, "A storm cuts the island off.") {
		t.Fatalf("blueprint summary missing from prompt:\n%s", chatter.lastReq.Prompt)
	}
	if !strings.Contains(chatter.lastReq.Prompt, "isolation, duty") {
		t.Fatalf("story themes missing from prompt:\n%s", chatter.lastReq.Prompt)
	}
}

func TestExpandBlueprintFillsGapsFromStoryAndReports(t *testing.T) {
	chatter := &fakeChatter{response: `{
		"summary": "The keeper polishes the lens and logs the quiet hours before the season turns.",
		"descriptions": ["Brass fittings gleam in the afternoon light."],
		"characters": [{"name": "keeper", "traits": ["methodical"]}],
		"objects": []
	}`}
	svc := story.NewService(chatter, logging.NewNop(), story.WithClock(fixedClock()))

	expansion, err := svc.ExpandBlueprint(context.Background(), testStory(), 0)
	if err != nil {
		t.Fatalf("ExpandBlueprint: %v", err)
	}
	scene := expansion.Scene
	if scene.Semantics.Common.Mood != "isolation" {
		t.Fatalf("mood should default to the first story theme, got %q", scene.Semantics.Common.Mood)
	}
	if scene.Semantics.Visual == nil || scene.Semantics.Visual.Style != "oil painting" {
		t.Fatalf("visual policy should default from story, got %+v", scene.Semantics.Visual)
	}

	want := map[string]bool{"semantics.common.mood": true, "semantics.visual": true}
	if len(expansion.Defaulted) != len(want) {
		t.Fatalf("defaulted: %v", expansion.Defaulted)
	}
	for _, path := range expansion.Defaulted {
		if !want[path] {
			t.Fatalf("unexpected defaulted path %q in %v", path, expansion.Defaulted)
		}
	}
}

func TestExpandBlueprintRejectsVerbatimSummary(t *testing.T) {
	chatter := &fakeChatter{response: `{
		"summary": "  A STORM cuts   the island off! ",
		"descriptions": [],
		"characters": [],
		"objects": []
	}`}
	svc := story.NewService(chatter, logging.NewNop(), story.WithClock(fixedClock()))

	_, err := svc.ExpandBlueprint(context.Background(), testStory(), 1)
	if !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed output for verbatim copy, got %v", err)
	}
}

func TestExpandBlueprintRejectsVerbatimDescription(t *testing.T) {
	chatter := &fakeChatter{response: `{
		"summary": "The gale isolates the rock for three days and nights.",
		"descriptions": ["A storm cuts the island off."],
		"characters": [],
		"objects": []
	}`}
	svc := story.NewService(chatter, logging.NewNop(), story.WithClock(fixedClock()))

	_, err := svc.ExpandBlueprint(context.Background(), testStory(), 1)
	if !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed output for verbatim description, got %v", err)
	}
}

func TestExpandBlueprintIndexOutOfRange(t *testing.T) {
	svc := story.NewService(&fakeChatter{}, logging.NewNop(), story.WithClock(fixedClock()))

	if _, err := svc.ExpandBlueprint(context.Background(), testStory(), 3); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.ExpandBlueprint(context.Background(), testStory(), -1); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExpandBlueprintOffVocabularyRole(t *testing.T) {
	svc := story.NewService(&fakeChatter{}, logging.NewNop(), story.WithClock(fixedClock()))

	damaged := testStory()
	damaged.SceneBlueprints[1].SceneType = "ten"
	_, err := svc.ExpandBlueprint(context.Background(), damaged, 1)
	if !errors.Is(err, services.ErrRoleVocabularyMismatch) {
		t.Fatalf("expected role vocabulary mismatch, got %v", err)
	}
}

func TestExpandBlueprintUndescribedCharacterRejected(t *testing.T) {
	chatter := &fakeChatter{response: `{
		"summary": "The gale isolates the rock for days.",
		"descriptions": [],
		"characters": [{}],
		"objects": []
	}`}
	svc := story.NewService(chatter, logging.NewNop(), story.WithClock(fixedClock()))

	_, err := svc.ExpandBlueprint(context.Background(), testStory(), 1)
	if !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
}
