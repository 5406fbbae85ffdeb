package generation_test

import (
	"testing"

	"genarrative/internal/generation"
	"genarrative/internal/sis"
)

func TestResolveTextFallsThroughLayerByLayer(t *testing.T) {
	layers := generation.Layers{
		Media: &sis.PolicySet{Text: &sis.TextPolicy{Style: "haiku"}},
		Scene: &sis.PolicySet{Text: &sis.TextPolicy{Style: "noir monologue", Tone: "grim"}},
		Story: &sis.PolicySet{Text: &sis.TextPolicy{Language: "german", Tone: "hopeful"}},
	}

	resolved := generation.ResolveText(layers)
	if resolved.Style != "haiku" {
		t.Fatalf("style: media layer should win, got %q", resolved.Style)
	}
	if resolved.Tone != "grim" {
		t.Fatalf("tone: scene layer should win over story, got %q", resolved.Tone)
	}
	if resolved.Language != "german" {
		t.Fatalf("language: story layer should fill the gap, got %q", resolved.Language)
	}
	if resolved.PointOfView != "third person" {
		t.Fatalf("point of view: expected built-in default, got %q", resolved.PointOfView)
	}
}

func TestResolveTextDefaultsWhenNoLayerSpeaks(t *testing.T) {
	resolved := generation.ResolveText(generation.Layers{})
	want := sis.TextPolicy{
		Style:       "descriptive narrative",
		Language:    "english",
		Tone:        "neutral",
		PointOfView: "third person",
	}
	if resolved != want {
		t.Fatalf("got %+v, want %+v", resolved, want)
	}
}

func TestResolveVisualSkipsNilPolicySets(t *testing.T) {
	layers := generation.Layers{
		Scene: &sis.PolicySet{Audio: &sis.AudioPolicy{Genre: "jazz"}},
		Story: &sis.PolicySet{Visual: &sis.VisualPolicy{Style: "watercolor", Lighting: "candlelight"}},
	}

	resolved := generation.ResolveVisual(layers)
	if resolved.Style != "watercolor" {
		t.Fatalf("style: got %q", resolved.Style)
	}
	if resolved.Lighting != "candlelight" {
		t.Fatalf("lighting: got %q", resolved.Lighting)
	}
	if resolved.Composition != "wide shot" {
		t.Fatalf("composition: expected default, got %q", resolved.Composition)
	}
	if resolved.Perspective != "eye level" {
		t.Fatalf("perspective: expected default, got %q", resolved.Perspective)
	}
}

func TestResolveAudioMoodHasNoDefault(t *testing.T) {
	resolved := generation.ResolveAudio(generation.Layers{})
	if resolved.Mood != "" {
		t.Fatalf("mood should stay empty without a layer, got %q", resolved.Mood)
	}
	if resolved.Genre != "ambient orchestral" || resolved.Tempo != "slow" {
		t.Fatalf("unexpected defaults: %+v", resolved)
	}
	if len(resolved.Instruments) != 2 || resolved.Instruments[0] != "piano" || resolved.Instruments[1] != "strings" {
		t.Fatalf("instruments default: %v", resolved.Instruments)
	}
}

func TestResolveAudioInstrumentsReplaceNotMerge(t *testing.T) {
	layers := generation.Layers{
		Scene: &sis.PolicySet{Audio: &sis.AudioPolicy{Instruments: []string{"theremin"}}},
		Story: &sis.PolicySet{Audio: &sis.AudioPolicy{Instruments: []string{"tuba", "organ"}}},
	}

	resolved := generation.ResolveAudio(layers)
	if len(resolved.Instruments) != 1 || resolved.Instruments[0] != "theremin" {
		t.Fatalf("scene instruments should replace story's entirely, got %v", resolved.Instruments)
	}
}
