package generation_test

import (
	"strings"
	"testing"

	"genarrative/internal/generation"
	"genarrative/internal/sis"
)

func sampleCommon() sis.CommonSemantics {
	return sis.CommonSemantics{
		Mood:     "melancholy",
		Location: "abandoned lighthouse",
		Time:     "dusk",
		Weather:  "fog",
		Characters: []sis.Character{
			{
				Name:   "mara",
				Traits: []string{"weary", "stubborn"},
				Visual: &sis.CharacterVisual{Hair: "grey", Clothes: "oilskin coat"},
			},
		},
		Objects:      []sis.Object{{Name: "lantern", Colors: []string{"brass", "green"}}},
		Descriptions: []string{"Waves hammer the rocks below."},
	}
}

func TestTextPromptCarriesPolicyAndFacts(t *testing.T) {
	policy := sis.TextPolicy{Style: "noir monologue", Language: "english", Tone: "grim", PointOfView: "first person"}
	prompt := generation.TextPrompt(policy, sampleCommon(), "The keeper refuses to leave.")

	for _, want := range []string{
		"noir monologue",
		"grim tone",
		"first person perspective",
		"Scene: The keeper refuses to leave.",
		"abandoned lighthouse, dusk, fog, melancholy atmosphere",
		"Character: Mara, weary, stubborn, grey hair, wearing oilskin coat.",
		"Object: brass and green lantern.",
		"Waves hammer the rocks below.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestVisualPromptLeadsWithPolicyTerms(t *testing.T) {
	policy := sis.VisualPolicy{Style: "oil painting", Composition: "close-up", Lighting: "candlelight", Perspective: "low angle"}
	prompt := generation.VisualPrompt(policy, sampleCommon(), "The keeper refuses to leave.")

	if !strings.HasPrefix(prompt, "oil painting, close-up, candlelight, low angle.") {
		t.Fatalf("visual policy terms must lead the prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Character: Mara") {
		t.Fatalf("prompt missing character facts:\n%s", prompt)
	}
}

func TestAudioPromptComposesDescriptors(t *testing.T) {
	policy := sis.AudioPolicy{Genre: "sea shanty", Tempo: "slow", Instruments: []string{"accordion", "fiddle"}}
	prompt := generation.AudioPrompt(policy, sampleCommon(), "The keeper refuses to leave.")

	want := "sea shanty, slow tempo, featuring accordion, fiddle, melancholy mood, evoking abandoned lighthouse, The keeper refuses to leave."
	if prompt != want {
		t.Fatalf("got %q\nwant %q", prompt, want)
	}
}

func TestAudioPromptPolicyMoodBeatsSceneMood(t *testing.T) {
	policy := sis.AudioPolicy{Genre: "waltz", Tempo: "fast", Mood: "triumphant"}
	prompt := generation.AudioPrompt(policy, sampleCommon(), "")

	if !strings.Contains(prompt, "triumphant mood") {
		t.Fatalf("policy mood should win: %q", prompt)
	}
	if strings.Contains(prompt, "melancholy") {
		t.Fatalf("scene mood should not appear when policy sets one: %q", prompt)
	}
}

func TestNarrationTextVoicesOnlyDocumentContent(t *testing.T) {
	got := generation.NarrationText(sampleCommon(), "The keeper refuses to leave.")
	want := "The keeper refuses to leave. Waves hammer the rocks below."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPromptsAreDeterministic(t *testing.T) {
	common := sampleCommon()
	text := sis.TextPolicy{Style: "ballad", Language: "english", Tone: "wistful", PointOfView: "third person"}
	visual := sis.VisualPolicy{Style: "ink sketch", Composition: "wide shot", Lighting: "moonlight", Perspective: "bird's eye"}
	audio := sis.AudioPolicy{Genre: "drone", Tempo: "glacial"}

	for i := 0; i < 3; i++ {
		if a, b := generation.TextPrompt(text, common, "s"), generation.TextPrompt(text, common, "s"); a != b {
			t.Fatalf("text prompt drifted:\n%s\n%s", a, b)
		}
		if a, b := generation.VisualPrompt(visual, common, "s"), generation.VisualPrompt(visual, common, "s"); a != b {
			t.Fatalf("visual prompt drifted:\n%s\n%s", a, b)
		}
		if a, b := generation.AudioPrompt(audio, common, "s"), generation.AudioPrompt(audio, common, "s"); a != b {
			t.Fatalf("audio prompt drifted:\n%s\n%s", a, b)
		}
	}
}
