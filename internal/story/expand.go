package story

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"genarrative/internal/logging"
	"genarrative/internal/services"
	"genarrative/internal/services/ollama"
	"genarrative/internal/sis"
)

// Expansion is the result of turning one blueprint into a scene.
// Defaulted lists the field paths fallback completion filled from the
// story, so a caller can show the operator what the model left out.
type Expansion struct {
	Scene     *sis.SceneSIS `json:"scene"`
	Defaulted []string      `json:"defaulted,omitempty"`
}

// scenePayload is the flat shape the expansion model returns.
type scenePayload struct {
	Summary      string           `json:"summary"`
	Mood         string           `json:"mood"`
	Location     string           `json:"location"`
	Time         string           `json:"time"`
	Weather      string           `json:"weather"`
	Descriptions []string         `json:"descriptions"`
	Characters   *[]sis.Character `json:"characters"`
	Objects      []sis.Object     `json:"objects"`
}

// ExpandBlueprint synthesizes a full SceneSIS from one blueprint entry.
// Blueprints are terse design notes; a scene that merely echoes the
// blueprint wording is rejected rather than stored.
func (s *Service) ExpandBlueprint(ctx context.Context, story *sis.StorySIS, index int) (*Expansion, error) {
	if story == nil {
		return nil, services.Wrap(services.ErrValidation, "story", "expand blueprint", "story document is nil", nil)
	}
	if index < 0 || index >= len(story.SceneBlueprints) {
		return nil, services.Wrap(services.ErrValidation, "story", "expand blueprint",
			fmt.Sprintf("blueprint index %d out of range [0, %d)", index, len(story.SceneBlueprints)), nil)
	}
	blueprint := story.SceneBlueprints[index]
	if !story.StoryType.HasRole(blueprint.SceneType) {
		return nil, services.Wrap(services.ErrRoleVocabularyMismatch, "story", "expand blueprint",
			fmt.Sprintf("blueprint role %q is not defined for story type %q (valid: %v)",
				blueprint.SceneType, story.StoryType, story.StoryType.RoleSequence()), nil)
	}

	raw, err := s.chatter.ChatStructured(ctx, ollama.Request{
		System: expansionSystemPrompt,
		Prompt: expansionUserPrompt(story, blueprint),
		Schema: expansionSchema,
	})
	if err != nil {
		return nil, err
	}
	var parsed scenePayload
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, services.Wrap(services.ErrMalformedOutput, "story", "expand blueprint",
			"undecodable expansion response", err)
	}

	scene, err := s.sceneFromPayload(parsed, blueprint)
	if err != nil {
		return nil, err
	}
	defaulted := completeFromStory(scene, story)

	if violations := sis.Validate(scene); len(violations) > 0 {
		return nil, services.Wrap(services.ErrSchemaViolation, "story", "expand blueprint", violations.Summary(), nil)
	}

	s.logger.Info("blueprint expanded",
		logging.String(logging.FieldDocumentID, scene.SceneID),
		logging.String("role", blueprint.SceneType),
		logging.Int("defaulted", len(defaulted)))
	return &Expansion{Scene: scene, Defaulted: defaulted}, nil
}

func expansionUserPrompt(story *sis.StorySIS, blueprint sis.Blueprint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Story type: %s.", story.StoryType)
	if story.Title != "" {
		fmt.Fprintf(&b, " Story title: %s.", story.Title)
	}
	if story.Summary != "" {
		fmt.Fprintf(&b, " Story summary: %s", story.Summary)
	}
	if themes := story.Semantics.Common.Themes; len(themes) > 0 {
		fmt.Fprintf(&b, " Themes: %s.", strings.Join(themes, ", "))
	}
	fmt.Fprintf(&b, "\n\nExpand this %q blueprint into a full scene: %s", blueprint.SceneType, blueprint.Summary)
	return b.String()
}

func (s *Service) sceneFromPayload(parsed scenePayload, blueprint sis.Blueprint) (*sis.SceneSIS, error) {
	if parsed.Characters == nil {
		return nil, services.Wrap(services.ErrMalformedOutput, "story", "expand blueprint",
			"response omitted the characters list; absence must be an explicit empty list", nil)
	}
	characters := make([]sis.Character, 0, len(*parsed.Characters))
	for i, ch := range *parsed.Characters {
		if !ch.Described() {
			return nil, services.Wrap(services.ErrMalformedOutput, "story", "expand blueprint",
				fmt.Sprintf("characters[%d] has no name, traits, or visual detail", i), nil)
		}
		characters = append(characters, ch)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		return nil, services.Wrap(services.ErrMalformedOutput, "story", "expand blueprint",
			"response missing summary", nil)
	}
	if err := rejectVerbatim(summary, parsed.Descriptions, blueprint.Summary); err != nil {
		return nil, err
	}

	return &sis.SceneSIS{
		SISType: sis.KindScene,
		SceneID: sis.NewSceneID(s.now()),
		Summary: summary,
		Semantics: sis.Semantics{
			Common: sis.CommonSemantics{
				Mood:         strings.TrimSpace(parsed.Mood),
				Descriptions: parsed.Descriptions,
				Location:     strings.TrimSpace(parsed.Location),
				Time:         strings.TrimSpace(parsed.Time),
				Weather:      strings.TrimSpace(parsed.Weather),
				Characters:   characters,
				Objects:      parsed.Objects,
			},
		},
	}, nil
}

// rejectVerbatim flags a scene whose prose is the blueprint line again.
// Comparison is on normalized strings so trivial case or whitespace
// changes do not slip past.
func rejectVerbatim(summary string, descriptions []string, blueprintSummary string) error {
	target := normalizeProse(blueprintSummary)
	if target == "" {
		return nil
	}
	if normalizeProse(summary) == target {
		return services.Wrap(services.ErrMalformedOutput, "story", "expand blueprint",
			"scene summary is a verbatim copy of the blueprint", nil)
	}
	for i, desc := range descriptions {
		if normalizeProse(desc) == target {
			return services.Wrap(services.ErrMalformedOutput, "story", "expand blueprint",
				fmt.Sprintf("descriptions[%d] is a verbatim copy of the blueprint", i), nil)
		}
	}
	return nil
}

func normalizeProse(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".!? ")
	return strings.Join(strings.Fields(s), " ")
}

// completeFromStory fills scene gaps from story-level defaults and
// reports which paths were filled.
func completeFromStory(scene *sis.SceneSIS, story *sis.StorySIS) []string {
	var defaulted []string
	if scene.Semantics.Common.Mood == "" && len(story.Semantics.Common.Themes) > 0 {
		scene.Semantics.Common.Mood = story.Semantics.Common.Themes[0]
		defaulted = append(defaulted, "semantics.common.mood")
	}
	if scene.Semantics.Text == nil && story.Semantics.Text != nil {
		policy := *story.Semantics.Text
		scene.Semantics.Text = &policy
		defaulted = append(defaulted, "semantics.text")
	}
	if scene.Semantics.Visual == nil && story.Semantics.Visual != nil {
		policy := *story.Semantics.Visual
		scene.Semantics.Visual = &policy
		defaulted = append(defaulted, "semantics.visual")
	}
	if scene.Semantics.Audio == nil && story.Semantics.Audio != nil {
		policy := *story.Semantics.Audio
		scene.Semantics.Audio = &policy
		defaulted = append(defaulted, "semantics.audio")
	}
	return defaulted
}
