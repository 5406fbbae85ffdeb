// Package story reconciles between the story and scene layers:
// inferring a story from existing scenes and expanding a story
// blueprint into a full scene.
package story

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"genarrative/internal/logging"
	"genarrative/internal/services"
	"genarrative/internal/services/ollama"
	"genarrative/internal/sis"
)

// StructuredChatter is the slice of the ollama client this package needs.
type StructuredChatter interface {
	ChatStructured(ctx context.Context, req ollama.Request) (string, error)
	Model() string
}

// Service reconciles stories and scenes in both directions: a set of
// scenes becomes a structured story, and one story blueprint becomes a
// full scene.
type Service struct {
	chatter StructuredChatter
	logger  *slog.Logger
	now     func() time.Time
}

// Option customizes the service.
type Option func(*Service)

// WithClock overrides the timestamp source used for document IDs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a story reconciliation service.
func NewService(chatter StructuredChatter, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		chatter: chatter,
		logger:  logging.NewComponentLogger(logger, "story"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InferOptions steers structure inference. Both fields are optional;
// when StoryType is empty the type is inferred from the scenes'
// aggregate signal.
type InferOptions struct {
	StoryType sis.StoryType
	// RoleHints maps scene IDs to roles. Hints are supplied externally
	// because scenes never store story membership themselves; a hint
	// beats the positional assignment for its scene.
	RoleHints map[string]string
}

// Assignment records which structural role a scene was given. The
// caller links scenes into the index with exactly these triples.
type Assignment struct {
	SceneID  string `json:"scene_id"`
	Role     string `json:"role"`
	Position int    `json:"position"`
}

// structurePayload is the flat shape the inference model returns.
type structurePayload struct {
	StoryType string `json:"story_type"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
}

// InferStory derives a StorySIS from an ordered set of existing scenes.
// Scene order is meaningful: positional role assignment follows it.
func (s *Service) InferStory(ctx context.Context, scenes []*sis.SceneSIS, opts InferOptions) (*sis.StorySIS, []Assignment, error) {
	if len(scenes) == 0 {
		return nil, nil, services.Wrap(services.ErrValidation, "story", "infer structure",
			"at least one scene is required", nil)
	}
	for id := range opts.RoleHints {
		if !containsScene(scenes, id) {
			return nil, nil, services.Wrap(services.ErrValidation, "story", "infer structure",
				fmt.Sprintf("role hint for %s names a scene outside the input set", id), nil)
		}
	}

	storyType := opts.StoryType
	title, summary := "", ""
	if storyType == "" {
		inferred, err := s.inferType(ctx, scenes)
		if err != nil {
			return nil, nil, err
		}
		storyType, title, summary = inferred.storyType, inferred.title, inferred.summary
	} else if _, ok := sis.ParseStoryType(string(storyType)); !ok {
		return nil, nil, services.Wrap(services.ErrValidation, "story", "infer structure",
			fmt.Sprintf("unknown story type %q (valid: %v)", storyType, sis.AllStoryTypes()), nil)
	}

	assignments, err := assignRoles(scenes, storyType, opts.RoleHints)
	if err != nil {
		return nil, nil, err
	}

	blueprints := make([]sis.Blueprint, len(scenes))
	for i, scene := range scenes {
		blueprints[i] = sis.Blueprint{
			SceneType: assignments[i].Role,
			Summary:   scene.Summary,
		}
	}

	doc := &sis.StorySIS{
		SISType:   sis.KindStory,
		StoryID:   sis.NewStoryID(s.now()),
		Title:     title,
		Summary:   summary,
		StoryType: storyType,
		Semantics: sis.StorySemantics{
			Common: sis.StoryCommonSemantics{Themes: aggregateThemes(scenes)},
		},
		SceneBlueprints: blueprints,
	}
	if violations := sis.Validate(doc); len(violations) > 0 {
		return nil, nil, services.Wrap(services.ErrSchemaViolation, "story", "infer structure", violations.Summary(), nil)
	}

	s.logger.Info("story inferred",
		logging.String(logging.FieldDocumentID, doc.StoryID),
		logging.String("story_type", string(storyType)),
		logging.Int("scenes", len(scenes)))
	return doc, assignments, nil
}

type inferredStructure struct {
	storyType sis.StoryType
	title     string
	summary   string
}

// inferType asks the backend which structure the scenes follow. An
// "unknown" answer is an ambiguity report, never silently resolved.
func (s *Service) inferType(ctx context.Context, scenes []*sis.SceneSIS) (inferredStructure, error) {
	raw, err := s.chatter.ChatStructured(ctx, ollama.Request{
		System: structureSystemPrompt,
		Prompt: structureUserPrompt(scenes),
		Schema: structureSchema,
	})
	if err != nil {
		return inferredStructure{}, err
	}

	var parsed structurePayload
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return inferredStructure{}, services.Wrap(services.ErrMalformedOutput, "story", "infer type",
			"undecodable structure response", err)
	}
	if parsed.StoryType == "unknown" {
		return inferredStructure{}, services.Wrap(services.ErrMalformedOutput, "story", "infer type",
			fmt.Sprintf("scene signal is ambiguous across %d scenes; supply --story-type", len(scenes)), nil)
	}
	storyType, ok := sis.ParseStoryType(parsed.StoryType)
	if !ok {
		return inferredStructure{}, services.Wrap(services.ErrMalformedOutput, "story", "infer type",
			fmt.Sprintf("backend answered story type %q outside the vocabulary", parsed.StoryType), nil)
	}
	return inferredStructure{
		storyType: storyType,
		title:     strings.TrimSpace(parsed.Title),
		summary:   strings.TrimSpace(parsed.Summary),
	}, nil
}

func structureUserPrompt(scenes []*sis.SceneSIS) string {
	var b strings.Builder
	b.WriteString("Classify the narrative structure of these scenes, in order:\n")
	for i, scene := range scenes {
		fmt.Fprintf(&b, "\nScene %d: %s", i+1, scene.Summary)
		common := scene.Semantics.Common
		if common.Mood != "" {
			fmt.Fprintf(&b, " (mood: %s)", common.Mood)
		}
		if common.Location != "" {
			fmt.Fprintf(&b, " (location: %s)", common.Location)
		}
	}
	return b.String()
}

// assignRoles maps scenes onto the story type's role sequence. A hint
// overrides the positional slot for its scene; everything else follows
// document order.
func assignRoles(scenes []*sis.SceneSIS, storyType sis.StoryType, hints map[string]string) ([]Assignment, error) {
	slots, err := roleSlots(storyType, len(scenes))
	if err != nil {
		return nil, err
	}

	assignments := make([]Assignment, len(scenes))
	for i, scene := range scenes {
		role := slots[i]
		if hinted, ok := hints[scene.SceneID]; ok {
			if !storyType.HasRole(hinted) {
				return nil, services.Wrap(services.ErrRoleVocabularyMismatch, "story", "infer structure",
					fmt.Sprintf("hinted role %q is not defined for story type %q (valid: %v)", hinted, storyType, storyType.RoleSequence()), nil)
			}
			role = hinted
		}
		assignments[i] = Assignment{SceneID: scene.SceneID, Role: role, Position: i + 1}
	}
	return assignments, nil
}

// roleSlots expands a role sequence to cover count scenes. Extra scenes
// fold into the repeatable role; a sequence without one must match the
// scene count exactly.
func roleSlots(storyType sis.StoryType, count int) ([]string, error) {
	info, ok := storyType.Structure()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "story", "infer structure",
			fmt.Sprintf("unknown story type %q", storyType), nil)
	}

	repeatable := -1
	for i, role := range info.Roles {
		if role.Repeatable {
			repeatable = i
			break
		}
	}

	if repeatable < 0 {
		if count != len(info.Roles) {
			return nil, services.Wrap(services.ErrValidation, "story", "infer structure",
				fmt.Sprintf("%d scenes do not fit story type %q with %d fixed roles %v",
					count, storyType, len(info.Roles), storyType.RoleSequence()), nil)
		}
		return storyType.RoleSequence(), nil
	}

	if count < len(info.Roles) {
		return nil, services.Wrap(services.ErrValidation, "story", "infer structure",
			fmt.Sprintf("%d scenes cannot fill the %d roles of story type %q",
				count, len(info.Roles), storyType), nil)
	}
	slots := make([]string, 0, count)
	for i, role := range info.Roles {
		slots = append(slots, role.Name)
		if i == repeatable {
			for extra := 0; extra < count-len(info.Roles); extra++ {
				slots = append(slots, role.Name)
			}
		}
	}
	return slots, nil
}

func aggregateThemes(scenes []*sis.SceneSIS) []string {
	seen := make(map[string]struct{})
	var themes []string
	for _, scene := range scenes {
		mood := strings.TrimSpace(strings.ToLower(scene.Semantics.Common.Mood))
		if mood == "" {
			continue
		}
		if _, ok := seen[mood]; ok {
			continue
		}
		seen[mood] = struct{}{}
		themes = append(themes, mood)
	}
	return themes
}

func containsScene(scenes []*sis.SceneSIS, id string) bool {
	for _, scene := range scenes {
		if scene.SceneID == id {
			return true
		}
	}
	return false
}
