package sis

import (
	"fmt"
	"strings"
)

// ViolationKind classifies a structural violation.
type ViolationKind string

const (
	// ViolationMissing marks a required field that is absent or empty.
	ViolationMissing ViolationKind = "missing"
	// ViolationEnum marks a value outside its enumerated vocabulary.
	ViolationEnum ViolationKind = "enum"
	// ViolationShape marks a nested structure of the wrong shape.
	ViolationShape ViolationKind = "shape"
	// ViolationVocabulary marks a blueprint role outside the story
	// type's fixed role sequence.
	ViolationVocabulary ViolationKind = "vocabulary"
)

// Violation is one field-level problem found by the validator.
type Violation struct {
	Path   string
	Kind   ViolationKind
	Detail string
}

func (v Violation) String() string {
	if v.Detail == "" {
		return fmt.Sprintf("%s: %s", v.Path, v.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", v.Path, v.Kind, v.Detail)
}

// Violations is the full set of problems found in one validation pass.
type Violations []Violation

// Summary joins all violations into a single line for error messages.
func (vs Violations) Summary() string {
	if len(vs) == 0 {
		return ""
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// Validate checks a document of any layer and returns every violation
// found. It never mutates its input and never stops at the first
// problem.
func Validate(doc Document) Violations {
	switch d := doc.(type) {
	case *StorySIS:
		return ValidateStory(d)
	case *SceneSIS:
		return ValidateScene(d)
	case *MediaSIS:
		return ValidateMedia(d)
	default:
		return Violations{{Path: "sis_type", Kind: ViolationShape, Detail: "unknown document layer"}}
	}
}

// ValidateStory checks a Story document, including the blueprint role
// vocabulary invariant.
func ValidateStory(doc *StorySIS) Violations {
	var vs Violations
	if doc == nil {
		return Violations{{Path: "", Kind: ViolationShape, Detail: "document is nil"}}
	}
	if doc.SISType != KindStory {
		vs = append(vs, Violation{Path: "sis_type", Kind: ViolationEnum, Detail: fmt.Sprintf("expected %q, got %q", KindStory, doc.SISType)})
	}
	if strings.TrimSpace(doc.StoryID) == "" {
		vs = append(vs, Violation{Path: "story_id", Kind: ViolationMissing})
	}
	storyType := doc.StoryType
	if strings.TrimSpace(string(storyType)) == "" {
		vs = append(vs, Violation{Path: "story_type", Kind: ViolationMissing})
	} else if _, ok := storyType.Structure(); !ok {
		vs = append(vs, Violation{Path: "story_type", Kind: ViolationEnum, Detail: fmt.Sprintf("unknown story type %q", storyType)})
		storyType = ""
	}
	for i, bp := range doc.SceneBlueprints {
		path := fmt.Sprintf("scene_blueprints[%d]", i)
		if strings.TrimSpace(bp.SceneType) == "" {
			vs = append(vs, Violation{Path: path + ".scene_type", Kind: ViolationMissing})
		} else if storyType != "" && !storyType.HasRole(bp.SceneType) {
			vs = append(vs, Violation{
				Path: path + ".scene_type",
				Kind: ViolationVocabulary,
				Detail: fmt.Sprintf("role %q is not in %s vocabulary %v",
					bp.SceneType, storyType, storyType.RoleSequence()),
			})
		}
		if strings.TrimSpace(bp.Summary) == "" {
			vs = append(vs, Violation{Path: path + ".summary", Kind: ViolationMissing})
		}
	}
	return vs
}

// ValidateScene checks a Scene document.
func ValidateScene(doc *SceneSIS) Violations {
	var vs Violations
	if doc == nil {
		return Violations{{Path: "", Kind: ViolationShape, Detail: "document is nil"}}
	}
	if doc.SISType != KindScene {
		vs = append(vs, Violation{Path: "sis_type", Kind: ViolationEnum, Detail: fmt.Sprintf("expected %q, got %q", KindScene, doc.SISType)})
	}
	if strings.TrimSpace(doc.SceneID) == "" {
		vs = append(vs, Violation{Path: "scene_id", Kind: ViolationMissing})
	}
	if strings.TrimSpace(doc.Summary) == "" {
		vs = append(vs, Violation{Path: "summary", Kind: ViolationMissing})
	}
	vs = append(vs, validateCommon("semantics.common", doc.Semantics.Common)...)
	return vs
}

// ValidateMedia checks a Media document.
func ValidateMedia(doc *MediaSIS) Violations {
	var vs Violations
	if doc == nil {
		return Violations{{Path: "", Kind: ViolationShape, Detail: "document is nil"}}
	}
	if doc.SISType != KindMedia {
		vs = append(vs, Violation{Path: "sis_type", Kind: ViolationEnum, Detail: fmt.Sprintf("expected %q, got %q", KindMedia, doc.SISType)})
	}
	if strings.TrimSpace(doc.MediaID) == "" {
		vs = append(vs, Violation{Path: "media_id", Kind: ViolationMissing})
	}
	if strings.TrimSpace(string(doc.MediaType)) == "" {
		vs = append(vs, Violation{Path: "media_type", Kind: ViolationMissing})
	} else if _, ok := ParseMediaType(string(doc.MediaType)); !ok {
		vs = append(vs, Violation{Path: "media_type", Kind: ViolationEnum, Detail: fmt.Sprintf("unknown media type %q", doc.MediaType)})
	}
	vs = append(vs, validateCommon("semantics.common", doc.Semantics.Common)...)
	return vs
}

// validateCommon checks the shared semantic core. Characters must be
// present even when empty: an absent list is indistinguishable from a
// fabricated one, so the schema requires the field explicitly.
func validateCommon(path string, common CommonSemantics) Violations {
	var vs Violations
	if common.Characters == nil {
		vs = append(vs, Violation{Path: path + ".characters", Kind: ViolationMissing, Detail: "characters must be present, use [] when none"})
	}
	for i, c := range common.Characters {
		if !c.Described() {
			vs = append(vs, Violation{
				Path:   fmt.Sprintf("%s.characters[%d]", path, i),
				Kind:   ViolationShape,
				Detail: "character has no name, traits, or visual description",
			})
		}
	}
	for i, obj := range common.Objects {
		if strings.TrimSpace(obj.Name) == "" {
			vs = append(vs, Violation{
				Path: fmt.Sprintf("%s.objects[%d].name", path, i),
				Kind: ViolationMissing,
			})
		}
	}
	return vs
}
