package sis

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the three document layers.
type Kind string

const (
	KindStory Kind = "story"
	KindScene Kind = "scene"
	KindMedia Kind = "media"
)

// MediaType names the modality a Media document expresses.
type MediaType string

const (
	MediaText   MediaType = "text"
	MediaVisual MediaType = "visual"
	MediaAudio  MediaType = "audio"
)

// ParseMediaType converts a string into a known MediaType.
func ParseMediaType(value string) (MediaType, bool) {
	normalized := MediaType(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case MediaText, MediaVisual, MediaAudio:
		return normalized, true
	}
	return "", false
}

// Blueprint is a terse planning record inside a Story. It is a
// generation target, not a full Scene.
type Blueprint struct {
	SceneType string `json:"scene_type"`
	Summary   string `json:"summary"`
}

// StorySIS is the top document layer covering a whole work. It never
// embeds Scene or Media bodies; blueprints are placeholders only.
type StorySIS struct {
	SISType         Kind           `json:"sis_type"`
	StoryID         string         `json:"story_id"`
	Title           string         `json:"title,omitempty"`
	Summary         string         `json:"summary,omitempty"`
	StoryType       StoryType      `json:"story_type"`
	Semantics       StorySemantics `json:"semantics"`
	SceneBlueprints []Blueprint    `json:"scene_blueprints"`
}

// SceneSIS is the middle document layer: one minimal semantic unit.
// It deliberately has no story reference field; cross-layer linkage
// lives in the external index so a scene stays reusable across stories.
type SceneSIS struct {
	SISType   Kind      `json:"sis_type"`
	SceneID   string    `json:"scene_id"`
	Summary   string    `json:"summary"`
	Semantics Semantics `json:"semantics"`
}

// ProvenanceAsset references one input asset used to create a media unit.
type ProvenanceAsset struct {
	AssetID string `json:"asset_id,omitempty"`
	URI     string `json:"uri,omitempty"`
}

// ProvenanceGenerator records which backend produced a media unit.
type ProvenanceGenerator struct {
	System string `json:"system,omitempty"`
	Model  string `json:"model,omitempty"`
}

// Provenance records how a media unit came to exist. It is immutable
// once written; corrections create a new MediaSIS instead.
type Provenance struct {
	Assets    []ProvenanceAsset    `json:"assets,omitempty"`
	Generator *ProvenanceGenerator `json:"generator,omitempty"`
	CreatedAt string               `json:"created_at,omitempty"`
}

// MediaSIS is the bottom document layer: one expression unit in a single
// modality. Only the policy matching MediaType is meaningful; others are
// ignored if present.
type MediaSIS struct {
	SISType    Kind        `json:"sis_type"`
	MediaID    string      `json:"media_id"`
	Summary    string      `json:"summary,omitempty"`
	MediaType  MediaType   `json:"media_type"`
	Semantics  Semantics   `json:"semantics"`
	Provenance *Provenance `json:"provenance,omitempty"`
}

// Document is implemented by the three SIS layers.
type Document interface {
	Kind() Kind
	ID() string
}

// Kind returns KindStory.
func (s *StorySIS) Kind() Kind { return KindStory }

// ID returns the story identifier.
func (s *StorySIS) ID() string { return s.StoryID }

// Kind returns KindScene.
func (s *SceneSIS) Kind() Kind { return KindScene }

// ID returns the scene identifier.
func (s *SceneSIS) ID() string { return s.SceneID }

// Kind returns KindMedia.
func (m *MediaSIS) Kind() Kind { return KindMedia }

// ID returns the media identifier.
func (m *MediaSIS) ID() string { return m.MediaID }

// Decode parses raw JSON into the document layer named by its sis_type
// discriminator.
func Decode(data []byte) (Document, error) {
	var probe struct {
		SISType Kind `json:"sis_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode sis document: %w", err)
	}
	switch probe.SISType {
	case KindStory:
		var doc StorySIS
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode story: %w", err)
		}
		return &doc, nil
	case KindScene:
		var doc SceneSIS
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode scene: %w", err)
		}
		return &doc, nil
	case KindMedia:
		var doc MediaSIS
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode media: %w", err)
		}
		return &doc, nil
	default:
		return nil, fmt.Errorf("decode sis document: unknown sis_type %q", probe.SISType)
	}
}

const idTimeLayout = "20060102_150405.000000"

func newID(prefix string, now time.Time) string {
	stamp := strings.ReplaceAll(now.UTC().Format(idTimeLayout), ".", "_")
	return prefix + "_" + stamp
}

// NewStoryID assigns a story identifier. Identifiers are always
// application-assigned; values returned by a backend are discarded.
func NewStoryID(now time.Time) string { return newID("story", now) }

// NewSceneID assigns a scene identifier.
func NewSceneID(now time.Time) string { return newID("scene", now) }

// NewMediaID assigns a media identifier.
func NewMediaID(now time.Time) string { return newID("media", now) }
