package capability

import (
	"context"
	"fmt"
	"strings"

	"genarrative/internal/sis"
)

// Modality names one generation capability. Music and speech are both
// audio media but separate capabilities with separate backends.
type Modality string

const (
	ModalityText   Modality = "text"
	ModalityImage  Modality = "image"
	ModalityMusic  Modality = "music"
	ModalitySpeech Modality = "speech"
)

// AllModalities lists every capability in dispatch order.
func AllModalities() []Modality {
	return []Modality{ModalityText, ModalityImage, ModalityMusic, ModalitySpeech}
}

// ParseModality converts a string into a known Modality.
func ParseModality(value string) (Modality, error) {
	normalized := Modality(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ModalityText, ModalityImage, ModalityMusic, ModalitySpeech:
		return normalized, nil
	}
	return "", fmt.Errorf("unknown modality %q", value)
}

// MediaType maps the capability onto the SIS media taxonomy.
func (m Modality) MediaType() sis.MediaType {
	switch m {
	case ModalityText:
		return sis.MediaText
	case ModalityImage:
		return sis.MediaVisual
	case ModalityMusic, ModalitySpeech:
		return sis.MediaAudio
	}
	return ""
}

// Request is the uniform generation input. Fields outside a modality's
// concern are ignored by its adapter.
type Request struct {
	// Prompt is the fully resolved prompt; adapters never consult SIS
	// documents themselves.
	Prompt string
	// NegativePrompt applies to image generation only.
	NegativePrompt string
	// Width and Height apply to image generation only; zero keeps the
	// backend's configured defaults.
	Width  int
	Height int
	// DurationSeconds applies to music generation only.
	DurationSeconds int
	// WordCount is the target prose length for text generation.
	WordCount int
}

// Result is the uniform generation output.
type Result struct {
	// Data holds the raw artifact bytes.
	Data []byte
	// MIMEType describes Data (text/plain, image/png, audio/wav).
	MIMEType string
	// Extension is the artifact file extension including the dot.
	Extension string
	// Generator records which backend produced the artifact.
	Generator sis.ProvenanceGenerator
}

// Adapter is implemented once per modality.
type Adapter interface {
	Modality() Modality
	Generate(ctx context.Context, req Request) (*Result, error)
}
