package extraction

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

// StructuredChatter is the slice of the ollama client the dispatcher needs.
type StructuredChatter interface {
	ChatStructured(ctx context.Context, req ollama.Request) (string, error)
	Model() string
}

// Dispatcher routes raw content to the extraction backend and
// normalizes the result into SIS documents.
type Dispatcher struct {
	chatter StructuredChatter
	logger  *slog.Logger
	now     func() time.Time
}

// Option customizes the dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the timestamp source used for document IDs.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher wires an extraction dispatcher.
func NewDispatcher(chatter StructuredChatter, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		chatter: chatter,
		logger:  logging.NewComponentLogger(logger, "extractor"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// payload is the flat shape the model returns.
type payload struct {
	Summary      string           `json:"summary"`
	Mood         string           `json:"mood"`
	Location     string           `json:"location"`
	Time         string           `json:"time"`
	Weather      string           `json:"weather"`
	Descriptions []string         `json:"descriptions"`
	Characters   *[]sis.Character `json:"characters"`
	Objects      []sis.Object     `json:"objects"`
}

// ExtractScene builds a SceneSIS from raw content. An empty declared
// kind triggers signature sniffing.
func (d *Dispatcher) ExtractScene(ctx context.Context, content []byte, declared ContentKind) (*sis.SceneSIS, error) {
	kind, semantics, summary, err := d.extract(ctx, content, declared)
	if err != nil {
		return nil, err
	}

	scene := &sis.SceneSIS{
		SISType:   sis.KindScene,
		SceneID:   sis.NewSceneID(d.now()),
		Summary:   summary,
		Semantics: *semantics,
	}
	if violations := sis.Validate(scene); len(violations) > 0 {
		return nil, services.Wrap(services.ErrSchemaViolation, "extractor", "extract scene", violations.Summary(), nil)
	}

	d.logger.Info("scene extracted",
		logging.String(logging.FieldDocumentID, scene.SceneID),
		logging.String("content_kind", string(kind)),
		logging.Int("characters", len(scene.Semantics.Common.Characters)))
	return scene, nil
}

// ExtractMedia builds a MediaSIS from a single asset. The sourceURI is
// recorded as provenance so the unit stays traceable to its input.
func (d *Dispatcher) ExtractMedia(ctx context.Context, content []byte, declared ContentKind, sourceURI string) (*sis.MediaSIS, error) {
	kind, semantics, summary, err := d.extract(ctx, content, declared)
	if err != nil {
		return nil, err
	}

	media := &sis.MediaSIS{
		SISType:   sis.KindMedia,
		MediaID:   sis.NewMediaID(d.now()),
		Summary:   summary,
		MediaType: kind.mediaType(),
		Semantics: *semantics,
		Provenance: &sis.Provenance{
			Assets:    []sis.ProvenanceAsset{{URI: sourceURI}},
			CreatedAt: d.now().UTC().Format(time.RFC3339),
		},
	}
	if violations := sis.Validate(media); len(violations) > 0 {
		return nil, services.Wrap(services.ErrSchemaViolation, "extractor", "extract media", violations.Summary(), nil)
	}

	d.logger.Info("media extracted",
		logging.String(logging.FieldDocumentID, media.MediaID),
		logging.String("content_kind", string(kind)))
	return media, nil
}

// SourceMedia mints the media document for the asset a scene was just
// extracted from. The scene's summary and semantics carry over
// unchanged, so no second backend call is made; only the media typing
// and provenance are specific to the asset.
func (d *Dispatcher) SourceMedia(scene *sis.SceneSIS, content []byte, declared ContentKind, sourceURI string) (*sis.MediaSIS, error) {
	kind, err := resolveKind(content, declared)
	if err != nil {
		return nil, err
	}

	media := &sis.MediaSIS{
		SISType:   sis.KindMedia,
		MediaID:   sis.NewMediaID(d.now()),
		Summary:   scene.Summary,
		MediaType: kind.mediaType(),
		Semantics: scene.Semantics,
		Provenance: &sis.Provenance{
			Assets:    []sis.ProvenanceAsset{{URI: sourceURI}},
			CreatedAt: d.now().UTC().Format(time.RFC3339),
		},
	}
	if violations := sis.Validate(media); len(violations) > 0 {
		return nil, services.Wrap(services.ErrSchemaViolation, "extractor", "source media", violations.Summary(), nil)
	}

	d.logger.Info("source media minted",
		logging.String(logging.FieldDocumentID, media.MediaID),
		logging.String("content_kind", string(kind)))
	return media, nil
}

func (d *Dispatcher) extract(ctx context.Context, content []byte, declared ContentKind) (ContentKind, *sis.Semantics, string, error) {
	kind, err := resolveKind(content, declared)
	if err != nil {
		return "", nil, "", err
	}

	var parsed payload
	switch kind {
	case KindAudio:
		// No listening backend is wired; audio yields a deterministic
		// technical skeleton the operator promotes by hand.
		parsed = audioSkeleton(content)
	default:
		raw, err := d.invokeModel(ctx, content, kind)
		if err != nil {
			return "", nil, "", err
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return "", nil, "", services.Wrap(services.ErrMalformedOutput, "extractor", "decode response",
				fmt.Sprintf("kind %s", kind), err)
		}
	}

	semantics, summary, err := d.normalize(parsed, kind)
	if err != nil {
		return "", nil, "", err
	}
	return kind, semantics, summary, nil
}

// resolveKind sniffs the content signature and reconciles it with the
// declared kind. The signature is authoritative: a declaration that
// contradicts it means the content is mislabeled, and guessing which
// side is right would hand the wrong bytes to a backend.
func resolveKind(content []byte, declared ContentKind) (ContentKind, error) {
	sniffed, err := SniffKind(content)
	if err != nil {
		return "", err
	}
	if declared == "" {
		return sniffed, nil
	}
	parsed, err := ParseContentKind(string(declared))
	if err != nil {
		return "", err
	}
	if parsed != sniffed {
		return "", services.Wrap(services.ErrUnknownContentKind, "extractor", "resolve kind",
			fmt.Sprintf("declared kind %s contradicts the content's %s signature", parsed, sniffed), nil)
	}
	return parsed, nil
}

func (d *Dispatcher) invokeModel(ctx context.Context, content []byte, kind ContentKind) (string, error) {
	req := ollama.Request{
		System: extractionSystemPrompt,
		Schema: extractionSchema,
	}
	switch kind {
	case KindImage:
		req.Prompt = imageUserPrompt
		req.Images = [][]byte{content}
	case KindText:
		req.Prompt = textUserPromptPrefix + string(content)
	default:
		return "", services.Wrap(services.ErrUnknownContentKind, "extractor", "invoke model",
			fmt.Sprintf("no extraction adapter for kind %q", kind), nil)
	}
	return d.chatter.ChatStructured(ctx, req)
}

// normalize folds the flat payload into SIS semantics and applies the
// hallucination gate: a character the model cannot describe is evidence
// of fabrication, not a formatting slip.
func (d *Dispatcher) normalize(parsed payload, kind ContentKind) (*sis.Semantics, string, error) {
	if parsed.Characters == nil {
		return nil, "", services.Wrap(services.ErrMalformedOutput, "extractor", "normalize",
			"response omitted the characters list; absence must be an explicit empty list", nil)
	}
	characters := make([]sis.Character, 0, len(*parsed.Characters))
	for i, ch := range *parsed.Characters {
		if !ch.Described() {
			return nil, "", services.Wrap(services.ErrMalformedOutput, "extractor", "normalize",
				fmt.Sprintf("characters[%d] has no name, traits, or visual detail", i), nil)
		}
		characters = append(characters, ch)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		return nil, "", services.Wrap(services.ErrMalformedOutput, "extractor", "normalize",
			fmt.Sprintf("kind %s response missing summary", kind), nil)
	}

	return &sis.Semantics{
		Common: sis.CommonSemantics{
			Mood:         strings.TrimSpace(parsed.Mood),
			Descriptions: parsed.Descriptions,
			Location:     strings.TrimSpace(parsed.Location),
			Time:         strings.TrimSpace(parsed.Time),
			Weather:      strings.TrimSpace(parsed.Weather),
			Characters:   characters,
			Objects:      parsed.Objects,
		},
	}, summary, nil
}

func audioSkeleton(content []byte) payload {
	format := "audio"
	switch {
	case isWAV(content):
		format = "wav audio"
	case len(content) >= 4 && string(content[:4]) == "OggS":
		format = "ogg audio"
	case len(content) >= 4 && string(content[:4]) == "fLaC":
		format = "flac audio"
	case len(content) >= 3 && string(content[:3]) == "ID3", isMP3Frame(content):
		format = "mp3 audio"
	}
	empty := []sis.Character{}
	return payload{
		Summary:    fmt.Sprintf("Untitled %s recording (%d bytes)", format, len(content)),
		Characters: &empty,
	}
}

func (k ContentKind) mediaType() sis.MediaType {
	switch k {
	case KindText:
		return sis.MediaText
	case KindImage:
		return sis.MediaVisual
	case KindAudio:
		return sis.MediaAudio
	}
	return ""
}
