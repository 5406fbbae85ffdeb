package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"genarrative/internal/capability"
	"genarrative/internal/config"
	"genarrative/internal/logging"
	"genarrative/internal/services"
	"genarrative/internal/sis"
	"genarrative/internal/sisindex"
	"genarrative/internal/sisstore"
)

// Overrides narrows a single generation call without touching any
// stored document. Zero values defer to the resolved policy chain and
// backend defaults.
type Overrides struct {
	// StoryID selects the story layer when the scene is linked into
	// more than one story. Without it, a scene linked into exactly one
	// story inherits from that story and an ambiguous scene inherits
	// from no story at all.
	StoryID         string
	NegativePrompt  string
	Width           int
	Height          int
	DurationSeconds int
	WordCount       int
}

// Dispatcher turns a scene document into a generated media artifact:
// it resolves the policy chain, synthesizes the prompt, invokes the
// modality adapter, and records the result as a linked Media document.
type Dispatcher struct {
	registry *capability.Registry
	index    *sisindex.Store
	docs     *sisstore.Store
	library  string
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithClock fixes the dispatcher's time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(cfg *config.Config, registry *capability.Registry, index *sisindex.Store, docs *sisstore.Store, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		index:    index,
		docs:     docs,
		library:  cfg.Paths.LibraryDir,
		logger:   logging.NewComponentLogger(logger, "generator"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Generate produces one media artifact for a scene or media document.
// A media target resolves to its owning scene through the index and
// contributes its own policy as the innermost override layer. The
// returned document is already persisted, registered in the index, and
// linked to the scene at the next free position.
func (d *Dispatcher) Generate(ctx context.Context, documentID string, modality capability.Modality, ov Overrides) (*sis.MediaSIS, error) {
	scene, mediaPolicy, err := d.loadTarget(ctx, documentID)
	if err != nil {
		return nil, err
	}
	layers, err := d.resolveLayers(ctx, scene, mediaPolicy, ov.StoryID)
	if err != nil {
		return nil, err
	}

	adapter, err := d.registry.Lookup(modality)
	if err != nil {
		return nil, err
	}

	req := capability.Request{
		Prompt:          promptFor(modality, layers, scene),
		NegativePrompt:  ov.NegativePrompt,
		Width:           ov.Width,
		Height:          ov.Height,
		DurationSeconds: ov.DurationSeconds,
		WordCount:       ov.WordCount,
	}
	result, err := adapter.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	mediaID := sis.NewMediaID(d.now())
	artifactPath, err := d.writeArtifact(mediaID, result)
	if err != nil {
		return nil, err
	}

	media := d.mintMedia(mediaID, modality, layers, scene, result, artifactPath)
	if violations := sis.Validate(media); len(violations) > 0 {
		return nil, services.Wrap(services.ErrSchemaViolation, "generator", "generate", violations.Summary(), nil)
	}
	if err := d.record(ctx, scene.SceneID, media); err != nil {
		return nil, err
	}

	d.logger.InfoContext(ctx, "media generated",
		logging.String(logging.FieldDocumentID, media.MediaID),
		logging.String(logging.FieldModality, string(modality)),
		logging.String("artifact", artifactPath),
		logging.Int("bytes", len(result.Data)))
	return media, nil
}

// loadTarget resolves the generation target to a scene. A scene ID
// loads directly; a media ID resolves to its single owning scene and
// yields the media's own policy set as the innermost layer.
func (d *Dispatcher) loadTarget(ctx context.Context, documentID string) (*sis.SceneSIS, *sis.PolicySet, error) {
	doc, err := d.docs.Load(documentID)
	if err != nil {
		if errors.Is(err, sisstore.ErrNotFound) {
			return nil, nil, services.Wrap(services.ErrDanglingReference, "generator", "load target",
				fmt.Sprintf("document %s not found", documentID), err)
		}
		return nil, nil, err
	}

	switch target := doc.(type) {
	case *sis.SceneSIS:
		return target, nil, nil
	case *sis.MediaSIS:
		links, err := d.index.ScenesForMedia(ctx, target.MediaID)
		if err != nil {
			return nil, nil, err
		}
		if len(links) != 1 {
			return nil, nil, services.Wrap(services.ErrDanglingReference, "generator", "load target",
				fmt.Sprintf("media %s is linked to %d scenes, need exactly one owning scene", documentID, len(links)), nil)
		}
		scene, err := d.loadScene(links[0].SceneID)
		if err != nil {
			return nil, nil, err
		}
		return scene, &target.Semantics.PolicySet, nil
	default:
		return nil, nil, services.Wrap(services.ErrValidation, "generator", "load target",
			fmt.Sprintf("%s is a %s document; generation targets scenes and media units", documentID, doc.Kind()), nil)
	}
}

func (d *Dispatcher) loadScene(sceneID string) (*sis.SceneSIS, error) {
	doc, err := d.docs.Load(sceneID)
	if err != nil {
		if errors.Is(err, sisstore.ErrNotFound) {
			return nil, services.Wrap(services.ErrDanglingReference, "generator", "load scene",
				fmt.Sprintf("scene %s not found", sceneID), err)
		}
		return nil, err
	}
	scene, ok := doc.(*sis.SceneSIS)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "generator", "load scene",
			fmt.Sprintf("%s is a %s document, not a scene", sceneID, doc.Kind()), nil)
	}
	return scene, nil
}

// resolveLayers assembles the policy chain. The media layer is present
// only when the generation target is itself a media document; fresh
// generation from a scene has no media layer, and overrides stand in
// for per-call adjustments instead.
func (d *Dispatcher) resolveLayers(ctx context.Context, scene *sis.SceneSIS, mediaPolicy *sis.PolicySet, storyID string) (Layers, error) {
	layers := Layers{Media: mediaPolicy, Scene: &scene.Semantics.PolicySet}

	if storyID == "" {
		links, err := d.index.StoriesForScene(ctx, scene.SceneID)
		if err != nil {
			return Layers{}, err
		}
		if len(links) != 1 {
			return layers, nil
		}
		storyID = links[0].StoryID
	}

	doc, err := d.docs.Load(storyID)
	if err != nil {
		if errors.Is(err, sisstore.ErrNotFound) {
			return Layers{}, services.Wrap(services.ErrDanglingReference, "generator", "resolve story layer",
				fmt.Sprintf("story %s not found", storyID), err)
		}
		return Layers{}, err
	}
	story, ok := doc.(*sis.StorySIS)
	if !ok {
		return Layers{}, services.Wrap(services.ErrValidation, "generator", "resolve story layer",
			fmt.Sprintf("%s is a %s document, not a story", storyID, doc.Kind()), nil)
	}
	layers.Story = &story.Semantics.PolicySet
	return layers, nil
}

func promptFor(modality capability.Modality, layers Layers, scene *sis.SceneSIS) string {
	common := scene.Semantics.Common
	switch modality {
	case capability.ModalityText:
		return TextPrompt(ResolveText(layers), common, scene.Summary)
	case capability.ModalityImage:
		return VisualPrompt(ResolveVisual(layers), common, scene.Summary)
	case capability.ModalityMusic:
		return AudioPrompt(ResolveAudio(layers), common, scene.Summary)
	case capability.ModalitySpeech:
		return NarrationText(common, scene.Summary)
	}
	return ""
}

func (d *Dispatcher) writeArtifact(mediaID string, result *capability.Result) (string, error) {
	if err := os.MkdirAll(d.library, 0o755); err != nil {
		return "", fmt.Errorf("create library dir: %w", err)
	}
	path := filepath.Join(d.library, mediaID+result.Extension)
	if err := os.WriteFile(path, result.Data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return path, nil
}

// mintMedia builds the Media document. The semantic core is copied
// from the scene so the artifact remains interpretable if the scene is
// later edited, and the resolved policy for the generated modality is
// frozen into the document.
func (d *Dispatcher) mintMedia(mediaID string, modality capability.Modality, layers Layers, scene *sis.SceneSIS, result *capability.Result, artifactPath string) *sis.MediaSIS {
	common := scene.Semantics.Common
	if common.Characters == nil {
		common.Characters = []sis.Character{}
	}

	media := &sis.MediaSIS{
		SISType:   sis.KindMedia,
		MediaID:   mediaID,
		Summary:   scene.Summary,
		MediaType: modality.MediaType(),
		Semantics: sis.Semantics{Common: common},
		Provenance: &sis.Provenance{
			Assets:    []sis.ProvenanceAsset{{URI: artifactPath}},
			Generator: &result.Generator,
			CreatedAt: d.now().UTC().Format(time.RFC3339),
		},
	}

	switch modality {
	case capability.ModalityText:
		policy := ResolveText(layers)
		media.Semantics.Text = &policy
	case capability.ModalityImage:
		policy := ResolveVisual(layers)
		media.Semantics.Visual = &policy
	case capability.ModalityMusic, capability.ModalitySpeech:
		policy := ResolveAudio(layers)
		media.Semantics.Audio = &policy
	}
	return media
}

func (d *Dispatcher) record(ctx context.Context, sceneID string, media *sis.MediaSIS) error {
	if err := d.docs.Save(media); err != nil {
		return err
	}
	if err := d.index.Register(ctx, sisindex.RecordFor(media)); err != nil {
		return err
	}
	position, err := d.nextMediaPosition(ctx, sceneID)
	if err != nil {
		return err
	}
	return d.index.LinkMedia(ctx, sceneID, media.MediaID, position)
}

func (d *Dispatcher) nextMediaPosition(ctx context.Context, sceneID string) (int, error) {
	links, err := d.index.MediaForScene(ctx, sceneID)
	if err != nil {
		return 0, err
	}
	next := 1
	for _, link := range links {
		if link.Position >= next {
			next = link.Position + 1
		}
	}
	return next, nil
}
