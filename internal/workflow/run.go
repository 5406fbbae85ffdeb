package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"genarrative/internal/capability"
	"genarrative/internal/config"
	"genarrative/internal/extraction"
	"genarrative/internal/generation"
	"genarrative/internal/logging"
	"genarrative/internal/metrics"
	"genarrative/internal/services"
	"genarrative/internal/sis"
	"genarrative/internal/sisindex"
	"genarrative/internal/sisstore"
)

// Extractor is the slice of the extraction dispatcher the runner needs.
type Extractor interface {
	ExtractScene(ctx context.Context, content []byte, declared extraction.ContentKind) (*sis.SceneSIS, error)
	SourceMedia(scene *sis.SceneSIS, content []byte, declared extraction.ContentKind, sourceURI string) (*sis.MediaSIS, error)
}

// Generator is the slice of the generation dispatcher the runner needs.
type Generator interface {
	Generate(ctx context.Context, sceneID string, modality capability.Modality, ov generation.Overrides) (*sis.MediaSIS, error)
}

// Request describes one pipeline run: one source, one scene, many
// modalities.
type Request struct {
	// Source labels the run in the journal (usually the input path).
	Source string
	// Content is the raw input handed to extraction.
	Content []byte
	// DeclaredKind skips signature sniffing when non-empty.
	DeclaredKind extraction.ContentKind
	// Modalities fan out after extraction; order is preserved in logs
	// but outcomes are keyed by modality.
	Modalities []capability.Modality
	// Overrides apply to every generation call of the run.
	Overrides generation.Overrides
}

// Runner drives the extract-then-generate pipeline.
type Runner struct {
	extractor Extractor
	generator Generator
	docs      *sisstore.Store
	index     *sisindex.Store
	journal   *Journal
	logger    *slog.Logger

	maxConcurrent int
	retryAttempts int
	retryBase     time.Duration

	newRunID func() string
	sleep    func(ctx context.Context, d time.Duration) error
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithRunID overrides run ID minting.
func WithRunID(mint func() string) RunnerOption {
	return func(r *Runner) {
		if mint != nil {
			r.newRunID = mint
		}
	}
}

// WithSleep overrides the backoff sleeper.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// NewRunner wires a pipeline runner.
func NewRunner(cfg *config.Config, extractor Extractor, generator Generator, docs *sisstore.Store, index *sisindex.Store, journal *Journal, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		extractor:     extractor,
		generator:     generator,
		docs:          docs,
		index:         index,
		journal:       journal,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		maxConcurrent: cfg.Workflow.MaxConcurrentGenerations,
		retryAttempts: cfg.Workflow.RetryAttempts,
		retryBase:     time.Duration(cfg.Workflow.RetryBaseDelaySeconds) * time.Second,
		newRunID:      uuid.NewString,
		sleep:         sleepContext,
	}
	if r.maxConcurrent < 1 {
		r.maxConcurrent = 1
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline. Pipeline failures are reported inside the
// Result, never as the returned error; the error is reserved for
// journal and input problems that prevent a run from being recorded at
// all.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Modalities) == 0 {
		return nil, services.Wrap(services.ErrValidation, "workflow", "run",
			"at least one modality is required", nil)
	}

	runID := r.newRunID()
	// Journal writes survive cancellation: a cancelled run must still
	// be recorded as failed with its outcomes preserved.
	jctx := context.WithoutCancel(ctx)
	if err := r.journal.CreateRun(jctx, runID, req.Source); err != nil {
		return nil, err
	}
	ctx = services.WithRunID(ctx, runID)
	jctx = services.WithRunID(jctx, runID)
	result := &Result{RunID: runID, State: StatePending}

	r.logger.InfoContext(ctx, "run started",
		logging.String(logging.FieldRunID, runID),
		logging.String("source", req.Source),
		logging.Int("modalities", len(req.Modalities)))

	scene, err := r.extract(ctx, jctx, runID, req)
	if err != nil {
		return r.fail(jctx, result, err)
	}
	result.SceneID = scene.SceneID

	if err := r.persistScene(ctx, jctx, runID, scene); err != nil {
		return r.fail(jctx, result, err)
	}
	sourceMedia, err := r.persistSourceMedia(ctx, scene, req)
	if err != nil {
		return r.fail(jctx, result, err)
	}
	result.SourceMediaID = sourceMedia.MediaID
	result.State = StateValidated

	if err := r.journal.Transition(jctx, runID, StateGenerating, "", ""); err != nil {
		return nil, err
	}
	result.State = StateGenerating
	result.Outcomes = r.generate(ctx, jctx, runID, scene.SceneID, req)

	final := StateFailed
	if result.Succeeded() {
		final = StateCompleted
	}
	if err := r.journal.Transition(jctx, runID, final, "", ""); err != nil {
		return nil, err
	}
	result.State = final
	metrics.ObserveWorkflowRun(string(final))

	r.logger.InfoContext(ctx, "run finished",
		logging.String(logging.FieldRunID, runID),
		logging.String("state", string(final)))
	return result, nil
}

func (r *Runner) extract(ctx, jctx context.Context, runID string, req Request) (*sis.SceneSIS, error) {
	if err := r.journal.Transition(jctx, runID, StateExtracting, "", ""); err != nil {
		return nil, err
	}
	return r.extractor.ExtractScene(ctx, req.Content, req.DeclaredKind)
}

func (r *Runner) persistScene(ctx, jctx context.Context, runID string, scene *sis.SceneSIS) error {
	if err := r.docs.Save(scene); err != nil {
		return err
	}
	if err := r.index.Register(ctx, sisindex.RecordFor(scene)); err != nil {
		return err
	}
	return r.journal.Transition(jctx, runID, StateValidated, scene.SceneID, "")
}

// persistSourceMedia records the input asset as a media unit under the
// freshly minted scene. The source holds position 1 so generated
// artifacts append after it.
func (r *Runner) persistSourceMedia(ctx context.Context, scene *sis.SceneSIS, req Request) (*sis.MediaSIS, error) {
	media, err := r.extractor.SourceMedia(scene, req.Content, req.DeclaredKind, req.Source)
	if err != nil {
		return nil, err
	}
	if err := r.docs.Save(media); err != nil {
		return nil, err
	}
	if err := r.index.Register(ctx, sisindex.RecordFor(media)); err != nil {
		return nil, err
	}
	if err := r.index.LinkMedia(ctx, scene.SceneID, media.MediaID, 1); err != nil {
		return nil, err
	}
	return media, nil
}

// generate fans the modalities out on goroutines bounded by the
// configured concurrency. Adapters share no mutable state, so each
// modality runs independently; one failure never blocks the rest.
func (r *Runner) generate(ctx, jctx context.Context, runID, sceneID string, req Request) map[string]ModalityOutcome {
	outcomes := make(map[string]ModalityOutcome, len(req.Modalities))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.maxConcurrent)

	for _, modality := range req.Modalities {
		wg.Add(1)
		go func(modality capability.Modality) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome := r.generateOne(ctx, sceneID, modality, req.Overrides)
			if err := r.journal.RecordOutcome(jctx, runID, outcome); err != nil {
				r.logger.WarnContext(jctx, "outcome not journaled",
					logging.String(logging.FieldRunID, runID),
					logging.String(logging.FieldModality, string(modality)),
					logging.Error(err))
			}
			mu.Lock()
			outcomes[string(modality)] = outcome
			mu.Unlock()
		}(modality)
	}
	wg.Wait()
	return outcomes
}

// generateOne runs a single modality with the retry policy: only
// backend-unavailable failures retry, with doubling backoff, and
// cancellation is honored between attempts so finished artifacts are
// never rolled back.
func (r *Runner) generateOne(ctx context.Context, sceneID string, modality capability.Modality, ov generation.Overrides) ModalityOutcome {
	outcome := ModalityOutcome{Modality: string(modality)}
	maxAttempts := r.retryAttempts + 1
	delay := r.retryBase

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		outcome.Attempts = attempt

		media, err := r.generator.Generate(ctx, sceneID, modality, ov)
		if err == nil {
			outcome.Status = OutcomeCompleted
			outcome.MediaID = media.MediaID
			if media.Provenance != nil && len(media.Provenance.Assets) > 0 {
				outcome.Artifact = media.Provenance.Assets[0].URI
			}
			return outcome
		}
		lastErr = err
		if !services.Retryable(err) || attempt == maxAttempts {
			break
		}
		r.logger.WarnContext(ctx, "generation retrying",
			logging.String(logging.FieldModality, string(modality)),
			logging.Int("attempt", attempt),
			logging.Error(err))
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			lastErr = sleepErr
			break
		}
		delay *= 2
	}

	outcome.Status = OutcomeFailed
	outcome.Error = lastErr.Error()
	outcome.ErrorKind = errorKind(lastErr)
	return outcome
}

// fail marks the run terminal after a pipeline stage error. The error
// is folded into the envelope; journal write failures surface instead.
func (r *Runner) fail(ctx context.Context, result *Result, cause error) (*Result, error) {
	result.Error = cause.Error()
	result.ErrorKind = errorKind(cause)
	if err := r.journal.Transition(ctx, result.RunID, StateFailed, result.SceneID, cause.Error()); err != nil {
		return nil, err
	}
	result.State = StateFailed
	metrics.ObserveWorkflowRun(string(StateFailed))

	r.logger.ErrorContext(ctx, "run failed",
		logging.String(logging.FieldRunID, result.RunID),
		logging.Error(cause))
	return result, nil
}

func errorKind(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return services.Kind(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
