package workflow

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"genarrative/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// journalSchemaVersion is the current run journal schema version. Bump
// when the schema changes; the journal is history, so deleting and
// starting fresh is always safe.
const journalSchemaVersion = 1

// ErrSchemaMismatch indicates the journal database schema version
// doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrRunNotFound indicates the journal has no run with the given ID.
var ErrRunNotFound = errors.New("run not found")

// Journal persists run history in SQLite so `workflow status` can
// render what happened after the process exits.
type Journal struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// OpenJournal initializes or connects to the run journal database.
func OpenJournal(cfg *config.Config) (*Journal, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	journal := &Journal{db: db, path: dbPath}
	if err := journal.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the filesystem location of the journal database.
func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) initSchema(ctx context.Context) error {
	var tableExists int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return j.createSchema(ctx)
	}

	var version int
	err = j.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != journalSchemaVersion {
		return fmt.Errorf("%w: journal has version %d, expected %d (delete the runs database to start fresh)",
			ErrSchemaMismatch, version, journalSchemaVersion)
	}
	return nil
}

func (j *Journal) createSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", journalSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RunRecord is one journaled pipeline run.
type RunRecord struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	SceneID   string    `json:"scene_id,omitempty"`
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRun journals a new run in the pending state.
func (j *Journal) CreateRun(ctx context.Context, id, source string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return j.execWithRetry(ctx,
		`INSERT INTO workflow_runs (id, source, state, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		id, source, string(StatePending), now, now,
	)
}

// Transition advances a run to the next state, enforcing the state
// machine. The scene ID is recorded once known; an error message is
// recorded on the failing transition.
func (j *Journal) Transition(ctx context.Context, id string, to State, sceneID, errMsg string) error {
	current, err := j.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if !current.State.CanTransition(to) {
		return fmt.Errorf("illegal run transition %s → %s for %s", current.State, to, id)
	}
	if sceneID == "" {
		sceneID = current.SceneID
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	return j.execWithRetry(ctx,
		`UPDATE workflow_runs SET state = ?, scene_id = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(to), sceneID, errMsg, now, id,
	)
}

// GetRun loads one run by ID.
func (j *Journal) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	ctx = journalContext(ctx)
	row := j.db.QueryRowContext(ctx,
		`SELECT id, source, scene_id, state, error, created_at, updated_at
         FROM workflow_runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns journaled runs, newest first.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	ctx = journalContext(ctx)
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, source, scene_id, state, error, created_at, updated_at
         FROM workflow_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// RecordOutcome journals one modality's final outcome for a run.
func (j *Journal) RecordOutcome(ctx context.Context, runID string, outcome ModalityOutcome) error {
	return j.execWithRetry(ctx,
		`INSERT INTO workflow_modalities (run_id, modality, status, media_id, error_kind, error, attempts)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (run_id, modality) DO UPDATE SET
             status = excluded.status, media_id = excluded.media_id,
             error_kind = excluded.error_kind, error = excluded.error,
             attempts = excluded.attempts`,
		runID, outcome.Modality, outcome.Status, outcome.MediaID, outcome.ErrorKind, outcome.Error, outcome.Attempts,
	)
}

// Outcomes returns the journaled modality outcomes of a run, ordered
// by modality name.
func (j *Journal) Outcomes(ctx context.Context, runID string) ([]ModalityOutcome, error) {
	ctx = journalContext(ctx)
	rows, err := j.db.QueryContext(ctx,
		`SELECT modality, status, media_id, error_kind, error, attempts
         FROM workflow_modalities WHERE run_id = ? ORDER BY modality`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []ModalityOutcome
	for rows.Next() {
		var o ModalityOutcome
		if err := rows.Scan(&o.Modality, &o.Status, &o.MediaID, &o.ErrorKind, &o.Error, &o.Attempts); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var run RunRecord
	var state, created, updated string
	err := row.Scan(&run.ID, &run.Source, &run.SceneID, &state, &run.Error, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.State = State(state)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	run.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &run, nil
}

func journalContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (j *Journal) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = journalContext(ctx)
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = j.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
