package sisindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"genarrative/internal/sis"
)

// Record is one registered document.
type Record struct {
	ID        string        `json:"id"`
	Kind      sis.Kind      `json:"kind"`
	StoryType sis.StoryType `json:"story_type,omitempty"`
	MediaType sis.MediaType `json:"media_type,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RecordFor builds the index record describing a document.
func RecordFor(doc sis.Document) Record {
	rec := Record{ID: doc.ID(), Kind: doc.Kind()}
	switch d := doc.(type) {
	case *sis.StorySIS:
		rec.StoryType = d.StoryType
	case *sis.MediaSIS:
		rec.MediaType = d.MediaType
	}
	return rec
}

// Register inserts or updates a document record. Registration is
// idempotent, but a story's type cannot change once scenes are linked
// under it and a document's kind can never change.
func (s *Store) Register(ctx context.Context, rec Record) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	existing, err := s.Get(ctx, rec.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if existing != nil {
		if existing.Kind != rec.Kind {
			return fmt.Errorf("%w: %s registered as %s, got %s", ErrKindMismatch, rec.ID, existing.Kind, rec.Kind)
		}
		if existing.Kind == sis.KindStory && existing.StoryType != rec.StoryType {
			linked, err := s.sceneLinkCount(ctx, rec.ID)
			if err != nil {
				return err
			}
			if linked > 0 {
				return fmt.Errorf("%w: %s has %d scene links with %s roles", ErrStoryTypeLocked, rec.ID, linked, existing.StoryType)
			}
		}
		return s.execWithRetry(ctx,
			`UPDATE documents SET story_type = ?, media_type = ?, updated_at = ? WHERE id = ?`,
			string(rec.StoryType), string(rec.MediaType), now, rec.ID,
		)
	}

	if err := s.execWithRetry(ctx,
		`INSERT INTO documents (id, kind, story_type, media_type, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), string(rec.StoryType), string(rec.MediaType), now, now,
	); err != nil {
		return fmt.Errorf("register document: %w", err)
	}
	return nil
}

// Get returns the record for one document ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, story_type, media_type, created_at, updated_at FROM documents WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load document record: %w", err)
	}
	return rec, nil
}

// List returns all records of one kind, ordered by ID. An empty kind
// lists everything.
func (s *Store) List(ctx context.Context, kind sis.Kind) ([]Record, error) {
	ctx = ensureContext(ctx)

	query := `SELECT id, kind, story_type, media_type, created_at, updated_at FROM documents ORDER BY id`
	args := []any{}
	if kind != "" {
		query = `SELECT id, kind, story_type, media_type, created_at, updated_at FROM documents WHERE kind = ? ORDER BY id`
		args = append(args, string(kind))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Remove deletes a document record together with any links touching it.
func (s *Store) Remove(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM story_scenes WHERE story_id = ? OR scene_id = ?`,
		`DELETE FROM scene_media WHERE scene_id = ? OR media_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id, id); err != nil {
			return fmt.Errorf("remove links: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove document: %w", err)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec                  Record
		kind, story, media   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &kind, &story, &media, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.Kind = sis.Kind(kind)
	rec.StoryType = sis.StoryType(story)
	rec.MediaType = sis.MediaType(media)
	rec.CreatedAt = parseTimestamp(createdAt)
	rec.UpdatedAt = parseTimestamp(updatedAt)
	return &rec, nil
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
