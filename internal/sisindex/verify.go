package sisindex

import (
	"context"
	"fmt"

	"genarrative/internal/services"
)

// Problem describes one integrity issue found during verification.
type Problem struct {
	// Kind is the taxonomy class of the problem.
	Kind string `json:"kind"`
	// Subject is the document or link the problem concerns.
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

// Verify audits the index for dangling references. Link endpoints must
// resolve to registered documents, and every registered document must
// still exist according to the supplied presence check (nil skips the
// on-disk audit). Problems are reported, never repaired.
func (s *Store) Verify(ctx context.Context, exists func(id string) bool) ([]Problem, error) {
	ctx = ensureContext(ctx)
	var problems []Problem

	queries := []struct {
		query string
		role  string
	}{
		{
			query: `SELECT ss.story_id, ss.scene_id FROM story_scenes ss
                LEFT JOIN documents d ON d.id = ss.story_id WHERE d.id IS NULL`,
			role: "story",
		},
		{
			query: `SELECT ss.story_id, ss.scene_id FROM story_scenes ss
                LEFT JOIN documents d ON d.id = ss.scene_id WHERE d.id IS NULL`,
			role: "scene",
		},
		{
			query: `SELECT sm.scene_id, sm.media_id FROM scene_media sm
                LEFT JOIN documents d ON d.id = sm.scene_id WHERE d.id IS NULL`,
			role: "scene",
		},
		{
			query: `SELECT sm.scene_id, sm.media_id FROM scene_media sm
                LEFT JOIN documents d ON d.id = sm.media_id WHERE d.id IS NULL`,
			role: "media",
		},
	}

	for _, q := range queries {
		rows, err := s.db.QueryContext(ctx, q.query)
		if err != nil {
			return nil, fmt.Errorf("audit links: %w", err)
		}
		for rows.Next() {
			var left, right string
			if err := rows.Scan(&left, &right); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan audit row: %w", err)
			}
			problems = append(problems, Problem{
				Kind:    services.Kind(services.ErrDanglingReference),
				Subject: left + " -> " + right,
				Detail:  fmt.Sprintf("link references unregistered %s document", q.role),
			})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	if exists != nil {
		records, err := s.List(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if !exists(rec.ID) {
				problems = append(problems, Problem{
					Kind:    services.Kind(services.ErrDanglingReference),
					Subject: rec.ID,
					Detail:  "registered document missing from store",
				})
			}
		}
	}

	return problems, nil
}
