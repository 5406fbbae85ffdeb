package sisindex

import (
	"context"
	"fmt"
	"time"

	"genarrative/internal/services"
	"genarrative/internal/sis"
)

// SceneLink annotates one story→scene relationship.
type SceneLink struct {
	StoryID  string `json:"story_id"`
	SceneID  string `json:"scene_id"`
	Role     string `json:"role"`
	Position int    `json:"position"`
}

// MediaLink annotates one scene→media relationship.
type MediaLink struct {
	SceneID  string `json:"scene_id"`
	MediaID  string `json:"media_id"`
	Position int    `json:"position"`
}

// LinkScene records that a scene fills a structural role in a story.
// Both endpoints must already be registered, and the role must belong
// to the story type's vocabulary. Linking the same pair again updates
// the role and position.
func (s *Store) LinkScene(ctx context.Context, storyID, sceneID, role string, position int) error {
	ctx = ensureContext(ctx)

	story, err := s.requireKind(ctx, storyID, sis.KindStory)
	if err != nil {
		return err
	}
	if _, err := s.requireKind(ctx, sceneID, sis.KindScene); err != nil {
		return err
	}
	if !story.StoryType.HasRole(role) {
		return services.Wrap(services.ErrRoleVocabularyMismatch, "sisindex", "link scene",
			fmt.Sprintf("role %q is not defined for story type %q (valid: %v)", role, story.StoryType, story.StoryType.RoleSequence()), nil)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithRetry(ctx,
		`INSERT INTO story_scenes (story_id, scene_id, role, position, created_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (story_id, scene_id) DO UPDATE SET role = excluded.role, position = excluded.position`,
		storyID, sceneID, role, position, now,
	); err != nil {
		return fmt.Errorf("link scene: %w", err)
	}
	return nil
}

// LinkMedia records that a media document belongs to a scene.
func (s *Store) LinkMedia(ctx context.Context, sceneID, mediaID string, position int) error {
	ctx = ensureContext(ctx)

	if _, err := s.requireKind(ctx, sceneID, sis.KindScene); err != nil {
		return err
	}
	if _, err := s.requireKind(ctx, mediaID, sis.KindMedia); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithRetry(ctx,
		`INSERT INTO scene_media (scene_id, media_id, position, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (scene_id, media_id) DO UPDATE SET position = excluded.position`,
		sceneID, mediaID, position, now,
	); err != nil {
		return fmt.Errorf("link media: %w", err)
	}
	return nil
}

// UnlinkScene removes a story→scene link. Unlinking a pair that was
// never linked is a no-op.
func (s *Store) UnlinkScene(ctx context.Context, storyID, sceneID string) error {
	return s.execWithRetry(ensureContext(ctx),
		`DELETE FROM story_scenes WHERE story_id = ? AND scene_id = ?`, storyID, sceneID)
}

// UnlinkMedia removes a scene→media link.
func (s *Store) UnlinkMedia(ctx context.Context, sceneID, mediaID string) error {
	return s.execWithRetry(ensureContext(ctx),
		`DELETE FROM scene_media WHERE scene_id = ? AND media_id = ?`, sceneID, mediaID)
}

// ScenesForStory lists a story's scene links in position order.
func (s *Store) ScenesForStory(ctx context.Context, storyID string) ([]SceneLink, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT story_id, scene_id, role, position FROM story_scenes
         WHERE story_id = ? ORDER BY position, scene_id`, storyID)
	if err != nil {
		return nil, fmt.Errorf("list scene links: %w", err)
	}
	defer rows.Close()

	var links []SceneLink
	for rows.Next() {
		var link SceneLink
		if err := rows.Scan(&link.StoryID, &link.SceneID, &link.Role, &link.Position); err != nil {
			return nil, fmt.Errorf("scan scene link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// StoriesForScene lists the stories a scene is linked into.
func (s *Store) StoriesForScene(ctx context.Context, sceneID string) ([]SceneLink, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT story_id, scene_id, role, position FROM story_scenes
         WHERE scene_id = ? ORDER BY story_id`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("list story links: %w", err)
	}
	defer rows.Close()

	var links []SceneLink
	for rows.Next() {
		var link SceneLink
		if err := rows.Scan(&link.StoryID, &link.SceneID, &link.Role, &link.Position); err != nil {
			return nil, fmt.Errorf("scan story link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// MediaForScene lists a scene's media links in position order.
func (s *Store) MediaForScene(ctx context.Context, sceneID string) ([]MediaLink, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT scene_id, media_id, position FROM scene_media
         WHERE scene_id = ? ORDER BY position, media_id`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("list media links: %w", err)
	}
	defer rows.Close()

	var links []MediaLink
	for rows.Next() {
		var link MediaLink
		if err := rows.Scan(&link.SceneID, &link.MediaID, &link.Position); err != nil {
			return nil, fmt.Errorf("scan media link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// ScenesForMedia lists the scenes a media document is linked under.
func (s *Store) ScenesForMedia(ctx context.Context, mediaID string) ([]MediaLink, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT scene_id, media_id, position FROM scene_media
         WHERE media_id = ? ORDER BY scene_id`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("list scene links for media: %w", err)
	}
	defer rows.Close()

	var links []MediaLink
	for rows.Next() {
		var link MediaLink
		if err := rows.Scan(&link.SceneID, &link.MediaID, &link.Position); err != nil {
			return nil, fmt.Errorf("scan media link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (s *Store) requireKind(ctx context.Context, id string, kind sis.Kind) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s, expected %s", ErrKindMismatch, id, rec.Kind, kind)
	}
	return rec, nil
}

func (s *Store) sceneLinkCount(ctx context.Context, storyID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM story_scenes WHERE story_id = ?`, storyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count scene links: %w", err)
	}
	return count, nil
}
