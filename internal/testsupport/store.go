package testsupport

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"genarrative/internal/config"
	"genarrative/internal/sis"
	"genarrative/internal/sisindex"
)

var idClock atomic.Int64

// nextIDTime returns a strictly increasing timestamp so IDs minted in a
// tight loop never collide.
func nextIDTime() time.Time {
	return time.Now().Add(time.Duration(idClock.Add(1)) * time.Microsecond)
}

// MustOpenIndex opens a sisindex.Store for tests and registers cleanup.
func MustOpenIndex(t testing.TB, cfg *config.Config) *sisindex.Store {
	t.Helper()

	store, err := sisindex.Open(cfg)
	if err != nil {
		t.Fatalf("sisindex.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RegisterStory registers a story record for tests and returns its ID.
func RegisterStory(t testing.TB, store *sisindex.Store, storyType sis.StoryType) string {
	t.Helper()

	id := sis.NewStoryID(nextIDTime())
	err := store.Register(context.Background(), sisindex.Record{
		ID:        id,
		Kind:      sis.KindStory,
		StoryType: storyType,
	})
	if err != nil {
		t.Fatalf("register story: %v", err)
	}
	return id
}

// RegisterScene registers a scene record for tests and returns its ID.
func RegisterScene(t testing.TB, store *sisindex.Store) string {
	t.Helper()

	id := sis.NewSceneID(nextIDTime())
	if err := store.Register(context.Background(), sisindex.Record{ID: id, Kind: sis.KindScene}); err != nil {
		t.Fatalf("register scene: %v", err)
	}
	return id
}

// RegisterMedia registers a media record for tests and returns its ID.
func RegisterMedia(t testing.TB, store *sisindex.Store, mediaType sis.MediaType) string {
	t.Helper()

	id := sis.NewMediaID(nextIDTime())
	err := store.Register(context.Background(), sisindex.Record{
		ID:        id,
		Kind:      sis.KindMedia,
		MediaType: mediaType,
	})
	if err != nil {
		t.Fatalf("register media: %v", err)
	}
	return id
}
