package sisstore_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"genarrative/internal/sis"
	"genarrative/internal/sisstore"
	"genarrative/internal/testsupport"
)

func newStore(t *testing.T) *sisstore.Store {
	t.Helper()
	store, err := sisstore.New(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("sisstore.New: %v", err)
	}
	return store
}

func sampleScene(id string) *sis.SceneSIS {
	return &sis.SceneSIS{
		SISType: sis.KindScene,
		SceneID: id,
		Summary: "An old lighthouse keeper watches the storm roll in.",
		Semantics: sis.Semantics{
			Common: sis.CommonSemantics{
				Mood:       "foreboding",
				Location:   "lighthouse gallery",
				Weather:    "storm",
				Characters: []sis.Character{{Name: "keeper", Traits: []string{"old", "stoic"}}},
			},
			PolicySet: sis.PolicySet{
				Visual: &sis.VisualPolicy{Style: "oil painting"},
			},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newStore(t)

	id := sis.NewSceneID(time.Now())
	if err := store.Save(sampleScene(id)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	doc, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	scene, ok := doc.(*sis.SceneSIS)
	if !ok {
		t.Fatalf("expected *sis.SceneSIS, got %T", doc)
	}
	if scene.Summary != "An old lighthouse keeper watches the storm roll in." {
		t.Fatalf("unexpected summary: %q", scene.Summary)
	}
	if scene.Semantics.Visual == nil || scene.Semantics.Visual.Style != "oil painting" {
		t.Fatalf("visual policy lost in round trip: %+v", scene.Semantics.Visual)
	}
}

func TestSaveReplacesExistingDocument(t *testing.T) {
	store := newStore(t)

	id := sis.NewSceneID(time.Now())
	if err := store.Save(sampleScene(id)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	updated := sampleScene(id)
	updated.Summary = "The keeper lights the lamp."
	if err := store.Save(updated); err != nil {
		t.Fatalf("Save replacement: %v", err)
	}

	doc, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.(*sis.SceneSIS).Summary != "The keeper lights the lamp." {
		t.Fatal("replacement did not take effect")
	}

	ids, err := store.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected one document, got %v", ids)
	}
}

func TestSavedFileIsHandEditable(t *testing.T) {
	store := newStore(t)

	id := sis.NewSceneID(time.Now())
	if err := store.Save(sampleScene(id)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(store.Path(id))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "\n  \"sis_type\": \"scene\"") {
		t.Fatalf("expected pretty-printed JSON, got: %s", text)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatal("expected trailing newline")
	}
}

func TestLoadMissingDocument(t *testing.T) {
	store := newStore(t)

	_, err := store.Load("scene_19990101_000000_000000")
	if !errors.Is(err, sisstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.Exists("scene_19990101_000000_000000") {
		t.Fatal("Exists should report false for missing document")
	}
}

func TestDeleteMissingDocumentErrors(t *testing.T) {
	store := newStore(t)

	if err := store.Delete("media_19990101_000000_000000"); !errors.Is(err, sisstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListIDsSkipsForeignFiles(t *testing.T) {
	store := newStore(t)

	id := sis.NewMediaID(time.Now())
	media := &sis.MediaSIS{
		SISType:   sis.KindMedia,
		MediaID:   id,
		MediaType: sis.MediaVisual,
		Semantics: sis.Semantics{Common: sis.CommonSemantics{Characters: []sis.Character{}}},
	}
	if err := store.Save(media); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(store.Dir()+"/notes.txt", []byte("scratch"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}

	ids, err := store.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
