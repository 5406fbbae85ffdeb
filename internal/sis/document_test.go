package sis_test

import (
	"strings"
	"testing"
	"time"

	"genarrative/internal/sis"
)

func TestDecodeDispatchesOnSISType(t *testing.T) {
	doc, err := sis.Decode([]byte(`{"sis_type":"scene","scene_id":"scene_1","summary":"x","semantics":{"common":{"characters":[]}}}`))
	if err != nil {
		t.Fatalf("decode scene: %v", err)
	}
	if doc.Kind() != sis.KindScene || doc.ID() != "scene_1" {
		t.Fatalf("unexpected document: kind=%s id=%s", doc.Kind(), doc.ID())
	}

	if _, err := sis.Decode([]byte(`{"sis_type":"poem"}`)); err == nil {
		t.Fatal("expected unknown sis_type to fail")
	}
	if _, err := sis.Decode([]byte(`not json`)); err == nil {
		t.Fatal("expected malformed JSON to fail")
	}
}

func TestIDsAreApplicationAssigned(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	id := sis.NewSceneID(now)
	if !strings.HasPrefix(id, "scene_20260314_092653") {
		t.Fatalf("unexpected scene id %q", id)
	}
	if strings.Contains(id, ".") {
		t.Fatalf("scene id should not contain a dot: %q", id)
	}
	if !strings.HasPrefix(sis.NewStoryID(now), "story_") {
		t.Fatal("story id prefix missing")
	}
	if !strings.HasPrefix(sis.NewMediaID(now), "media_") {
		t.Fatal("media id prefix missing")
	}
}
