package services_test

import (
	"errors"
	"fmt"
	"testing"

	"genarrative/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := services.Wrap(services.ErrBackendUnavailable, "diffusion", "txt2img", "post request", base)
	if !errors.Is(err, services.ErrBackendUnavailable) {
		t.Fatalf("expected backend-unavailable marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{services.Wrap(services.ErrBackendUnavailable, "musicgen", "generate", "", nil), "backend_unavailable"},
		{services.Wrap(services.ErrMalformedOutput, "ollama", "extract", "", nil), "malformed_backend_output"},
		{services.Wrap(services.ErrSchemaViolation, "extraction", "validate", "", nil), "schema_violation"},
		{services.Wrap(services.ErrUnknownContentKind, "extraction", "sniff", "", nil), "unknown_content_kind"},
		{services.Wrap(services.ErrDanglingReference, "index", "resolve", "", nil), "dangling_reference"},
		{services.Wrap(services.ErrRoleVocabularyMismatch, "story", "infer", "", nil), "role_vocabulary_mismatch"},
		{errors.New("boom"), "internal"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.kind {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.kind)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !services.Retryable(services.Wrap(services.ErrBackendUnavailable, "tts", "synthesize", "timeout", nil)) {
		t.Fatal("backend unavailable should be retryable")
	}
	if services.Retryable(services.Wrap(services.ErrMalformedOutput, "tts", "synthesize", "", nil)) {
		t.Fatal("malformed output must not be retryable")
	}
}
