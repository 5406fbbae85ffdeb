package musicgen_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"genarrative/internal/config"
	"genarrative/internal/services"
	"genarrative/internal/services/musicgen"
)

func wavBytes() []byte {
	data := []byte("RIFF????WAVEfmt ")
	return append(data, make([]byte, 16)...)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *musicgen.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return musicgen.NewClient(config.MusicGen{
		BaseURL:         server.URL,
		DurationSeconds: 30,
	})
}

func TestGenerateReturnsWAV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Prompt   string `json:"prompt"`
			Duration int    `json:"duration"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Duration != 30 {
			t.Errorf("expected config duration, got %d", req.Duration)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wavBytes())
	})

	audio, err := client.Generate(context.Background(), "ambient orchestral, slow tempo", 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(audio, []byte("RIFF")) {
		t.Fatalf("unexpected audio bytes: %v", audio[:4])
	}
}

func TestGeneratePassesExplicitDuration(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Duration int `json:"duration"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Duration != 12 {
			t.Errorf("expected explicit duration, got %d", req.Duration)
		}
		w.Write(wavBytes())
	})

	if _, err := client.Generate(context.Background(), "piano", 12); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})

	_, err := client.Generate(context.Background(), " ", 0)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateRejectsNonWAVResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"loading model"}`))
	})

	_, err := client.Generate(context.Background(), "piano", 0)
	if !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
}

func TestGenerateMapsServerFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model busy", http.StatusServiceUnavailable)
	})

	_, err := client.Generate(context.Background(), "piano", 0)
	if !errors.Is(err, services.ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}
