package diffusion_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"genarrative/internal/config"
	"genarrative/internal/services"
	"genarrative/internal/services/diffusion"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newTestClient(t *testing.T, handler http.HandlerFunc) *diffusion.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return diffusion.NewClient(config.Diffusion{
		BaseURL: server.URL,
		Width:   1024,
		Height:  768,
		Steps:   20,
	})
}

func TestGenerateDecodesImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sdapi/v1/txt2img" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Prompt string `json:"prompt"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
			Steps  int    `json:"steps"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Width != 1024 || req.Height != 768 || req.Steps != 20 {
			t.Errorf("config defaults not applied: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"images": []string{base64.StdEncoding.EncodeToString(pngHeader)},
			"info":   "{}",
		})
	})

	image, err := client.Generate(context.Background(), diffusion.Request{Prompt: "a lighthouse in a storm"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(image, pngHeader) {
		t.Fatalf("unexpected image bytes: %v", image)
	}
}

func TestGenerateOverridesDimensions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Width != 512 || req.Height != 512 {
			t.Errorf("override not applied: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"images": []string{base64.StdEncoding.EncodeToString(pngHeader)},
		})
	})

	if _, err := client.Generate(context.Background(), diffusion.Request{
		Prompt: "portrait",
		Width:  512,
		Height: 512,
	}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})

	_, err := client.Generate(context.Background(), diffusion.Request{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateMapsServerFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cuda out of memory", http.StatusInternalServerError)
	})

	_, err := client.Generate(context.Background(), diffusion.Request{Prompt: "anything"})
	if !errors.Is(err, services.ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}

func TestGenerateRejectsBadImageData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"images": []string{"not-base64!!!"}})
	})

	_, err := client.Generate(context.Background(), diffusion.Request{Prompt: "anything"})
	if !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
}

func TestGenerateRejectsEmptyImageList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"images": []string{}})
	})

	_, err := client.Generate(context.Background(), diffusion.Request{Prompt: "anything"})
	if !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
}
