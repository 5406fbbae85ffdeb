package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"genarrative/internal/config"
	"genarrative/internal/services"
	"genarrative/internal/services/ollama"
)

var testSchema = json.RawMessage(`{"type":"object","properties":{"mood":{"type":"string"}}}`)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ollama.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ollama.NewClient(config.Ollama{
		BaseURL: server.URL,
		Model:   "test-model",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestChatStructuredReturnsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Model    string          `json:"model"`
			Format   json.RawMessage `json:"format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("unexpected model: %q", req.Model)
		}
		if len(req.Format) == 0 {
			t.Error("expected format schema in request")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":   "test-model",
			"message": map[string]any{"role": "assistant", "content": `{"mood":"wistful"}`},
			"done":    true,
		})
	})

	payload, err := client.ChatStructured(context.Background(), ollama.Request{
		System: "Extract semantics.",
		Prompt: "A rainy street at dusk.",
		Schema: testSchema,
	})
	if err != nil {
		t.Fatalf("ChatStructured: %v", err)
	}
	var parsed struct {
		Mood string `json:"mood"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if parsed.Mood != "wistful" {
		t.Fatalf("unexpected mood: %q", parsed.Mood)
	}
}

func TestChatStructuredRequiresSchema(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})

	_, err := client.ChatStructured(context.Background(), ollama.Request{Prompt: "hello"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChatStructuredMapsServerFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusInternalServerError)
	})

	_, err := client.ChatStructured(context.Background(), ollama.Request{
		Prompt: "hello",
		Schema: testSchema,
	})
	if !errors.Is(err, services.ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}

func TestChatStructuredEmptyCompletionIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": ""},
			"done":    true,
		})
	})

	_, err := client.ChatStructured(context.Background(), ollama.Request{
		Prompt: "hello",
		Schema: testSchema,
	})
	if !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
}
