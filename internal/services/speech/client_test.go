package speech_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"genarrative/internal/config"
	"genarrative/internal/services"
	"genarrative/internal/services/speech"
)

func wavBytes() []byte {
	data := []byte("RIFF????WAVEfmt ")
	return append(data, make([]byte, 16)...)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *speech.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return speech.NewClient(config.Speech{BaseURL: server.URL})
}

func TestSynthesizeReturnsWAV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("text"); got != "The keeper lights the lamp." {
			t.Errorf("unexpected text: %q", got)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wavBytes())
	})

	audio, err := client.Synthesize(context.Background(), "The keeper lights the lamp.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !bytes.HasPrefix(audio, []byte("RIFF")) {
		t.Fatalf("unexpected audio bytes: %v", audio[:4])
	}
}

func TestSynthesizeRequiresText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})

	_, err := client.Synthesize(context.Background(), "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSynthesizeMapsServerFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice model missing", http.StatusInternalServerError)
	})

	_, err := client.Synthesize(context.Background(), "hello")
	if !errors.Is(err, services.ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}

func TestSynthesizeRejectsNonWAVResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>error page</html>"))
	})

	_, err := client.Synthesize(context.Background(), "hello")
	if !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
}
