package capability

import (
	"context"
	"time"

	"genarrative/internal/metrics"
	"genarrative/internal/sis"
)

// MusicGenerator is the slice of the musicgen client the adapter needs.
type MusicGenerator interface {
	Generate(ctx context.Context, prompt string, durationSeconds int) ([]byte, error)
}

// MusicAdapter renders background music through MusicGen.
type MusicAdapter struct {
	client MusicGenerator
}

// NewMusicAdapter wires the music capability.
func NewMusicAdapter(client MusicGenerator) *MusicAdapter {
	return &MusicAdapter{client: client}
}

// Modality returns ModalityMusic.
func (a *MusicAdapter) Modality() Modality { return ModalityMusic }

// Generate produces one WAV clip for the resolved prompt.
func (a *MusicAdapter) Generate(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveAdapterCall(string(ModalityMusic), start, err) }()

	data, err := a.client.Generate(ctx, req.Prompt, req.DurationSeconds)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:      data,
		MIMEType:  "audio/wav",
		Extension: ".wav",
		Generator: sis.ProvenanceGenerator{System: "musicgen"},
	}, nil
}

// SpeechSynthesizer is the slice of the speech client the adapter needs.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SpeechAdapter narrates text through the TTS backend.
type SpeechAdapter struct {
	client SpeechSynthesizer
}

// NewSpeechAdapter wires the speech capability.
func NewSpeechAdapter(client SpeechSynthesizer) *SpeechAdapter {
	return &SpeechAdapter{client: client}
}

// Modality returns ModalitySpeech.
func (a *SpeechAdapter) Modality() Modality { return ModalitySpeech }

// Generate narrates the prompt text and returns WAV bytes. Speech takes
// the prompt verbatim; it is narration, not re-composition.
func (a *SpeechAdapter) Generate(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveAdapterCall(string(ModalitySpeech), start, err) }()

	data, err := a.client.Synthesize(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:      data,
		MIMEType:  "audio/wav",
		Extension: ".wav",
		Generator: sis.ProvenanceGenerator{System: "coqui-tts"},
	}, nil
}
