package capability

import (
	"context"
	"fmt"
	"time"

	"genarrative/internal/metrics"
	"genarrative/internal/sis"
)

// TextCompleter is the slice of the textgen client the adapter needs.
type TextCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// TextAdapter renders prose through an OpenAI-compatible backend.
type TextAdapter struct {
	client           TextCompleter
	defaultWordCount int
}

// NewTextAdapter wires the prose capability.
func NewTextAdapter(client TextCompleter, defaultWordCount int) *TextAdapter {
	if defaultWordCount <= 0 {
		defaultWordCount = 50
	}
	return &TextAdapter{client: client, defaultWordCount: defaultWordCount}
}

// Modality returns ModalityText.
func (a *TextAdapter) Modality() Modality { return ModalityText }

// Generate produces prose for the resolved prompt.
func (a *TextAdapter) Generate(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveAdapterCall(string(ModalityText), start, err) }()

	wordCount := req.WordCount
	if wordCount <= 0 {
		wordCount = a.defaultWordCount
	}
	system := fmt.Sprintf(
		"You are a fiction writer. Write approximately %d words of narrative prose. Output only the prose, no titles or commentary.",
		wordCount)

	prose, err := a.client.Complete(ctx, system, req.Prompt)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:      []byte(prose),
		MIMEType:  "text/plain; charset=utf-8",
		Extension: ".txt",
		Generator: sis.ProvenanceGenerator{System: "openai-compatible", Model: a.client.Model()},
	}, nil
}
