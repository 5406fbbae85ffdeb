package capability

import (
	"context"
	"time"

	"genarrative/internal/metrics"
	"genarrative/internal/services/diffusion"
	"genarrative/internal/sis"
)

// ImageGenerator is the slice of the diffusion client the adapter needs.
type ImageGenerator interface {
	Generate(ctx context.Context, req diffusion.Request) ([]byte, error)
}

// ImageAdapter renders images through Stable Diffusion WebUI.
type ImageAdapter struct {
	client ImageGenerator
}

// NewImageAdapter wires the image capability.
func NewImageAdapter(client ImageGenerator) *ImageAdapter {
	return &ImageAdapter{client: client}
}

// Modality returns ModalityImage.
func (a *ImageAdapter) Modality() Modality { return ModalityImage }

// Generate produces one PNG for the resolved prompt.
func (a *ImageAdapter) Generate(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveAdapterCall(string(ModalityImage), start, err) }()

	data, err := a.client.Generate(ctx, diffusion.Request{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:      data,
		MIMEType:  "image/png",
		Extension: ".png",
		Generator: sis.ProvenanceGenerator{System: "stable-diffusion-webui"},
	}, nil
}
