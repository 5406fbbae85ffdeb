package capability

import (
	"fmt"
	"sort"

	"genarrative/internal/config"
	"genarrative/internal/services"
	"genarrative/internal/services/diffusion"
	"genarrative/internal/services/musicgen"
	"genarrative/internal/services/speech"
	"genarrative/internal/services/textgen"
)

// Registry maps modalities to their adapters.
type Registry struct {
	adapters map[Modality]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Modality]Adapter)}
}

// NewRegistryFromConfig wires the production adapters for every
// configured backend.
func NewRegistryFromConfig(cfg *config.Config) *Registry {
	registry := NewRegistry()
	registry.Register(NewTextAdapter(textgen.NewClient(cfg.Backends.Text), cfg.Backends.Text.WordCount))
	registry.Register(NewImageAdapter(diffusion.NewClient(cfg.Backends.Image)))
	registry.Register(NewMusicAdapter(musicgen.NewClient(cfg.Backends.Music)))
	registry.Register(NewSpeechAdapter(speech.NewClient(cfg.Backends.Speech)))
	return registry
}

// Register adds or replaces the adapter for its modality.
func (r *Registry) Register(adapter Adapter) {
	r.adapters[adapter.Modality()] = adapter
}

// Lookup returns the adapter for a modality.
func (r *Registry) Lookup(modality Modality) (Adapter, error) {
	adapter, ok := r.adapters[modality]
	if !ok {
		return nil, services.Wrap(services.ErrUnknownContentKind, "capability", "lookup",
			fmt.Sprintf("no adapter registered for modality %q", modality), nil)
	}
	return adapter, nil
}

// Modalities lists the registered modalities in stable order.
func (r *Registry) Modalities() []Modality {
	out := make([]Modality, 0, len(r.adapters))
	for modality := range r.adapters {
		out = append(out, modality)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
