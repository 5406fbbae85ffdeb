package generation

import "genarrative/internal/sis"

// Built-in defaults. Generation must stay possible from a nearly-empty
// SIS, so every policy field bottoms out here instead of failing.
var (
	defaultText = sis.TextPolicy{
		Style:       "descriptive narrative",
		Language:    "english",
		Tone:        "neutral",
		PointOfView: "third person",
	}
	defaultVisual = sis.VisualPolicy{
		Style:       "cinematic realism",
		Composition: "wide shot",
		Lighting:    "natural soft light",
		Perspective: "eye level",
	}
	defaultAudio = sis.AudioPolicy{
		Genre:       "ambient orchestral",
		Tempo:       "slow",
		Instruments: []string{"piano", "strings"},
	}
)

// Layers carries the policy snapshots of the three document levels.
// Any pointer may be nil when that level is absent or declares nothing.
type Layers struct {
	Media *sis.PolicySet
	Scene *sis.PolicySet
	Story *sis.PolicySet
}

// ResolveText produces the effective text policy. Resolution is
// field-by-field: an unset field falls through to the next layer, it
// never drags sibling fields with it.
func ResolveText(layers Layers) sis.TextPolicy {
	resolved := sis.TextPolicy{}
	for _, set := range []*sis.PolicySet{layers.Media, layers.Scene, layers.Story} {
		if set == nil || set.Text == nil {
			continue
		}
		policy := set.Text
		if resolved.Style == "" {
			resolved.Style = policy.Style
		}
		if resolved.Language == "" {
			resolved.Language = policy.Language
		}
		if resolved.Tone == "" {
			resolved.Tone = policy.Tone
		}
		if resolved.PointOfView == "" {
			resolved.PointOfView = policy.PointOfView
		}
	}
	if resolved.Style == "" {
		resolved.Style = defaultText.Style
	}
	if resolved.Language == "" {
		resolved.Language = defaultText.Language
	}
	if resolved.Tone == "" {
		resolved.Tone = defaultText.Tone
	}
	if resolved.PointOfView == "" {
		resolved.PointOfView = defaultText.PointOfView
	}
	return resolved
}

// ResolveVisual produces the effective visual policy.
func ResolveVisual(layers Layers) sis.VisualPolicy {
	resolved := sis.VisualPolicy{}
	for _, set := range []*sis.PolicySet{layers.Media, layers.Scene, layers.Story} {
		if set == nil || set.Visual == nil {
			continue
		}
		policy := set.Visual
		if resolved.Style == "" {
			resolved.Style = policy.Style
		}
		if resolved.Composition == "" {
			resolved.Composition = policy.Composition
		}
		if resolved.Lighting == "" {
			resolved.Lighting = policy.Lighting
		}
		if resolved.Perspective == "" {
			resolved.Perspective = policy.Perspective
		}
	}
	fillVisualDefaults(&resolved)
	return resolved
}

func fillVisualDefaults(p *sis.VisualPolicy) {
	if p.Style == "" {
		p.Style = defaultVisual.Style
	}
	if p.Composition == "" {
		p.Composition = defaultVisual.Composition
	}
	if p.Lighting == "" {
		p.Lighting = defaultVisual.Lighting
	}
	if p.Perspective == "" {
		p.Perspective = defaultVisual.Perspective
	}
}

// ResolveAudio produces the effective audio policy.
func ResolveAudio(layers Layers) sis.AudioPolicy {
	resolved := sis.AudioPolicy{}
	for _, set := range []*sis.PolicySet{layers.Media, layers.Scene, layers.Story} {
		if set == nil || set.Audio == nil {
			continue
		}
		policy := set.Audio
		if resolved.Genre == "" {
			resolved.Genre = policy.Genre
		}
		if resolved.Tempo == "" {
			resolved.Tempo = policy.Tempo
		}
		if len(resolved.Instruments) == 0 {
			resolved.Instruments = policy.Instruments
		}
		if resolved.Mood == "" {
			resolved.Mood = policy.Mood
		}
	}
	if resolved.Genre == "" {
		resolved.Genre = defaultAudio.Genre
	}
	if resolved.Tempo == "" {
		resolved.Tempo = defaultAudio.Tempo
	}
	if len(resolved.Instruments) == 0 {
		resolved.Instruments = append([]string{}, defaultAudio.Instruments...)
	}
	return resolved
}
