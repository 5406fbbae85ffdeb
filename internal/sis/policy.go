package sis

// TextPolicy holds per-layer text generation style attributes.
type TextPolicy struct {
	Style       string `json:"style,omitempty"`
	Language    string `json:"language,omitempty"`
	Tone        string `json:"tone,omitempty"`
	PointOfView string `json:"point_of_view,omitempty"`
}

// IsZero reports whether no text attribute is set.
func (p TextPolicy) IsZero() bool {
	return p == TextPolicy{}
}

// VisualPolicy holds per-layer image generation style attributes.
type VisualPolicy struct {
	Style       string `json:"style,omitempty"`
	Composition string `json:"composition,omitempty"`
	Lighting    string `json:"lighting,omitempty"`
	Perspective string `json:"perspective,omitempty"`
}

// IsZero reports whether no visual attribute is set.
func (p VisualPolicy) IsZero() bool {
	return p == VisualPolicy{}
}

// AudioPolicy holds per-layer audio generation style attributes.
type AudioPolicy struct {
	Genre       string   `json:"genre,omitempty"`
	Tempo       string   `json:"tempo,omitempty"`
	Instruments []string `json:"instruments,omitempty"`
	Mood        string   `json:"mood,omitempty"`
}

// IsZero reports whether no audio attribute is set.
func (p AudioPolicy) IsZero() bool {
	return p.Genre == "" && p.Tempo == "" && len(p.Instruments) == 0 && p.Mood == ""
}

// PolicySet groups the three per-modality policies carried by a layer.
// A nil pointer means the layer declares nothing for that modality.
type PolicySet struct {
	Text   *TextPolicy   `json:"text,omitempty"`
	Visual *VisualPolicy `json:"visual,omitempty"`
	Audio  *AudioPolicy  `json:"audio,omitempty"`
}
