package sis

// CharacterVisual carries additional visual detail for a character.
type CharacterVisual struct {
	Hair    string `json:"hair,omitempty"`
	Clothes string `json:"clothes,omitempty"`
}

// Character describes one character appearing in a scene or media unit.
type Character struct {
	Name   string           `json:"name,omitempty"`
	Traits []string         `json:"traits,omitempty"`
	Visual *CharacterVisual `json:"visual,omitempty"`
}

// Described reports whether the character carries any traceable
// description. Extraction rejects characters that claim to exist without
// a name, traits, or visual detail.
func (c Character) Described() bool {
	if c.Name != "" || len(c.Traits) > 0 {
		return true
	}
	return c.Visual != nil && (c.Visual.Hair != "" || c.Visual.Clothes != "")
}

// Object describes a salient motif or object and its representative colors.
type Object struct {
	Name   string   `json:"name,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

// CommonSemantics is the shared semantic core of a Scene or Media unit.
type CommonSemantics struct {
	Mood         string      `json:"mood,omitempty"`
	Descriptions []string    `json:"descriptions,omitempty"`
	Location     string      `json:"location,omitempty"`
	Time         string      `json:"time,omitempty"`
	Weather      string      `json:"weather,omitempty"`
	Characters   []Character `json:"characters"`
	Objects      []Object    `json:"objects,omitempty"`
}

// StoryCommonSemantics is the semantic core of a whole story.
type StoryCommonSemantics struct {
	Themes       []string `json:"themes,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// Semantics is the semantics block of a Scene or Media document: the
// common core plus per-modality default policies.
type Semantics struct {
	Common CommonSemantics `json:"common"`
	PolicySet
}

// StorySemantics is the semantics block of a Story document.
type StorySemantics struct {
	Common StoryCommonSemantics `json:"common"`
	PolicySet
}
