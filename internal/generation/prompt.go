package generation

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"genarrative/internal/sis"
)

// titleCaser renders character names consistently regardless of how the
// extractor or a human author capitalized them.
var titleCaser = cases.Title(language.English)

// TextPrompt synthesizes the generation prompt for a prose backend from
// the resolved text policy and the document's semantic core. The output
// is deterministic: identical inputs yield an identical prompt.
func TextPrompt(policy sis.TextPolicy, common sis.CommonSemantics, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s in %s with a %s tone, told from a %s perspective.",
		policy.Style, policy.Language, policy.Tone, policy.PointOfView)
	writeSceneFacts(&b, common, summary)
	return b.String()
}

// VisualPrompt synthesizes the prompt for an image backend. Visual
// policy terms lead so diffusion models weight them heaviest.
func VisualPrompt(policy sis.VisualPolicy, common sis.CommonSemantics, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s, %s, %s.",
		policy.Style, policy.Composition, policy.Lighting, policy.Perspective)
	writeSceneFacts(&b, common, summary)
	return b.String()
}

// AudioPrompt synthesizes the prompt for a music backend. Audio
// backends respond to short comma-joined descriptors rather than prose,
// so scene facts are reduced to mood and location.
func AudioPrompt(policy sis.AudioPolicy, common sis.CommonSemantics, summary string) string {
	parts := []string{policy.Genre, policy.Tempo + " tempo"}
	if len(policy.Instruments) > 0 {
		parts = append(parts, "featuring "+strings.Join(policy.Instruments, ", "))
	}
	mood := policy.Mood
	if mood == "" {
		mood = common.Mood
	}
	if mood != "" {
		parts = append(parts, mood+" mood")
	}
	if common.Location != "" {
		parts = append(parts, "evoking "+common.Location)
	}
	if summary != "" {
		parts = append(parts, summary)
	}
	return strings.Join(parts, ", ")
}

// NarrationText returns the text a speech backend should read verbatim.
// Speech generation never invents content; it voices the summary and,
// when present, the scene descriptions in document order.
func NarrationText(common sis.CommonSemantics, summary string) string {
	parts := make([]string, 0, 1+len(common.Descriptions))
	if summary != "" {
		parts = append(parts, summary)
	}
	parts = append(parts, common.Descriptions...)
	return strings.Join(parts, " ")
}

// writeSceneFacts appends the shared semantic facts in a fixed order:
// summary, setting, characters, objects, descriptions. Slice fields are
// emitted in document order, which the extractor already fixed.
func writeSceneFacts(b *strings.Builder, common sis.CommonSemantics, summary string) {
	if summary != "" {
		b.WriteString(" Scene: ")
		b.WriteString(summary)
	}
	setting := settingClause(common)
	if setting != "" {
		b.WriteString(" Setting: ")
		b.WriteString(setting)
		b.WriteString(".")
	}
	for _, ch := range common.Characters {
		b.WriteString(" Character: ")
		b.WriteString(characterClause(ch))
		b.WriteString(".")
	}
	for _, obj := range common.Objects {
		b.WriteString(" Object: ")
		b.WriteString(objectClause(obj))
		b.WriteString(".")
	}
	for _, desc := range common.Descriptions {
		b.WriteString(" ")
		b.WriteString(desc)
	}
}

func settingClause(common sis.CommonSemantics) string {
	parts := make([]string, 0, 4)
	if common.Location != "" {
		parts = append(parts, common.Location)
	}
	if common.Time != "" {
		parts = append(parts, common.Time)
	}
	if common.Weather != "" {
		parts = append(parts, common.Weather)
	}
	if common.Mood != "" {
		parts = append(parts, common.Mood+" atmosphere")
	}
	return strings.Join(parts, ", ")
}

func characterClause(ch sis.Character) string {
	name := ch.Name
	if name == "" {
		name = "an unnamed figure"
	} else {
		name = titleCaser.String(name)
	}
	parts := []string{name}
	if len(ch.Traits) > 0 {
		parts = append(parts, strings.Join(ch.Traits, ", "))
	}
	if ch.Visual != nil {
		if ch.Visual.Hair != "" {
			parts = append(parts, ch.Visual.Hair+" hair")
		}
		if ch.Visual.Clothes != "" {
			parts = append(parts, "wearing "+ch.Visual.Clothes)
		}
	}
	return strings.Join(parts, ", ")
}

func objectClause(obj sis.Object) string {
	if len(obj.Colors) == 0 {
		return obj.Name
	}
	return strings.Join(obj.Colors, " and ") + " " + obj.Name
}
