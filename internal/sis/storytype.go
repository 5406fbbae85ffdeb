package sis

import "strings"

// StoryType identifies the narrative structure of a story and fixes the
// vocabulary of scene roles its blueprints may use.
type StoryType string

const (
	StoryThreeAct      StoryType = "three_act"
	StoryKishotenketsu StoryType = "kishotenketsu"
	StoryCircular      StoryType = "circular"
	StoryAttempts      StoryType = "attempts"
	StoryCatalog       StoryType = "catalog"
)

// RoleInfo describes one scene role within a story structure.
type RoleInfo struct {
	Name        string
	Description string
	// Repeatable roles (attempt, entry) may appear more than once in a
	// blueprint sequence. Repetition counts are style guidance, not a
	// validated invariant.
	Repeatable bool
}

// StructureInfo describes a story structure: its overview line and the
// ordered role sequence its blueprints must follow.
type StructureInfo struct {
	Overview string
	Roles    []RoleInfo
}

var storyStructures = map[StoryType]StructureInfo{
	StoryThreeAct: {
		Overview: "Drama pattern (difficulty then resolution)",
		Roles: []RoleInfo{
			{Name: "setup", Description: "Introduce characters, setting, and the initial situation."},
			{Name: "conflict", Description: "Escalate problems and obstacles leading to a turning point."},
			{Name: "resolution", Description: "Resolve the main conflict and show the new status quo."},
		},
	},
	StoryKishotenketsu: {
		Overview: "Twist pattern (meaning flips at the end)",
		Roles: []RoleInfo{
			{Name: "ki", Description: "Introduce the situation and characters without strong conflict."},
			{Name: "sho", Description: "Develop the situation and deepen relationships or context."},
			{Name: "ten", Description: "Introduce an unexpected twist that re-frames earlier scenes."},
			{Name: "ketsu", Description: "Conclude by revealing the new meaning after the twist."},
		},
	},
	StoryCircular: {
		Overview: "Journey-and-return pattern (leave, change, return)",
		Roles: []RoleInfo{
			{Name: "home_start", Description: "Show the ordinary world before the journey begins."},
			{Name: "away", Description: "Depict the journey into a different place, state, or situation."},
			{Name: "change", Description: "Show events that transform the character or situation."},
			{Name: "home_end", Description: "Return to the starting point, highlighting what has changed."},
		},
	},
	StoryAttempts: {
		Overview: "Multiple-attempts pattern (trial and error)",
		Roles: []RoleInfo{
			{Name: "problem", Description: "Define the main problem or goal that must be solved."},
			{Name: "attempt", Description: "Show one or more trials and partial successes or failures.", Repeatable: true},
			{Name: "result", Description: "Reveal the final outcome of the attempts and their consequences."},
		},
	},
	StoryCatalog: {
		Overview: "Catalog pattern (weak ordering)",
		Roles: []RoleInfo{
			{Name: "intro", Description: "Introduce the theme and explain what will be presented."},
			{Name: "entry", Description: "Present one catalog item, character, or example at a time.", Repeatable: true},
			{Name: "outro", Description: "Summarise the catalog and restate the overall impression."},
		},
	},
}

var allStoryTypes = []StoryType{
	StoryThreeAct,
	StoryKishotenketsu,
	StoryCircular,
	StoryAttempts,
	StoryCatalog,
}

// AllStoryTypes returns the ordered list of known story types.
func AllStoryTypes() []StoryType {
	cp := make([]StoryType, len(allStoryTypes))
	copy(cp, allStoryTypes)
	return cp
}

// ParseStoryType converts a string into a known StoryType.
func ParseStoryType(value string) (StoryType, bool) {
	normalized := StoryType(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := storyStructures[normalized]
	return normalized, ok
}

// Structure returns the structure definition for a story type.
func (t StoryType) Structure() (StructureInfo, bool) {
	info, ok := storyStructures[t]
	return info, ok
}

// RoleSequence returns the ordered role names for a story type, or nil
// for an unknown type.
func (t StoryType) RoleSequence() []string {
	info, ok := storyStructures[t]
	if !ok {
		return nil
	}
	roles := make([]string, len(info.Roles))
	for i, role := range info.Roles {
		roles[i] = role.Name
	}
	return roles
}

// HasRole reports whether role belongs to the story type's vocabulary.
func (t StoryType) HasRole(role string) bool {
	info, ok := storyStructures[t]
	if !ok {
		return false
	}
	role = strings.ToLower(strings.TrimSpace(role))
	for _, r := range info.Roles {
		if r.Name == role {
			return true
		}
	}
	return false
}

// AllRoles returns the union of role names across every story type,
// sorted by story type order then role order. Used to validate
// externally supplied role hints before a story type is known.
func AllRoles() []string {
	seen := make(map[string]struct{})
	var roles []string
	for _, t := range allStoryTypes {
		for _, r := range storyStructures[t].Roles {
			if _, ok := seen[r.Name]; ok {
				continue
			}
			seen[r.Name] = struct{}{}
			roles = append(roles, r.Name)
		}
	}
	return roles
}

// KnownRole reports whether role belongs to any story type vocabulary.
func KnownRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, t := range allStoryTypes {
		for _, r := range storyStructures[t].Roles {
			if r.Name == role {
				return true
			}
		}
	}
	return false
}
