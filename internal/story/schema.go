package story

import "encoding/json"

// structureSchema constrains the story-type inference call. "unknown"
// is a legal answer so an uncertain model can say so instead of picking
// a type at random; we surface that as an error rather than defaulting.
var structureSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "story_type": {
      "type": "string",
      "enum": ["three_act", "kishotenketsu", "circular", "attempts", "catalog", "unknown"]
    },
    "title": {"type": "string"},
    "summary": {"type": "string"}
  },
  "required": ["story_type", "title", "summary"]
}`)

const structureSystemPrompt = `You are a story analyst. Given a sequence of scene descriptions,
decide which narrative structure the scenes collectively follow:
three_act (difficulty then resolution), kishotenketsu (meaning flips at
the end), circular (leave, change, return), attempts (trial and error),
or catalog (weak ordering of entries). Answer "unknown" if the scenes
fit none clearly or more than one equally well. Also propose a short
title and a one-paragraph summary for the whole story.`

// expansionSchema mirrors the extraction payload shape: a blueprint
// expands into the same flat scene fields the extractor produces.
var expansionSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "summary": {"type": "string"},
    "mood": {"type": "string"},
    "location": {"type": "string"},
    "time": {"type": "string"},
    "weather": {"type": "string"},
    "descriptions": {"type": "array", "items": {"type": "string"}},
    "characters": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "traits": {"type": "array", "items": {"type": "string"}},
          "visual": {
            "type": "object",
            "properties": {
              "hair": {"type": "string"},
              "clothes": {"type": "string"}
            }
          }
        }
      }
    },
    "objects": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "colors": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name"]
      }
    }
  },
  "required": ["summary", "characters", "objects", "descriptions"]
}`)

const expansionSystemPrompt = `You are a story developer. You receive one terse blueprint line from a
story outline and expand it into a full scene: a fresh multi-sentence
summary, mood, location, time of day, weather, characters with visual
detail, salient objects, and descriptive sentences. Invent concrete
detail consistent with the story context, but never repeat the
blueprint wording itself. Every character you introduce must carry a
name, traits, or visual detail.`
