package extraction

import "encoding/json"

// extractionSchema constrains the structured-output model. The flat
// shape keeps the model's job simple; the dispatcher folds it into the
// nested SIS layout afterwards.
var extractionSchema = json.RawMessage(`{
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
  "required": ["summary", "characters", "objects"]
}`)

const extractionSystemPrompt = `You analyze source material and report only what is actually present.
Describe mood, location, time of day, weather, characters, and salient objects.
If no characters appear, return an empty characters list. Never invent
people, objects, or details that are not in the source.`

const imageUserPrompt = `Describe this image as a scene. Report summary, mood, location, time of day, weather, characters, and salient objects with their colors.`

const textUserPromptPrefix = `Extract the scene described by the following text. Report summary, mood, location, time of day, weather, characters, and salient objects with their colors.

Text:
`
