package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/catalyst/ai"
)

const normalizationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "index": {
            "type": "integer",
            "minimum": 0
          },
          "name": {
            "type": "string"
          },
          "description": {
            "type": "string"
          },
          "type": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          },
          "field_confidence": {
            "type": "object",
            "additionalProperties": {
              "type": "number",
              "minimum": 0,
              "maximum": 1
            }
          },
          "reasoning": {
            "type": "array",
            "items": {
              "type": "string"
            }
          },
          "vendor": {
            "type": "string"
          },
          "category": {
            "type": "string"
          }
        },
        "required": ["index", "name", "type", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["items"],
  "additionalProperties": false
}`

const normalizationPromptTemplate = `You normalize raw catalog entries into clean structured items and return them as JSON.

The user message contains numbered raw entries, one per line, in the form "index: raw text".
For each entry produce exactly one result object tagged with that index.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "index" must echo the number in front of the raw entry. Never invent indexes.
- "name" is the cleaned-up item name: fix casing, strip part-number noise, keep model identifiers.
- "type" must match exactly one of the listed values: %s.
- "confidence" is your overall confidence in the classification, from 0 to 1.
- "field_confidence" may score individual fields you are less sure about (keys like "name", "type", "vendor").
- "reasoning" may hold short notes on ambiguous entries; omit it for obvious ones.
- "vendor" and "category" are optional; leave them empty rather than guessing.
- Skip an entry entirely only if it is unintelligible. Do not pad with placeholder results.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input:
0: DELL LAT-5540 LAPTOP 16GB
1: annual support contract, gold tier

Output:
{
  "items": [
    {"index":0,"name":"Dell Latitude 5540 Laptop 16GB","type":"product","confidence":0.95,"vendor":"Dell","category":"laptops"},
    {"index":1,"name":"Annual Support Contract (Gold Tier)","type":"service","confidence":0.9,"reasoning":["recurring contract indicates a service"]}
  ]
}`

// buildSystemPrompt creates the system prompt with type labels embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(normalizationPromptTemplate,
		normalizationResponseSchema,
		strings.Join(ai.TypeLabels, ", "))
}
