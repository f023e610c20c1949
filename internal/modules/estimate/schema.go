package estimate

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// estimateSchema mirrors the object BuildPrompt asks the model for.
// Violations become warnings on the Result; they never fail a request.
const estimateSchema = `{
  "type": "object",
  "required": ["origin", "destination", "travelers", "distance_km", "emissions", "recommendation", "recommendation_reason", "eco_fact"],
  "properties": {
    "origin":      {"type": "string"},
    "destination": {"type": "string"},
    "travelers":   {"type": "integer", "minimum": 1},
    "distance_km": {"type": "number", "minimum": 0},
    "emissions": {
      "type": "object",
      "required": ["car", "bus", "ev", "train"],
      "properties": {
        "car":   {"type": "number", "minimum": 0},
        "bus":   {"type": "number", "minimum": 0},
        "ev":    {"type": "number", "minimum": 0},
        "train": {"type": "number", "minimum": 0}
      }
    },
    "recommendation":        {"type": "string"},
    "recommendation_reason": {"type": "string"},
    "eco_fact":              {"type": "string"},
    "car_vs_train_savings":  {"type": "number"}
  }
}`

var compiledSchema = mustCompileSchema(estimateSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("estimate: invalid schema: %v", err))
	}
	return s
}

// schemaWarnings validates doc and returns one message per violation.
func schemaWarnings(doc []byte) []string {
	res, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return []string{"schema check failed: " + err.Error()}
	}
	if res.Valid() {
		return nil
	}
	out := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		out = append(out, "schema: "+e.String())
	}
	return out
}
