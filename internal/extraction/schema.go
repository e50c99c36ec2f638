package extraction

import "github.com/garyjia/mrsl-intake/internal/domain/entity"

// SchemaName labels the response schema for providers that require a name
const SchemaName = "mrsl_extraction"

// ResponseSchema returns the JSON Schema of the model answer: one object with exactly
// the seven record keys, each required and each a string or null.
// A fresh map is returned on every call.
func ResponseSchema() map[string]any {
	properties := make(map[string]any, len(entity.Fields))
	required := make([]any, 0, len(entity.Fields))
	for _, f := range entity.Fields {
		properties[f.String()] = map[string]any{
			"type": []any{"string", "null"},
		}
		required = append(required, f.String())
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}
