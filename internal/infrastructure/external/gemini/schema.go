package gemini

import "strings"

// ToResponseSchema translates a JSON Schema into the OpenAPI subset Gemini accepts:
// upper-case type names, "nullable" instead of a null type, and no additionalProperties.
// Object properties keep the order given by "required".
func ToResponseSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}

	out := map[string]any{}
	typ, nullable := schemaType(schema["type"])
	if typ != "" {
		out["type"] = strings.ToUpper(typ)
	}
	if nullable {
		out["nullable"] = true
	}
	if desc, ok := schema["description"].(string); ok {
		out["description"] = desc
	}
	if enum, ok := schema["enum"]; ok {
		out["enum"] = enum
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		converted := make(map[string]any, len(props))
		for name, p := range props {
			if sub, ok := p.(map[string]any); ok {
				converted[name] = ToResponseSchema(sub)
			}
		}
		out["properties"] = converted
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out["items"] = ToResponseSchema(items)
	}

	if required := stringList(schema["required"]); len(required) > 0 {
		out["required"] = required
		out["propertyOrdering"] = required
	}
	return out
}

// schemaType returns the first non-null type and whether null is allowed
func schemaType(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, false
	case []string:
		return schemaType(toAny(t))
	case []any:
		var typ string
		nullable := false
		for _, item := range t {
			s, _ := item.(string)
			if s == "null" {
				nullable = true
			} else if typ == "" {
				typ = s
			}
		}
		return typ, nullable
	}
	return "", false
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
