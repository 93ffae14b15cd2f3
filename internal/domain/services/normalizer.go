package services

import (
	"encoding/json"
	"strings"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
)

// NormalizeParams coerces raw model-produced arguments to the types the
// tool schema declares. Models frequently hand back string-encoded
// arrays; this unwraps them. Undeclared parameters pass through
// unchanged, declared-but-absent ones are omitted. The function is pure
// and never fails: malformed input degrades to best-effort values.
func NormalizeParams(tool *entities.Tool, raw map[string]any) map[string]any {
	normalized := make(map[string]any, len(raw))

	for name, value := range raw {
		param := tool.Parameter(name)
		if param == nil {
			normalized[name] = value
			continue
		}

		if param.Type == "array" {
			if s, ok := value.(string); ok {
				normalized[name] = parseStringArray(s)
				continue
			}
		}
		normalized[name] = value
	}

	return normalized
}

// parseStringArray interprets a string as an array of strings. A JSON
// array literal is parsed as such; a bracketed string that is not valid
// JSON is split on commas with quotes trimmed; anything else becomes a
// single-element array.
func parseStringArray(s string) []string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return []string{s}
	}

	var parsed []string
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed
	}

	inner := trimmed[1 : len(trimmed)-1]
	var items []string
	for _, item := range strings.Split(inner, ",") {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `"'`)
		if item != "" {
			items = append(items, item)
		}
	}
	if items == nil {
		items = []string{}
	}
	return items
}
