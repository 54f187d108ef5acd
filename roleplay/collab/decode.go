package collab

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
)

// decodeStructured parses a model reply that is supposed to be a single
// JSON object. Strict parse first; when the model wraps the object in
// markdown fences or prose, fall back to the widest brace-delimited span.
func decodeStructured[T any](content string) (T, error) {
	var out T

	raw := strings.TrimSpace(content)
	if raw == "" {
		return out, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}

	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return out, fmt.Errorf("%w: no JSON object in model response", contractx.ErrSchemaViolation)
	}

	var fallback T
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fallback); err != nil {
		return out, fmt.Errorf("%w: decode model response: %v", contractx.ErrSchemaViolation, err)
	}
	return fallback, nil
}
