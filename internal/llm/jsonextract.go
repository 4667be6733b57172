package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy attempts to recover a JSON object from raw model output
type Strategy func(raw string) (map[string]any, bool)

var (
	objectSpanPattern = regexp.MustCompile(`(?s)\{.*\}`)
	fencePattern      = regexp.MustCompile("```json\\n?|\\n?```")
)

// Strategies returns the default ordered extraction strategies
func Strategies() []Strategy {
	return []Strategy{parseTrimmed, parseObjectSpan, parseUnfenced}
}

// ExtractJSON recovers the first JSON object embedded in raw model output.
// It returns nil when no strategy succeeds.
func ExtractJSON(raw string) map[string]any {
	return ExtractJSONWith(raw, Strategies()...)
}

// ExtractJSONWith applies strategies in order and returns the first success
func ExtractJSONWith(raw string, strategies ...Strategy) map[string]any {
	for _, strategy := range strategies {
		if obj, ok := strategy(raw); ok {
			return obj
		}
	}
	return nil
}

// parseTrimmed accepts output that is exactly one JSON object
func parseTrimmed(raw string) (map[string]any, bool) {
	return decodeObject(strings.TrimSpace(raw))
}

// parseObjectSpan takes the span from the first '{' to the last '}'
func parseObjectSpan(raw string) (map[string]any, bool) {
	span := objectSpanPattern.FindString(raw)
	if span == "" {
		return nil, false
	}
	return decodeObject(span)
}

// parseUnfenced strips markdown code fences
func parseUnfenced(raw string) (map[string]any, bool) {
	if obj, ok := decodeObject(strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))); ok {
		return obj, true
	}
	return decodeObject(StripCodeFence(raw))
}

func decodeObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
