package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RepairJSON extracts a valid JSON object from raw model output.
//
// Models wrap JSON in prose and markdown fences more often than they emit it
// clean. The repair rules are deliberately few and testable:
//
//  1. strip markdown code fences (``` and ```json)
//  2. take the largest balanced-brace substring
//  3. verify the result actually parses
//
// If no rule yields valid JSON the caller must treat the response as a
// failover, never guess further.
func RepairJSON(raw string) (string, error) {
	s := stripFences(raw)

	if json.Valid([]byte(s)) && strings.HasPrefix(strings.TrimSpace(s), "{") {
		return strings.TrimSpace(s), nil
	}

	candidate, ok := largestBalancedObject(s)
	if !ok {
		return "", fmt.Errorf("repair: no JSON object found")
	}
	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("repair: extracted fragment is not valid JSON")
	}
	return candidate, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// largestBalancedObject scans for the longest substring that starts with
// '{', ends with its matching '}', and respects JSON string escaping.
func largestBalancedObject(s string) (string, bool) {
	best := ""
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			switch {
			case escaped:
				escaped = false
			case c == '\\' && inString:
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
				// string contents are opaque
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					if i-start+1 > len(best) {
						best = s[start : i+1]
					}
				}
			}
			if depth == 0 && c == '}' && !inString {
				break
			}
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
