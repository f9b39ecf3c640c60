package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
)

// rawCandidate mirrors the model's output shape. Confidence is a pointer so
// a missing field can be distinguished from an explicit zero.
type rawCandidate struct {
	Name          string   `json:"name"`
	Location      *string  `json:"location"`
	Address       *string  `json:"address"`
	Cuisine       *string  `json:"cuisine_type"`
	DishMentioned *string  `json:"dish_mentioned"`
	Context       *string  `json:"context"`
	Confidence    *float64 `json:"confidence_score"`
	PriceRange    *string  `json:"price_range"`
}

type extractionOutput struct {
	Restaurants []rawCandidate `json:"restaurants"`
}

// ParseStructuredOutput parses the model's completion text. Strategy: strict
// JSON parse first; on failure, strip markdown fences and extract the first
// balanced top-level {...} span and parse that. Both failing returns an error
// wrapping ErrExtractionParse.
func ParseStructuredOutput(raw string) (*extractionOutput, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty completion: %w", tterrors.ErrExtractionParse)
	}

	var out extractionOutput
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return &out, nil
	}

	span := extractJSONObject(stripFences(trimmed))
	if span == "" {
		return nil, fmt.Errorf("no JSON object found in completion: %w", tterrors.ErrExtractionParse)
	}
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return nil, fmt.Errorf("parsing recovered JSON span: %v: %w", err, tterrors.ErrExtractionParse)
	}
	return &out, nil
}

// stripFences removes a wrapping markdown code fence if present.
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

// extractJSONObject returns the first balanced top-level {...} span,
// respecting string literals and escapes, or empty if none exists.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
