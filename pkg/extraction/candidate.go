// Package extraction turns video transcripts into restaurant recommendation
// candidates via an LLM completion call with structured-output parsing.
package extraction

// MinConfidence is the floor below which candidates are discarded.
const MinConfidence = 0.6

// DefaultConfidence is assumed when the model omits a confidence value.
const DefaultConfidence = 0.8

// Canonical price range tokens. Anything else is normalized to empty.
var canonicalPriceRanges = map[string]bool{
	"$":    true,
	"$$":   true,
	"$$$":  true,
	"$$$$": true,
}

// Candidate is an AI-proposed restaurant mention awaiting resolution. It is
// ephemeral: never persisted as-is.
type Candidate struct {
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Address       string  `json:"address"`
	Cuisine       string  `json:"cuisine_type"`
	DishMentioned string  `json:"dish_mentioned"`
	Context       string  `json:"context"`
	Confidence    float64 `json:"confidence_score"`
	PriceRange    string  `json:"price_range"`

	// MentionedAt is the estimated playback offset in whole seconds, filled
	// by timestamp reconciliation. Nil when no confident match was found.
	MentionedAt *int `json:"mentioned_at,omitempty"`
}

// NormalizePriceRange maps a raw model value onto the canonical tokens,
// returning empty for anything unrecognized rather than rejecting the
// candidate.
func NormalizePriceRange(raw string) string {
	if canonicalPriceRanges[raw] {
		return raw
	}
	return ""
}
