package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/tastetrail/tastetrail/pkg/logging"
)

// ExtractorConfig configures the recommendation extractor.
type ExtractorConfig struct {
	Model string
	// MaxTokens bounds completion length to keep cost predictable.
	MaxTokens int
	// Temperature is held low for near-deterministic extraction.
	Temperature float64
	// MaxTranscriptChars truncates the transcript before prompting.
	MaxTranscriptChars int
}

// DefaultExtractorConfig returns default configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Model:              "gpt-4o-mini",
		MaxTokens:          2048,
		Temperature:        0.1,
		MaxTranscriptChars: 24000,
	}
}

// Extractor extracts restaurant recommendation candidates from transcripts.
type Extractor struct {
	config ExtractorConfig
	client LLMClient
	log    logging.Logger
}

// ExtractorOption configures the extractor.
type ExtractorOption func(*Extractor)

// WithExtractorConfig sets the extractor configuration.
func WithExtractorConfig(config ExtractorConfig) ExtractorOption {
	return func(e *Extractor) {
		e.config = config
	}
}

// NewExtractor creates a recommendation extractor.
func NewExtractor(client LLMClient, log logging.Logger, opts ...ExtractorOption) *Extractor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	e := &Extractor{
		config: DefaultExtractorConfig(),
		client: client,
		log:    log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract sends the transcript and title to the LLM and returns validated
// candidates. An empty restaurants array is a valid zero-candidate result,
// not an error. Provider and parse errors propagate to the caller.
func (e *Extractor) Extract(ctx context.Context, transcript, videoTitle string) ([]Candidate, error) {
	resp, err := e.client.Complete(ctx, &CompletionRequest{
		Model:        e.config.Model,
		SystemPrompt: systemPrompt,
		UserPrompt:   BuildUserPrompt(transcript, videoTitle, e.config.MaxTranscriptChars),
		MaxTokens:    e.config.MaxTokens,
		Temperature:  e.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}

	parsed, err := ParseStructuredOutput(resp.Content)
	if err != nil {
		e.log.Warn("failed to parse extraction output",
			logging.F("model", resp.Model),
			logging.Err(err))
		return nil, err
	}

	candidates := make([]Candidate, 0, len(parsed.Restaurants))
	dropped := 0
	for _, raw := range parsed.Restaurants {
		c, ok := validateCandidate(raw)
		if !ok {
			dropped++
			continue
		}
		candidates = append(candidates, c)
	}

	e.log.Debug("extraction complete",
		logging.F("candidates", len(candidates)),
		logging.F("dropped", dropped),
		logging.F("output_tokens", resp.OutputTokens))

	return candidates, nil
}

// validateCandidate applies post-parse validation: non-empty name required,
// missing confidence defaults, low confidence dropped, price normalized.
func validateCandidate(raw rawCandidate) (Candidate, bool) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return Candidate{}, false
	}

	confidence := DefaultConfidence
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	}
	if confidence < MinConfidence {
		return Candidate{}, false
	}

	return Candidate{
		Name:          name,
		Location:      deref(raw.Location),
		Address:       deref(raw.Address),
		Cuisine:       deref(raw.Cuisine),
		DishMentioned: deref(raw.DishMentioned),
		Context:       deref(raw.Context),
		Confidence:    confidence,
		PriceRange:    NormalizePriceRange(deref(raw.PriceRange)),
	}, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
