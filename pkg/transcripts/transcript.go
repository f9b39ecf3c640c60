// Package transcripts acquires video transcripts from a primary captioning
// source with a secondary provider fallback.
package transcripts

import "fmt"

// Caption is a single caption entry as returned by the primary provider.
type Caption struct {
	Text         string
	OffsetMillis int
}

// Segment is a timestamped transcript piece, offsets in seconds.
type Segment struct {
	Text   string
	Offset float64
}

// Transcript is the acquired text for one video. Segments is nil when the
// source did not preserve per-caption timing; timestamp reconciliation then
// degrades to a no-op.
type Transcript struct {
	Text     string
	Segments []Segment
	Source   string
}

// Transcript sources.
const (
	SourceCaptions    = "captions"
	SourceFallback    = "fallback"
	SourceDescription = "description"
)

// ErrNoCaptions indicates the primary provider has no caption track for the
// video. Distinct from transport failures.
var ErrNoCaptions = fmt.Errorf("no captions available")

// ProviderError is a fallback-provider failure carrying the HTTP status.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("transcript provider returned status %d: %s", e.StatusCode, e.Message)
}
