// Package videos manages ingested YouTube videos: suitability filtering,
// channel synchronization, and persistence.
package videos

import (
	"time"

	"github.com/google/uuid"
)

// Video is an ingested YouTube video tracked through the processing pipeline.
type Video struct {
	ID              uuid.UUID
	YouTubeID       string
	InfluencerID    *uuid.UUID
	Title           string
	Description     string
	PublishedAt     *time.Time
	DurationRaw     string
	DurationSeconds int

	// Transcript is lazily populated by the pipeline and acts as a cache
	// across re-processing runs. Nil until acquired.
	Transcript       *string
	TranscriptSource string

	// Processed and ProcessingError are mutually exclusive terminal flags:
	// processed=true implies an empty error.
	Processed       bool
	ProcessingError string
	ProcessedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TranscriptText returns the stored transcript or empty string when unset.
func (v *Video) TranscriptText() string {
	if v.Transcript == nil {
		return ""
	}
	return *v.Transcript
}
