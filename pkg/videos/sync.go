package videos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tastetrail/tastetrail/pkg/logging"
)

// VideoMetadata is a channel upload as reported by the metadata provider.
type VideoMetadata struct {
	YouTubeID   string
	Title       string
	Description string
	PublishedAt time.Time
	// Duration is the raw ISO-8601 duration string ("PT12M30S").
	Duration string
}

// MetadataProvider lists a channel's uploads. Implemented by the YouTube
// Data API client; faked in tests.
type MetadataProvider interface {
	ListChannelUploads(ctx context.Context, channelID string, limit int) ([]VideoMetadata, error)
}

// VideoStore is the persistence surface the syncer needs.
type VideoStore interface {
	Upsert(ctx context.Context, v *Video) error
}

// SyncReport summarizes one channel sync run.
type SyncReport struct {
	ChannelID string
	Fetched   int
	Suitable  int
	Upserted  int
	Skipped   []string
}

// Syncer pulls channel uploads, filters out unsuitable ones, and upserts the
// rest so the pipeline can pick them up.
type Syncer struct {
	provider MetadataProvider
	store    VideoStore
	log      logging.Logger
}

// NewSyncer creates a channel syncer.
func NewSyncer(provider MetadataProvider, store VideoStore, log logging.Logger) *Syncer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Syncer{provider: provider, store: store, log: log}
}

// SyncChannel ingests up to limit uploads from the given channel for the
// given influencer. Unsuitable videos are counted and skipped, not stored.
func (s *Syncer) SyncChannel(ctx context.Context, channelID string, influencerID uuid.UUID, limit int) (*SyncReport, error) {
	uploads, err := s.provider.ListChannelUploads(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing uploads for channel %s: %w", channelID, err)
	}

	report := &SyncReport{ChannelID: channelID, Fetched: len(uploads)}

	for _, u := range uploads {
		seconds := ParseISODuration(u.Duration)
		if !IsSuitable(seconds, u.Title) {
			report.Skipped = append(report.Skipped, u.YouTubeID)
			continue
		}
		report.Suitable++

		published := u.PublishedAt
		v := &Video{
			YouTubeID:       u.YouTubeID,
			InfluencerID:    &influencerID,
			Title:           u.Title,
			Description:     u.Description,
			PublishedAt:     &published,
			DurationRaw:     u.Duration,
			DurationSeconds: seconds,
		}
		if err := s.store.Upsert(ctx, v); err != nil {
			s.log.Warn("failed to upsert video",
				logging.F("youtube_id", u.YouTubeID),
				logging.Err(err))
			report.Skipped = append(report.Skipped, u.YouTubeID)
			continue
		}
		report.Upserted++
	}

	s.log.Info("channel sync complete",
		logging.F("channel_id", channelID),
		logging.F("fetched", report.Fetched),
		logging.F("suitable", report.Suitable),
		logging.F("upserted", report.Upserted))

	return report, nil
}
