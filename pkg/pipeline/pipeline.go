// Package pipeline drives a video from unprocessed to processed: transcript
// acquisition, LLM extraction, timestamp reconciliation, restaurant
// resolution, and recommendation persistence, with partial-failure handling
// at each step.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tastetrail/tastetrail/pkg/extraction"
	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/reconcile"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
	"github.com/tastetrail/tastetrail/pkg/transcripts"
	"github.com/tastetrail/tastetrail/pkg/videos"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
	"github.com/tastetrail/tastetrail/pkg/recommendations"
)

// DefaultBatchLimit bounds a batch run when the caller does not supply one.
// Kept small to stay under external provider quota budgets.
const DefaultBatchLimit = 5

// TranscriptAcquirer obtains a transcript for a video id.
type TranscriptAcquirer interface {
	Acquire(ctx context.Context, videoID string) (*transcripts.Transcript, error)
}

// RecommendationExtractor turns transcript text into candidates.
type RecommendationExtractor interface {
	Extract(ctx context.Context, transcript, videoTitle string) ([]extraction.Candidate, error)
}

// CandidateResolver decides create-vs-reuse for one candidate.
type CandidateResolver interface {
	Resolve(ctx context.Context, c extraction.Candidate) (*restaurants.Restaurant, error)
}

// VideoStore is the video persistence surface the pipeline needs.
type VideoStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*videos.Video, error)
	FindUnprocessed(ctx context.Context, minDurationSeconds, limit int) ([]*videos.Video, error)
	SaveTranscript(ctx context.Context, id uuid.UUID, text, source string) error
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// EdgeStore persists recommendation edges.
type EdgeStore interface {
	Insert(ctx context.Context, rec *recommendations.Recommendation) error
	Exists(ctx context.Context, videoID, restaurantID uuid.UUID) (bool, error)
}

// Result summarizes one video's run.
type Result struct {
	VideoID          uuid.UUID
	TranscriptSource string
	Candidates       int
	EdgesCreated     int
	EdgesSkipped     int
	CandidateErrors  int
}

// BatchFailure records one failed video within a batch.
type BatchFailure struct {
	VideoID uuid.UUID
	Error   string
}

// BatchReport summarizes a batch run. A single video's failure never stops
// the batch, so Failed entries sit alongside successful Results.
type BatchReport struct {
	Total     int
	Processed int
	Failed    int
	Results   []*Result
	Failures  []BatchFailure
}

// Config holds pipeline tuning knobs.
type Config struct {
	BatchLimit         int
	MinDurationSeconds int
}

// DefaultConfig returns default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		BatchLimit:         DefaultBatchLimit,
		MinDurationSeconds: videos.MinSuitableDurationSeconds,
	}
}

// Pipeline orchestrates video processing. All collaborators are injected so
// tests can substitute fakes.
type Pipeline struct {
	config    Config
	videoSt   VideoStore
	edgeSt    EdgeStore
	acquirer  TranscriptAcquirer
	extractor RecommendationExtractor
	resolver  CandidateResolver
	metrics   *Metrics
	log       logging.Logger
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithConfig sets the pipeline configuration.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) { p.config = cfg }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a processing pipeline.
func New(
	videoStore VideoStore,
	edgeStore EdgeStore,
	acquirer TranscriptAcquirer,
	extractor RecommendationExtractor,
	resolver CandidateResolver,
	log logging.Logger,
	opts ...Option,
) *Pipeline {
	if log == nil {
		log = logging.NewNopLogger()
	}
	p := &Pipeline{
		config:    DefaultConfig(),
		videoSt:   videoStore,
		edgeSt:    edgeStore,
		acquirer:  acquirer,
		extractor: extractor,
		resolver:  resolver,
		log:       log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessVideo runs the full pipeline for one video. Already-processed
// videos are rejected with ErrAlreadyProcessed and nothing is mutated.
// Unrecovered transcript/extraction errors mark the video failed; the video
// then waits for an operator reset before becoming eligible again.
func (p *Pipeline) ProcessVideo(ctx context.Context, videoID uuid.UUID) (*Result, error) {
	video, err := p.videoSt.GetByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("loading video %s: %w", videoID, err)
	}

	if video.Processed {
		return nil, fmt.Errorf("video %s: %w", videoID, tterrors.ErrAlreadyProcessed)
	}

	log := p.log.With(logging.F("video_id", videoID.String()), logging.F("youtube_id", video.YouTubeID))
	log.Info("processing video", logging.F("title", video.Title))

	text, segments, source := p.acquireText(ctx, video, log)

	if strings.TrimSpace(text) == "" {
		err := fmt.Errorf("video %s has no transcript and no description: %w",
			video.YouTubeID, tterrors.ErrEmptyContent)
		p.failVideo(ctx, video.ID, err, "transcript", log)
		return nil, err
	}

	candidates, err := p.extractor.Extract(ctx, text, video.Title)
	if err != nil {
		p.failVideo(ctx, video.ID, err, "extraction", log)
		return nil, err
	}

	candidates = p.reconcileCandidates(segments, candidates, log)

	result := &Result{
		VideoID:          video.ID,
		TranscriptSource: source,
		Candidates:       len(candidates),
	}

	for _, c := range candidates {
		if err := p.persistCandidate(ctx, video.ID, c); err != nil {
			if tterrors.IsAlreadyExists(err) {
				result.EdgesSkipped++
				continue
			}
			// One candidate's failure never aborts the rest of the video.
			result.CandidateErrors++
			log.Warn("failed to persist candidate",
				logging.F("candidate", c.Name),
				logging.Err(err))
			continue
		}
		result.EdgesCreated++
	}

	if err := p.videoSt.MarkProcessed(ctx, video.ID); err != nil {
		return nil, fmt.Errorf("marking video processed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.VideosProcessed.Inc()
		p.metrics.EdgesCreated.Add(float64(result.EdgesCreated))
	}

	log.Info("video processed",
		logging.F("candidates", result.Candidates),
		logging.F("edges_created", result.EdgesCreated),
		logging.F("edges_skipped", result.EdgesSkipped),
		logging.F("transcript_source", source))

	return result, nil
}

// ProcessBatch pulls up to limit pending videos (duration-filtered, newest
// first) and runs them sequentially. Processing stays serial to respect
// third-party rate limits.
func (p *Pipeline) ProcessBatch(ctx context.Context, limit int) (*BatchReport, error) {
	if limit <= 0 {
		limit = p.config.BatchLimit
	}

	pending, err := p.videoSt.FindUnprocessed(ctx, p.config.MinDurationSeconds, limit)
	if err != nil {
		return nil, fmt.Errorf("finding unprocessed videos: %w", err)
	}

	report := &BatchReport{Total: len(pending)}
	for _, video := range pending {
		result, err := p.ProcessVideo(ctx, video.ID)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, BatchFailure{
				VideoID: video.ID,
				Error:   err.Error(),
			})
			continue
		}
		report.Processed++
		report.Results = append(report.Results, result)
	}

	p.log.Info("batch complete",
		logging.F("total", report.Total),
		logging.F("processed", report.Processed),
		logging.F("failed", report.Failed))

	return report, nil
}

// acquireText resolves the video's text in priority order: stored transcript,
// freshly acquired transcript, then the video description. This step never
// hard-fails; an empty result is caught by the caller.
func (p *Pipeline) acquireText(ctx context.Context, video *videos.Video, log logging.Logger) (string, []transcripts.Segment, string) {
	if stored := strings.TrimSpace(video.TranscriptText()); stored != "" {
		source := video.TranscriptSource
		if source == "" {
			source = transcripts.SourceCaptions
		}
		// Per-caption offsets are not persisted, so reconciliation degrades
		// to a no-op on cached transcripts.
		return stored, nil, source
	}

	tr, err := p.acquirer.Acquire(ctx, video.YouTubeID)
	if err != nil {
		log.Warn("transcript acquisition failed, falling back to description", logging.Err(err))
		if p.metrics != nil {
			p.metrics.TranscriptFallbacks.Inc()
		}
		return video.Description, nil, transcripts.SourceDescription
	}

	if err := p.videoSt.SaveTranscript(ctx, video.ID, tr.Text, tr.Source); err != nil {
		// Cache write only; the in-memory transcript still drives this run.
		log.Warn("failed to persist transcript", logging.Err(err))
	}

	return tr.Text, tr.Segments, tr.Source
}

// reconcileCandidates is best-effort: any panic from the heuristic falls
// back to the unreconciled candidates rather than failing the video.
func (p *Pipeline) reconcileCandidates(segments []transcripts.Segment, candidates []extraction.Candidate, log logging.Logger) (out []extraction.Candidate) {
	out = candidates
	defer func() {
		if r := recover(); r != nil {
			log.Warn("timestamp reconciliation panicked",
				logging.F("panic", fmt.Sprintf("%v", r)))
			out = candidates
		}
	}()
	out = reconcile.Reconcile(segments, candidates)
	return out
}

// persistCandidate resolves one candidate and inserts its edge. Existing
// (video, restaurant) pairs surface as ErrAlreadyExists for the caller to
// skip: first write wins.
func (p *Pipeline) persistCandidate(ctx context.Context, videoID uuid.UUID, c extraction.Candidate) error {
	restaurant, err := p.resolver.Resolve(ctx, c)
	if err != nil {
		return fmt.Errorf("resolving candidate %q: %w", c.Name, err)
	}

	exists, err := p.edgeSt.Exists(ctx, videoID, restaurant.ID)
	if err != nil {
		return fmt.Errorf("checking edge existence: %w", err)
	}
	if exists {
		return fmt.Errorf("edge exists: %w", tterrors.ErrAlreadyExists)
	}

	return p.edgeSt.Insert(ctx, &recommendations.Recommendation{
		VideoID:       videoID,
		RestaurantID:  restaurant.ID,
		DishMentioned: c.DishMentioned,
		ContextQuote:  c.Context,
		Confidence:    c.Confidence,
		MentionedAt:   c.MentionedAt,
	})
}

// failVideo records the terminal failure state with a classified error code.
func (p *Pipeline) failVideo(ctx context.Context, videoID uuid.UUID, cause error, stage string, log logging.Logger) {
	pe := tterrors.ClassifyError(cause, stage)
	if markErr := p.videoSt.MarkFailed(ctx, videoID, pe.Error()); markErr != nil {
		log.Error("failed to record video failure", logging.Err(markErr))
	}
	if p.metrics != nil {
		p.metrics.VideosFailed.WithLabelValues(string(pe.Code)).Inc()
	}
	log.Error("video processing failed",
		logging.F("stage", stage),
		logging.F("code", string(pe.Code)),
		logging.Err(cause))
}
