package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastetrail/tastetrail/pkg/extraction"
	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
	"github.com/tastetrail/tastetrail/pkg/transcripts"
	"github.com/tastetrail/tastetrail/pkg/videos"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
	"github.com/tastetrail/tastetrail/pkg/recommendations"
)

type fakeVideoStore struct {
	videos      map[uuid.UUID]*videos.Video
	unprocessed []*videos.Video
	transcripts map[uuid.UUID]string
	failures    map[uuid.UUID]string
	processed   map[uuid.UUID]bool
}

func newFakeVideoStore(vs ...*videos.Video) *fakeVideoStore {
	s := &fakeVideoStore{
		videos:      map[uuid.UUID]*videos.Video{},
		transcripts: map[uuid.UUID]string{},
		failures:    map[uuid.UUID]string{},
		processed:   map[uuid.UUID]bool{},
	}
	for _, v := range vs {
		s.videos[v.ID] = v
		s.unprocessed = append(s.unprocessed, v)
	}
	return s
}

func (s *fakeVideoStore) GetByID(_ context.Context, id uuid.UUID) (*videos.Video, error) {
	v, ok := s.videos[id]
	if !ok {
		return nil, tterrors.ErrNotFound
	}
	return v, nil
}

func (s *fakeVideoStore) FindUnprocessed(_ context.Context, minDuration, limit int) ([]*videos.Video, error) {
	var out []*videos.Video
	for _, v := range s.unprocessed {
		if v.Processed || v.DurationSeconds <= minDuration {
			continue
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeVideoStore) SaveTranscript(_ context.Context, id uuid.UUID, text, source string) error {
	s.transcripts[id] = text
	if v, ok := s.videos[id]; ok {
		v.Transcript = &text
		v.TranscriptSource = source
	}
	return nil
}

func (s *fakeVideoStore) MarkProcessed(_ context.Context, id uuid.UUID) error {
	s.processed[id] = true
	delete(s.failures, id)
	if v, ok := s.videos[id]; ok {
		v.Processed = true
		v.ProcessingError = ""
	}
	return nil
}

func (s *fakeVideoStore) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	s.failures[id] = errMsg
	if v, ok := s.videos[id]; ok {
		v.ProcessingError = errMsg
	}
	return nil
}

type fakeEdgeStore struct {
	edges     []*recommendations.Recommendation
	insertErr error
}

func (s *fakeEdgeStore) Insert(_ context.Context, rec *recommendations.Recommendation) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	rec.ID = uuid.New()
	s.edges = append(s.edges, rec)
	return nil
}

func (s *fakeEdgeStore) Exists(_ context.Context, videoID, restaurantID uuid.UUID) (bool, error) {
	for _, e := range s.edges {
		if e.VideoID == videoID && e.RestaurantID == restaurantID {
			return true, nil
		}
	}
	return false, nil
}

type fakeAcquirer struct {
	transcript *transcripts.Transcript
	err        error
	calls      int
}

func (a *fakeAcquirer) Acquire(_ context.Context, _ string) (*transcripts.Transcript, error) {
	a.calls++
	return a.transcript, a.err
}

type fakeExtractor struct {
	candidates []extraction.Candidate
	err        error
	lastText   string
}

func (e *fakeExtractor) Extract(_ context.Context, transcript, _ string) ([]extraction.Candidate, error) {
	e.lastText = transcript
	if e.err != nil {
		return nil, e.err
	}
	return e.candidates, nil
}

type fakeResolver struct {
	byName map[string]*restaurants.Restaurant
	err    error
}

func (r *fakeResolver) Resolve(_ context.Context, c extraction.Candidate) (*restaurants.Restaurant, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.byName == nil {
		r.byName = map[string]*restaurants.Restaurant{}
	}
	if existing, ok := r.byName[c.Name]; ok {
		return existing, nil
	}
	rest := &restaurants.Restaurant{ID: uuid.New(), Name: c.Name, City: c.Location}
	r.byName[c.Name] = rest
	return rest, nil
}

func newVideo(title, description string) *videos.Video {
	return &videos.Video{
		ID:              uuid.New(),
		YouTubeID:       "yt-" + uuid.NewString()[:8],
		Title:           title,
		Description:     description,
		DurationSeconds: 600,
	}
}

func usableTranscript(text string) *transcripts.Transcript {
	return &transcripts.Transcript{
		Text:   text,
		Source: transcripts.SourceCaptions,
		Segments: []transcripts.Segment{
			{Text: text, Offset: 10},
		},
	}
}

func TestProcessVideo_HappyPath(t *testing.T) {
	video := newVideo("Rome Food Tour", "")
	store := newFakeVideoStore(video)
	edges := &fakeEdgeStore{}
	acquirer := &fakeAcquirer{transcript: usableTranscript(
		"I went to Pasta House in Rome, amazing carbonara! You have to try it when visiting.")}
	extractor := &fakeExtractor{candidates: []extraction.Candidate{{
		Name:          "Pasta House",
		Location:      "Rome",
		DishMentioned: "carbonara",
		Context:       "amazing carbonara",
		Confidence:    0.9,
	}}}

	p := New(store, edges, acquirer, extractor, &fakeResolver{}, logging.NewNopLogger())

	result, err := p.ProcessVideo(context.Background(), video.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.EdgesCreated)
	assert.Equal(t, 0, result.EdgesSkipped)
	assert.True(t, store.processed[video.ID])
	assert.Empty(t, video.ProcessingError)

	require.Len(t, edges.edges, 1)
	assert.Equal(t, video.ID, edges.edges[0].VideoID)
	assert.Equal(t, "carbonara", edges.edges[0].DishMentioned)
	assert.Equal(t, 0.9, edges.edges[0].Confidence)
	// Reconciliation found the mention in the single caption segment.
	require.NotNil(t, edges.edges[0].MentionedAt)
	assert.Equal(t, 10, *edges.edges[0].MentionedAt)

	// The transcript was persisted for future runs.
	assert.NotEmpty(t, store.transcripts[video.ID])
}

func TestProcessVideo_AlreadyProcessedConflict(t *testing.T) {
	video := newVideo("Tour", "")
	video.Processed = true
	store := newFakeVideoStore(video)
	edges := &fakeEdgeStore{}
	acquirer := &fakeAcquirer{}

	p := New(store, edges, acquirer, &fakeExtractor{}, &fakeResolver{}, logging.NewNopLogger())

	_, err := p.ProcessVideo(context.Background(), video.ID)
	require.Error(t, err)
	assert.True(t, tterrors.IsAlreadyProcessed(err))

	// Nothing was mutated.
	assert.Zero(t, acquirer.calls)
	assert.Empty(t, edges.edges)
	assert.Empty(t, store.failures)
}

func TestProcessVideo_EmptyContentFailsFast(t *testing.T) {
	// Both transcript sources fail and the description is empty.
	video := newVideo("Tour", "")
	store := newFakeVideoStore(video)
	extractor := &fakeExtractor{}
	acquirer := &fakeAcquirer{err: fmt.Errorf("all sources failed: %w", tterrors.ErrTranscriptUnavailable)}

	p := New(store, &fakeEdgeStore{}, acquirer, extractor, &fakeResolver{}, logging.NewNopLogger())

	_, err := p.ProcessVideo(context.Background(), video.ID)
	require.Error(t, err)
	assert.True(t, tterrors.IsEmptyContent(err))

	// The extractor is never called on empty input.
	assert.Empty(t, extractor.lastText)
	assert.False(t, store.processed[video.ID])
	assert.Contains(t, store.failures[video.ID], string(tterrors.ErrCodeEmptyContent))
}

func TestProcessVideo_DescriptionFallback(t *testing.T) {
	video := newVideo("Tour", "Today we visit the famous Pasta House in Rome for carbonara.")
	store := newFakeVideoStore(video)
	extractor := &fakeExtractor{candidates: []extraction.Candidate{{Name: "Pasta House", Confidence: 0.8}}}
	acquirer := &fakeAcquirer{err: fmt.Errorf("all sources failed: %w", tterrors.ErrTranscriptUnavailable)}

	p := New(store, &fakeEdgeStore{}, acquirer, extractor, &fakeResolver{}, logging.NewNopLogger())

	result, err := p.ProcessVideo(context.Background(), video.ID)
	require.NoError(t, err)

	assert.Equal(t, transcripts.SourceDescription, result.TranscriptSource)
	assert.Equal(t, video.Description, extractor.lastText)
	assert.True(t, store.processed[video.ID])
}

func TestProcessVideo_StoredTranscriptReused(t *testing.T) {
	video := newVideo("Tour", "")
	stored := "cached transcript text mentioning Pasta House and its wonderful carbonara dishes"
	video.Transcript = &stored
	video.TranscriptSource = transcripts.SourceFallback

	store := newFakeVideoStore(video)
	acquirer := &fakeAcquirer{err: errors.New("should not be called")}
	extractor := &fakeExtractor{}

	p := New(store, &fakeEdgeStore{}, acquirer, extractor, &fakeResolver{}, logging.NewNopLogger())

	result, err := p.ProcessVideo(context.Background(), video.ID)
	require.NoError(t, err)

	assert.Zero(t, acquirer.calls)
	assert.Equal(t, stored, extractor.lastText)
	assert.Equal(t, transcripts.SourceFallback, result.TranscriptSource)
}

func TestProcessVideo_ExtractorErrorPropagates(t *testing.T) {
	video := newVideo("Tour", "")
	store := newFakeVideoStore(video)
	acquirer := &fakeAcquirer{transcript: usableTranscript("plenty of usable transcript text for the extractor to consume")}
	extractErr := fmt.Errorf("bad output: %w", tterrors.ErrExtractionParse)
	extractor := &fakeExtractor{err: extractErr}

	p := New(store, &fakeEdgeStore{}, acquirer, extractor, &fakeResolver{}, logging.NewNopLogger())

	_, err := p.ProcessVideo(context.Background(), video.ID)
	require.Error(t, err)
	assert.True(t, tterrors.IsExtractionParse(err))

	assert.False(t, store.processed[video.ID])
	assert.Contains(t, store.failures[video.ID], string(tterrors.ErrCodeParseError))
}

func TestProcessVideo_ZeroCandidatesStillProcessed(t *testing.T) {
	video := newVideo("Tour", "")
	store := newFakeVideoStore(video)
	acquirer := &fakeAcquirer{transcript: usableTranscript("a long chat about travel plans with no restaurants mentioned at all")}
	extractor := &fakeExtractor{candidates: []extraction.Candidate{}}
	edges := &fakeEdgeStore{}

	p := New(store, edges, acquirer, extractor, &fakeResolver{}, logging.NewNopLogger())

	result, err := p.ProcessVideo(context.Background(), video.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Candidates)
	assert.Empty(t, edges.edges)
	assert.True(t, store.processed[video.ID])
}

func TestProcessVideo_CandidateFailureIsolated(t *testing.T) {
	video := newVideo("Tour", "")
	store := newFakeVideoStore(video)
	acquirer := &fakeAcquirer{transcript: usableTranscript("transcript long enough to pass through acquisition and reach extraction")}
	extractor := &fakeExtractor{candidates: []extraction.Candidate{
		{Name: "Works", Confidence: 0.9},
		{Name: "Breaks", Confidence: 0.9},
	}}
	resolver := &resolverFailingOn{name: "Breaks"}
	edges := &fakeEdgeStore{}

	p := New(store, edges, acquirer, extractor, resolver, logging.NewNopLogger())

	result, err := p.ProcessVideo(context.Background(), video.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.EdgesCreated)
	assert.Equal(t, 1, result.CandidateErrors)
	// The video still reaches processed despite the per-candidate failure.
	assert.True(t, store.processed[video.ID])
}

type resolverFailingOn struct {
	name  string
	inner fakeResolver
}

func (r *resolverFailingOn) Resolve(ctx context.Context, c extraction.Candidate) (*restaurants.Restaurant, error) {
	if c.Name == r.name {
		return nil, errors.New("resolution exploded")
	}
	return r.inner.Resolve(ctx, c)
}

func TestProcessVideo_DuplicateEdgeSkipped(t *testing.T) {
	video := newVideo("Tour", "")
	store := newFakeVideoStore(video)
	acquirer := &fakeAcquirer{transcript: usableTranscript("the transcript mentions the same restaurant twice in different segments")}
	extractor := &fakeExtractor{candidates: []extraction.Candidate{
		{Name: "Pasta House", Confidence: 0.9},
		{Name: "Pasta House", Confidence: 0.8},
	}}
	edges := &fakeEdgeStore{}

	p := New(store, edges, acquirer, extractor, &fakeResolver{}, logging.NewNopLogger())

	result, err := p.ProcessVideo(context.Background(), video.ID)
	require.NoError(t, err)

	// First write wins; the duplicate collapses to a skip, not an error.
	assert.Equal(t, 1, result.EdgesCreated)
	assert.Equal(t, 1, result.EdgesSkipped)
	assert.Equal(t, 0, result.CandidateErrors)
	require.Len(t, edges.edges, 1)
}

func TestProcessVideo_NotFound(t *testing.T) {
	p := New(newFakeVideoStore(), &fakeEdgeStore{}, &fakeAcquirer{}, &fakeExtractor{}, &fakeResolver{}, logging.NewNopLogger())
	_, err := p.ProcessVideo(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, tterrors.IsNotFound(err))
}

func TestProcessBatch_IsolatesFailures(t *testing.T) {
	good := newVideo("Good Tour", "")
	bad := newVideo("Bad Tour", "")
	store := newFakeVideoStore(good, bad)

	acquirer := &perVideoAcquirer{
		byID: map[string]*transcripts.Transcript{
			good.YouTubeID: usableTranscript("usable transcript text that easily clears the length threshold"),
		},
	}
	extractor := &fakeExtractor{candidates: []extraction.Candidate{}}

	p := New(store, &fakeEdgeStore{}, acquirer, extractor, &fakeResolver{}, logging.NewNopLogger())

	report, err := p.ProcessBatch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad.ID, report.Failures[0].VideoID)
	assert.NotEmpty(t, report.Failures[0].Error)
}

type perVideoAcquirer struct {
	byID map[string]*transcripts.Transcript
}

func (a *perVideoAcquirer) Acquire(_ context.Context, videoID string) (*transcripts.Transcript, error) {
	if tr, ok := a.byID[videoID]; ok {
		return tr, nil
	}
	return nil, fmt.Errorf("no sources: %w", tterrors.ErrTranscriptUnavailable)
}

func TestProcessBatch_RespectsLimitAndDuration(t *testing.T) {
	short := newVideo("Short", "")
	short.DurationSeconds = 45
	v1 := newVideo("One", "")
	v2 := newVideo("Two", "")
	v3 := newVideo("Three", "")
	store := newFakeVideoStore(short, v1, v2, v3)

	acquirer := &fakeAcquirer{transcript: usableTranscript("a transcript with enough words to pass the usability threshold easily")}
	p := New(store, &fakeEdgeStore{}, acquirer, &fakeExtractor{}, &fakeResolver{}, logging.NewNopLogger())

	report, err := p.ProcessBatch(context.Background(), 2)
	require.NoError(t, err)

	// The 45-second video never enters the batch; the limit caps the rest.
	assert.Equal(t, 2, report.Total)
	assert.False(t, store.processed[short.ID])
}

func TestProcessBatch_DefaultLimit(t *testing.T) {
	var vs []*videos.Video
	for i := 0; i < 8; i++ {
		vs = append(vs, newVideo(fmt.Sprintf("Video %d", i), ""))
	}
	store := newFakeVideoStore(vs...)
	acquirer := &fakeAcquirer{transcript: usableTranscript("a transcript with enough words to pass the usability threshold easily")}

	p := New(store, &fakeEdgeStore{}, acquirer, &fakeExtractor{}, &fakeResolver{}, logging.NewNopLogger())

	report, err := p.ProcessBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchLimit, report.Total)
}
