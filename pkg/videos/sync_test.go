package videos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastetrail/tastetrail/pkg/logging"
)

type fakeMetadataProvider struct {
	uploads []VideoMetadata
	err     error
}

func (f *fakeMetadataProvider) ListChannelUploads(_ context.Context, _ string, _ int) ([]VideoMetadata, error) {
	return f.uploads, f.err
}

type fakeVideoStore struct {
	upserted []*Video
	failOn   string
}

func (f *fakeVideoStore) Upsert(_ context.Context, v *Video) error {
	if v.YouTubeID == f.failOn {
		return errors.New("boom")
	}
	f.upserted = append(f.upserted, v)
	return nil
}

func TestSyncChannel_FiltersUnsuitable(t *testing.T) {
	provider := &fakeMetadataProvider{uploads: []VideoMetadata{
		{YouTubeID: "long1", Title: "Tokyo Food Tour", Duration: "PT15M", PublishedAt: time.Now()},
		{YouTubeID: "short1", Title: "Quick clip", Duration: "PT45S"},
		{YouTubeID: "denied1", Title: "Channel Trailer", Duration: "PT10M"},
		{YouTubeID: "long2", Title: "Osaka Street Food", Duration: "PT8M20S", PublishedAt: time.Now()},
	}}
	store := &fakeVideoStore{}

	syncer := NewSyncer(provider, store, logging.NewNopLogger())
	influencerID := uuid.New()

	report, err := syncer.SyncChannel(context.Background(), "UC123", influencerID, 50)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Fetched)
	assert.Equal(t, 2, report.Suitable)
	assert.Equal(t, 2, report.Upserted)
	assert.ElementsMatch(t, []string{"short1", "denied1"}, report.Skipped)

	require.Len(t, store.upserted, 2)
	assert.Equal(t, "long1", store.upserted[0].YouTubeID)
	assert.Equal(t, 900, store.upserted[0].DurationSeconds)
	assert.Equal(t, &influencerID, store.upserted[0].InfluencerID)
}

func TestSyncChannel_UpsertFailureSkipsVideo(t *testing.T) {
	provider := &fakeMetadataProvider{uploads: []VideoMetadata{
		{YouTubeID: "ok", Title: "Food Tour", Duration: "PT10M"},
		{YouTubeID: "bad", Title: "Another Tour", Duration: "PT10M"},
	}}
	store := &fakeVideoStore{failOn: "bad"}

	syncer := NewSyncer(provider, store, logging.NewNopLogger())

	report, err := syncer.SyncChannel(context.Background(), "UC123", uuid.New(), 50)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Upserted)
	assert.Contains(t, report.Skipped, "bad")
}

func TestSyncChannel_ProviderError(t *testing.T) {
	provider := &fakeMetadataProvider{err: errors.New("quota exceeded")}
	syncer := NewSyncer(provider, &fakeVideoStore{}, logging.NewNopLogger())

	_, err := syncer.SyncChannel(context.Background(), "UC123", uuid.New(), 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
