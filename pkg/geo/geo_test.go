package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
)

type fakePlacesClient struct {
	places map[string]*Place
}

func (f *fakePlacesClient) FindPlace(_ context.Context, name, _ string) (*Place, error) {
	if p, ok := f.places[name]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

type fakeGeoStore struct {
	pending []*restaurants.Restaurant
	updated map[uuid.UUID]*Place
}

func (f *fakeGeoStore) ListMissingGeo(_ context.Context, limit int) ([]*restaurants.Restaurant, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeGeoStore) UpdateGeo(_ context.Context, id uuid.UUID, lat, lng float64, placeID string) error {
	if f.updated == nil {
		f.updated = map[uuid.UUID]*Place{}
	}
	f.updated[id] = &Place{PlaceID: placeID, Latitude: lat, Longitude: lng}
	return nil
}

func TestEnrichBatch(t *testing.T) {
	found := &restaurants.Restaurant{ID: uuid.New(), Name: "Pasta House", City: "Rome"}
	missing := &restaurants.Restaurant{ID: uuid.New(), Name: "Ghost Kitchen"}

	store := &fakeGeoStore{pending: []*restaurants.Restaurant{found, missing}}
	client := &fakePlacesClient{places: map[string]*Place{
		"Pasta House": {PlaceID: "place-1", Latitude: 41.9, Longitude: 12.5},
	}}

	enricher := NewEnricher(client, store, logging.NewNopLogger())
	report, err := enricher.EnrichBatch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Enriched)
	assert.Equal(t, 1, report.Failed)

	require.Contains(t, store.updated, found.ID)
	assert.Equal(t, "place-1", store.updated[found.ID].PlaceID)
	assert.Equal(t, 41.9, store.updated[found.ID].Latitude)
	assert.NotContains(t, store.updated, missing.ID)
}

func TestEnrichBatch_RespectsLimit(t *testing.T) {
	var pending []*restaurants.Restaurant
	for i := 0; i < 5; i++ {
		pending = append(pending, &restaurants.Restaurant{ID: uuid.New(), Name: "R"})
	}
	store := &fakeGeoStore{pending: pending}
	client := &fakePlacesClient{}

	enricher := NewEnricher(client, store, logging.NewNopLogger())
	report, err := enricher.EnrichBatch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
}
