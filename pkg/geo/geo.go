// Package geo enriches stored restaurants with map data. Enrichment runs as
// a separate batch pass, never synchronously during candidate resolution.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
)

// Place is a geocoding result for one venue.
type Place struct {
	PlaceID   string
	Latitude  float64
	Longitude float64
	Address   string
}

// PlacesClient looks up a venue by name and locality.
type PlacesClient interface {
	FindPlace(ctx context.Context, name, city string) (*Place, error)
}

// RestaurantStore is the persistence surface the enricher needs.
type RestaurantStore interface {
	ListMissingGeo(ctx context.Context, limit int) ([]*restaurants.Restaurant, error)
	UpdateGeo(ctx context.Context, id uuid.UUID, lat, lng float64, placeID string) error
}

// EnrichReport summarizes one enrichment batch.
type EnrichReport struct {
	Scanned  int
	Enriched int
	Failed   int
}

// Enricher fills geocoding fields for restaurants that lack them.
type Enricher struct {
	client PlacesClient
	store  RestaurantStore
	log    logging.Logger
}

// NewEnricher creates a geocoding enricher.
func NewEnricher(client PlacesClient, store RestaurantStore, log logging.Logger) *Enricher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Enricher{client: client, store: store, log: log}
}

// EnrichBatch geocodes up to limit restaurants missing coordinates. Lookups
// run sequentially to respect the provider's rate limits; one failure does
// not stop the batch.
func (e *Enricher) EnrichBatch(ctx context.Context, limit int) (*EnrichReport, error) {
	if limit <= 0 {
		limit = 25
	}

	pending, err := e.store.ListMissingGeo(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants missing geo: %w", err)
	}

	report := &EnrichReport{Scanned: len(pending)}
	for _, rest := range pending {
		place, err := e.client.FindPlace(ctx, rest.Name, rest.City)
		if err != nil {
			report.Failed++
			e.log.Warn("place lookup failed",
				logging.F("restaurant", rest.Name),
				logging.Err(err))
			continue
		}

		if err := e.store.UpdateGeo(ctx, rest.ID, place.Latitude, place.Longitude, place.PlaceID); err != nil {
			report.Failed++
			e.log.Warn("failed to store geo data",
				logging.F("restaurant_id", rest.ID.String()),
				logging.Err(err))
			continue
		}
		report.Enriched++
	}

	e.log.Info("geo enrichment complete",
		logging.F("scanned", report.Scanned),
		logging.F("enriched", report.Enriched),
		logging.F("failed", report.Failed))

	return report, nil
}

// HTTPPlacesClient implements PlacesClient against a places search API.
type HTTPPlacesClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewHTTPPlacesClient creates a places client. An empty baseURL uses the
// Google Places text-search endpoint.
func NewHTTPPlacesClient(apiKey, baseURL string, timeout time.Duration) *HTTPPlacesClient {
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	}
	return &HTTPPlacesClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ PlacesClient = (*HTTPPlacesClient)(nil)

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string `json:"place_id"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// FindPlace searches for the venue and returns the top result.
func (c *HTTPPlacesClient) FindPlace(ctx context.Context, name, city string) (*Place, error) {
	query := name
	if city != "" {
		query = name + " " + city
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating places request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing places request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading places response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places api returned status %d", resp.StatusCode)
	}

	var parsed placesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding places response: %w", err)
	}
	if !strings.EqualFold(parsed.Status, "OK") || len(parsed.Results) == 0 {
		return nil, fmt.Errorf("no place found for %q (status %s)", query, parsed.Status)
	}

	top := parsed.Results[0]
	return &Place{
		PlaceID:   top.PlaceID,
		Latitude:  top.Geometry.Location.Lat,
		Longitude: top.Geometry.Location.Lng,
		Address:   top.FormattedAddress,
	}, nil
}
