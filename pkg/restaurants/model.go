// Package restaurants manages restaurant records and the candidate
// resolution (dedup) policy.
package restaurants

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant is a deduplicated venue referenced by recommendation edges.
// Geocoding fields are filled by a separate enrichment pass, never during
// resolution.
type Restaurant struct {
	ID            uuid.UUID
	Name          string
	Address       string
	City          string
	Country       string
	Cuisine       string
	PriceRange    string
	Latitude      *float64
	Longitude     *float64
	GooglePlaceID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasGeo reports whether the restaurant has been geocoded.
func (r *Restaurant) HasGeo() bool {
	return r.Latitude != nil && r.Longitude != nil
}
