package restaurants

import (
	"context"
	"fmt"

	"github.com/tastetrail/tastetrail/pkg/extraction"
	"github.com/tastetrail/tastetrail/pkg/logging"
)

// ResolutionPolicy names the dedup strategy so a merge-on-conflict policy
// can be swapped in deliberately later.
type ResolutionPolicy string

// PolicyFirstMatchNoMerge takes the first fuzzy match and never updates an
// existing restaurant's fields from a new candidate: first-seen data wins
// until an explicit enrichment step overwrites it.
const PolicyFirstMatchNoMerge ResolutionPolicy = "first_match_no_merge"

// RestaurantStore is the persistence surface the resolver needs.
type RestaurantStore interface {
	FindByFuzzyName(ctx context.Context, name, city string) ([]*Restaurant, error)
	Create(ctx context.Context, r *Restaurant) error
}

// Resolver decides create-vs-reuse for extracted candidates.
//
// The read-then-write is not transactionally isolated: two concurrent
// resolutions of the same new name can create duplicate rows. Batches run
// sequentially, so this stays an accepted gap.
type Resolver struct {
	store  RestaurantStore
	policy ResolutionPolicy
	log    logging.Logger
}

// NewResolver creates a resolver with the first-match-no-merge policy.
func NewResolver(store RestaurantStore, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Resolver{store: store, policy: PolicyFirstMatchNoMerge, log: log}
}

// Policy returns the active resolution policy.
func (r *Resolver) Policy() ResolutionPolicy {
	return r.policy
}

// Resolve returns the existing restaurant loosely matching the candidate, or
// creates one from the candidate's fields. The candidate's location hint is
// used as the city both for narrowing the match and for the new record.
func (r *Resolver) Resolve(ctx context.Context, c extraction.Candidate) (*Restaurant, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("candidate has no name")
	}

	matches, err := r.store.FindByFuzzyName(ctx, c.Name, c.Location)
	if err != nil {
		return nil, fmt.Errorf("looking up restaurant %q: %w", c.Name, err)
	}
	if len(matches) > 0 {
		r.log.Debug("candidate resolved to existing restaurant",
			logging.F("candidate", c.Name),
			logging.F("restaurant_id", matches[0].ID.String()))
		return matches[0], nil
	}

	rest := &Restaurant{
		Name:       c.Name,
		Address:    c.Address,
		City:       c.Location,
		Cuisine:    c.Cuisine,
		PriceRange: c.PriceRange,
	}
	if err := r.store.Create(ctx, rest); err != nil {
		return nil, fmt.Errorf("creating restaurant %q: %w", c.Name, err)
	}

	r.log.Info("created restaurant",
		logging.F("name", rest.Name),
		logging.F("city", rest.City),
		logging.F("restaurant_id", rest.ID.String()))

	return rest, nil
}
