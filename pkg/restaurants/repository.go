package restaurants

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
)

const restaurantColumns = `id, name, address, city, country, cuisine, price_range,
	latitude, longitude, google_place_id, created_at, updated_at`

// SearchFilter narrows a restaurant search. Empty fields are ignored.
type SearchFilter struct {
	Query   string
	City    string
	Cuisine string
	Limit   int
	Offset  int
}

// Repository provides PostgreSQL persistence for restaurants.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a restaurant repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new restaurant.
func (r *Repository) Create(ctx context.Context, rest *Restaurant) error {
	if rest.ID == uuid.Nil {
		rest.ID = uuid.New()
	}
	now := time.Now().UTC()
	rest.CreatedAt = now
	rest.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO restaurants (id, name, address, city, country, cuisine,
			price_range, latitude, longitude, google_place_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rest.ID, rest.Name, rest.Address, rest.City, rest.Country, rest.Cuisine,
		rest.PriceRange, rest.Latitude, rest.Longitude, rest.GooglePlaceID,
		rest.CreatedAt, rest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting restaurant: %w", err)
	}
	return nil
}

// GetByID fetches a restaurant by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
	return scanRestaurant(row)
}

// FindByFuzzyName returns restaurants whose name loosely matches (substring,
// case-insensitive), optionally narrowed by a city hint matched the same
// way. Ordered oldest-first so resolution is stable across runs.
func (r *Repository) FindByFuzzyName(ctx context.Context, name, city string) ([]*Restaurant, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if city != "" {
		rows, err = r.pool.Query(ctx, `
			SELECT `+restaurantColumns+` FROM restaurants
			WHERE name ILIKE '%' || $1 || '%'
			  AND city ILIKE '%' || $2 || '%'
			ORDER BY created_at ASC`, name, city)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+restaurantColumns+` FROM restaurants
			WHERE name ILIKE '%' || $1 || '%'
			ORDER BY created_at ASC`, name)
	}
	if err != nil {
		return nil, fmt.Errorf("finding restaurants by name: %w", err)
	}
	defer rows.Close()
	return scanRestaurants(rows)
}

// Search returns restaurants matching the filter, for the public search API.
func (r *Repository) Search(ctx context.Context, f SearchFilter) ([]*Restaurant, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+restaurantColumns+` FROM restaurants
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR cuisine ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR city ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR cuisine ILIKE '%' || $3 || '%')
		ORDER BY name ASC
		LIMIT $4 OFFSET $5`,
		f.Query, f.City, f.Cuisine, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("searching restaurants: %w", err)
	}
	defer rows.Close()
	return scanRestaurants(rows)
}

// ListMissingGeo returns restaurants awaiting geocoding enrichment.
func (r *Repository) ListMissingGeo(ctx context.Context, limit int) ([]*Restaurant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+restaurantColumns+` FROM restaurants
		WHERE latitude IS NULL OR longitude IS NULL
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants missing geo: %w", err)
	}
	defer rows.Close()
	return scanRestaurants(rows)
}

// UpdateGeo fills the geocoding fields. The only path that overwrites
// existing restaurant data.
func (r *Repository) UpdateGeo(ctx context.Context, id uuid.UUID, lat, lng float64, placeID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE restaurants SET latitude = $2, longitude = $3,
			google_place_id = $4, updated_at = now()
		WHERE id = $1`, id, lat, lng, placeID)
	if err != nil {
		return fmt.Errorf("updating restaurant geo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tterrors.ErrNotFound
	}
	return nil
}

func scanRestaurant(row pgx.Row) (*Restaurant, error) {
	var rest Restaurant
	err := row.Scan(
		&rest.ID, &rest.Name, &rest.Address, &rest.City, &rest.Country,
		&rest.Cuisine, &rest.PriceRange, &rest.Latitude, &rest.Longitude,
		&rest.GooglePlaceID, &rest.CreatedAt, &rest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tterrors.ErrNotFound
		}
		return nil, fmt.Errorf("scanning restaurant: %w", err)
	}
	return &rest, nil
}

func scanRestaurants(rows pgx.Rows) ([]*Restaurant, error) {
	var out []*Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating restaurants: %w", err)
	}
	return out, nil
}
