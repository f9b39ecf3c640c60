// Package recommendations persists the video-to-restaurant recommendation
// edges produced by the processing pipeline.
package recommendations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
)

// Recommendation links one video to one restaurant with mention metadata.
// Unique per (video, restaurant) pair; first write wins.
type Recommendation struct {
	ID            uuid.UUID
	VideoID       uuid.UUID
	RestaurantID  uuid.UUID
	DishMentioned string
	ContextQuote  string
	Confidence    float64
	MentionedAt   *int
	CreatedAt     time.Time
}

// Repository provides PostgreSQL persistence for recommendation edges.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a recommendation repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists a new edge. A duplicate (video, restaurant) pair returns
// ErrAlreadyExists so callers can skip instead of failing the video.
func (r *Repository) Insert(ctx context.Context, rec *Recommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO recommendations (id, video_id, restaurant_id, dish_mentioned,
			context_quote, confidence, mentioned_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.VideoID, rec.RestaurantID, rec.DishMentioned,
		rec.ContextQuote, rec.Confidence, rec.MentionedAt, rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("edge for video %s and restaurant %s: %w",
				rec.VideoID, rec.RestaurantID, tterrors.ErrAlreadyExists)
		}
		return fmt.Errorf("inserting recommendation: %w", err)
	}
	return nil
}

// Exists reports whether an edge already links the video and restaurant.
func (r *Repository) Exists(ctx context.Context, videoID, restaurantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM recommendations
			WHERE video_id = $1 AND restaurant_id = $2
		)`, videoID, restaurantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking recommendation existence: %w", err)
	}
	return exists, nil
}

// ListForVideo returns the edges created from one video.
func (r *Repository) ListForVideo(ctx context.Context, videoID uuid.UUID) ([]*Recommendation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, video_id, restaurant_id, dish_mentioned, context_quote,
			confidence, mentioned_at, created_at
		FROM recommendations
		WHERE video_id = $1
		ORDER BY created_at ASC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations for video: %w", err)
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

// ListForRestaurant returns the edges pointing at one restaurant, newest
// first, for the restaurant detail API.
func (r *Repository) ListForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Recommendation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, video_id, restaurant_id, dish_mentioned, context_quote,
			confidence, mentioned_at, created_at
		FROM recommendations
		WHERE restaurant_id = $1
		ORDER BY created_at DESC`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations for restaurant: %w", err)
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

func scanRecommendations(rows pgx.Rows) ([]*Recommendation, error) {
	var out []*Recommendation
	for rows.Next() {
		var rec Recommendation
		err := rows.Scan(&rec.ID, &rec.VideoID, &rec.RestaurantID,
			&rec.DishMentioned, &rec.ContextQuote, &rec.Confidence,
			&rec.MentionedAt, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recommendations: %w", err)
	}
	return out, nil
}
