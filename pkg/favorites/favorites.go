// Package favorites persists per-user restaurant favorites.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
)

// Favorite marks one restaurant as saved by one user.
type Favorite struct {
	ID           uuid.UUID
	UserID       string
	RestaurantID uuid.UUID
	CreatedAt    time.Time
}

// Repository provides PostgreSQL persistence for favorites.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a favorites repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Add saves a favorite. Favoriting the same restaurant twice returns
// ErrAlreadyExists.
func (r *Repository) Add(ctx context.Context, f *Favorite) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO favorites (id, user_id, restaurant_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		f.ID, f.UserID, f.RestaurantID, f.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("favorite for restaurant %s: %w", f.RestaurantID, tterrors.ErrAlreadyExists)
		}
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

// Remove deletes a user's favorite for the given restaurant.
func (r *Repository) Remove(ctx context.Context, userID string, restaurantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND restaurant_id = $2`,
		userID, restaurantID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tterrors.ErrNotFound
	}
	return nil
}

// ListForUser returns a user's favorites, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]*Favorite, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, restaurant_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	var out []*Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.RestaurantID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		out = append(out, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return out, nil
}
