// Package influencers persists the tracked YouTube channels.
package influencers

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

// Influencer is a tracked food-content channel.
type Influencer struct {
	ID              uuid.UUID
	ChannelID       string
	Name            string
	Handle          string
	SubscriberCount int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Repository provides PostgreSQL persistence for influencers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an influencer repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts a channel or refreshes its metadata, returning the stored
// record either way.
func (r *Repository) Upsert(ctx context.Context, inf *Influencer) error {
	if inf.ID == uuid.Nil {
		inf.ID = uuid.New()
	}
	now := time.Now().UTC()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO influencers (id, channel_id, name, handle, subscriber_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (channel_id) DO UPDATE SET
			name = EXCLUDED.name,
			handle = EXCLUDED.handle,
			subscriber_count = EXCLUDED.subscriber_count,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		inf.ID, inf.ChannelID, inf.Name, inf.Handle, inf.SubscriberCount, now)

	if err := row.Scan(&inf.ID, &inf.CreatedAt); err != nil {
		return fmt.Errorf("upserting influencer %s: %w", inf.ChannelID, err)
	}
	inf.UpdatedAt = now
	return nil
}

// GetByChannelID fetches an influencer by YouTube channel id.
func (r *Repository) GetByChannelID(ctx context.Context, channelID string) (*Influencer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, channel_id, name, handle, subscriber_count, created_at, updated_at
		FROM influencers WHERE channel_id = $1`, channelID)
	return scanInfluencer(row)
}

// GetByID fetches an influencer by internal id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Influencer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, channel_id, name, handle, subscriber_count, created_at, updated_at
		FROM influencers WHERE id = $1`, id)
	return scanInfluencer(row)
}

// List returns all tracked influencers.
func (r *Repository) List(ctx context.Context) ([]*Influencer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, channel_id, name, handle, subscriber_count, created_at, updated_at
		FROM influencers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing influencers: %w", err)
	}
	defer rows.Close()

	var out []*Influencer
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating influencers: %w", err)
	}
	return out, nil
}

func scanInfluencer(row pgx.Row) (*Influencer, error) {
	var inf Influencer
	err := row.Scan(&inf.ID, &inf.ChannelID, &inf.Name, &inf.Handle,
		&inf.SubscriberCount, &inf.CreatedAt, &inf.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tterrors.ErrNotFound
		}
		return nil, fmt.Errorf("scanning influencer: %w", err)
	}
	return &inf, nil
}
