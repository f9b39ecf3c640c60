package videos

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

const videoColumns = `id, youtube_id, influencer_id, title, description, published_at,
	duration_raw, duration_seconds, transcript, transcript_source,
	processed, processing_error, processed_at, created_at, updated_at`

// Repository provides PostgreSQL persistence for videos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a video repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new video. A video with the same YouTube id already present
// returns ErrAlreadyExists.
func (r *Repository) Create(ctx context.Context, v *Video) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO videos (id, youtube_id, influencer_id, title, description,
			published_at, duration_raw, duration_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.YouTubeID, v.InfluencerID, v.Title, v.Description,
		v.PublishedAt, v.DurationRaw, v.DurationSeconds, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("video %s: %w", v.YouTubeID, tterrors.ErrAlreadyExists)
		}
		return fmt.Errorf("inserting video: %w", err)
	}
	return nil
}

// Upsert inserts a video or refreshes its metadata when the YouTube id is
// already known. Processing state and transcript are never touched here.
func (r *Repository) Upsert(ctx context.Context, v *Video) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO videos (id, youtube_id, influencer_id, title, description,
			published_at, duration_raw, duration_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (youtube_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			published_at = EXCLUDED.published_at,
			duration_raw = EXCLUDED.duration_raw,
			duration_seconds = EXCLUDED.duration_seconds,
			updated_at = EXCLUDED.updated_at`,
		v.ID, v.YouTubeID, v.InfluencerID, v.Title, v.Description,
		v.PublishedAt, v.DurationRaw, v.DurationSeconds, now,
	)
	if err != nil {
		return fmt.Errorf("upserting video %s: %w", v.YouTubeID, err)
	}
	return nil
}

// GetByID fetches a video by its internal id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Video, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	return scanVideo(row)
}

// GetByYouTubeID fetches a video by its YouTube id.
func (r *Repository) GetByYouTubeID(ctx context.Context, youtubeID string) (*Video, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE youtube_id = $1`, youtubeID)
	return scanVideo(row)
}

// List returns videos newest-first with pagination.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Video, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+videoColumns+` FROM videos
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	defer rows.Close()
	return scanVideos(rows)
}

// FindUnprocessed returns up to limit unprocessed videos above the duration
// threshold, newest first. Videos with a pending processing error are
// excluded; they wait for an operator reset.
func (r *Repository) FindUnprocessed(ctx context.Context, minDurationSeconds, limit int) ([]*Video, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+videoColumns+` FROM videos
		WHERE processed = FALSE
		  AND processing_error = ''
		  AND duration_seconds > $1
		ORDER BY published_at DESC NULLS LAST
		LIMIT $2`, minDurationSeconds, limit)
	if err != nil {
		return nil, fmt.Errorf("finding unprocessed videos: %w", err)
	}
	defer rows.Close()
	return scanVideos(rows)
}

// SaveTranscript stores an acquired transcript so retries reuse it.
func (r *Repository) SaveTranscript(ctx context.Context, id uuid.UUID, text, source string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE videos SET transcript = $2, transcript_source = $3, updated_at = now()
		WHERE id = $1`, id, text, source)
	if err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tterrors.ErrNotFound
	}
	return nil
}

// MarkProcessed sets the terminal success state, clearing any prior error.
func (r *Repository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE videos SET processed = TRUE, processing_error = '',
			processed_at = now(), updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking video processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tterrors.ErrNotFound
	}
	return nil
}

// MarkFailed records a processing failure; the video stays unprocessed.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE videos SET processed = FALSE, processing_error = $2, updated_at = now()
		WHERE id = $1`, id, errMsg)
	if err != nil {
		return fmt.Errorf("marking video failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tterrors.ErrNotFound
	}
	return nil
}

// ResetProcessing clears both terminal flags, re-queueing the video. The
// stored transcript is kept as a cache for the next run.
func (r *Repository) ResetProcessing(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE videos SET processed = FALSE, processing_error = '',
			processed_at = NULL, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("resetting video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tterrors.ErrNotFound
	}
	return nil
}

// Delete removes a video and, via cascade, its recommendation edges.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tterrors.ErrNotFound
	}
	return nil
}

func scanVideo(row pgx.Row) (*Video, error) {
	var v Video
	err := row.Scan(
		&v.ID, &v.YouTubeID, &v.InfluencerID, &v.Title, &v.Description,
		&v.PublishedAt, &v.DurationRaw, &v.DurationSeconds,
		&v.Transcript, &v.TranscriptSource,
		&v.Processed, &v.ProcessingError, &v.ProcessedAt,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tterrors.ErrNotFound
		}
		return nil, fmt.Errorf("scanning video: %w", err)
	}
	return &v, nil
}

func scanVideos(rows pgx.Rows) ([]*Video, error) {
	var out []*Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating videos: %w", err)
	}
	return out, nil
}
