package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Clip status values as stored in the catalog.
const (
	StatusPending = "pending"
	StatusDecoded = "decoded"
	StatusFailed  = "failed"
)

// Clip is one ingested audio object and the state of its decode.
type Clip struct {
	ID          string
	ObjectKey   string
	Status      string
	SampleCount int64
	PCMKey      string
	WAVKey      string
	Failure     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClipRepository is the catalog of every clip the pipeline has seen.
type ClipRepository interface {
	SaveNew(ctx context.Context, id, objectKey string) (bool, error)
	MarkDecoded(ctx context.Context, id string, sampleCount int64, pcmKey, wavKey string) error
	MarkFailed(ctx context.Context, id, reason string) error
	Get(ctx context.Context, id string) (Clip, error)
	GetByObjectKey(ctx context.Context, objectKey string) (Clip, error)
	List(ctx context.Context, limit int) ([]Clip, error)
}

type PostgresClipRepository struct {
	db *pgxpool.Pool
}

func NewPostgresClipRepository(db *pgxpool.Pool) *PostgresClipRepository {
	return &PostgresClipRepository{db: db}
}

var _ ClipRepository = (*PostgresClipRepository)(nil)

// SaveNew catalogs an ingest object under a fresh clip ID. It reports
// false when the object key is already cataloged, which keeps repeated
// sweeps of the same prefix idempotent.
func (r *PostgresClipRepository) SaveNew(ctx context.Context, id, objectKey string) (bool, error) {
	const query = `
	INSERT INTO clip (id, object_key)
	VALUES ($1, $2)
	ON CONFLICT (object_key) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, id, objectKey)
	if err != nil {
		return false, fmt.Errorf("failed to insert clip: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkDecoded records a finished decode along with its artifact keys.
func (r *PostgresClipRepository) MarkDecoded(ctx context.Context, id string, sampleCount int64, pcmKey, wavKey string) (err error) {
	const clipQuery = `
	UPDATE clip
	SET status = 'decoded',
		sample_count = $2,
		pcm_key = $3,
		wav_key = $4,
		failure = '',
		updated_at = now()
	WHERE id = $1
	`

	const eventQuery = `
	INSERT INTO clip_event (clip_id, event, detail)
	VALUES ($1, 'decoded', $2)
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback transaction", "error", rbErr)
		}
	}()

	tag, err := tx.Exec(ctx, clipQuery, id, sampleCount, pcmKey, wavKey)
	if err != nil {
		return fmt.Errorf("failed to update clip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no clip with id %s", id)
	}

	detail := fmt.Sprintf("%d samples", sampleCount)
	if _, err := tx.Exec(ctx, eventQuery, id, detail); err != nil {
		return fmt.Errorf("failed to record clip event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MarkFailed records a failed decode and why it failed.
func (r *PostgresClipRepository) MarkFailed(ctx context.Context, id, reason string) (err error) {
	const clipQuery = `
	UPDATE clip
	SET status = 'failed',
		failure = $2,
		updated_at = now()
	WHERE id = $1
	`

	const eventQuery = `
	INSERT INTO clip_event (clip_id, event, detail)
	VALUES ($1, 'failed', $2)
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback transaction", "error", rbErr)
		}
	}()

	tag, err := tx.Exec(ctx, clipQuery, id, reason)
	if err != nil {
		return fmt.Errorf("failed to update clip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no clip with id %s", id)
	}

	if _, err := tx.Exec(ctx, eventQuery, id, reason); err != nil {
		return fmt.Errorf("failed to record clip event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresClipRepository) Get(ctx context.Context, id string) (Clip, error) {
	const query = `
	SELECT id, object_key, status, sample_count, pcm_key, wav_key, failure, created_at, updated_at
	FROM clip
	WHERE id = $1
	`

	var c Clip
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.ObjectKey, &c.Status, &c.SampleCount,
		&c.PCMKey, &c.WAVKey, &c.Failure, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to get clip %s: %w", id, err)
	}
	return c, nil
}

// GetByObjectKey looks a clip up by the ingest object it was cataloged
// from. Object keys are unique, so at most one row matches.
func (r *PostgresClipRepository) GetByObjectKey(ctx context.Context, objectKey string) (Clip, error) {
	const query = `
	SELECT id, object_key, status, sample_count, pcm_key, wav_key, failure, created_at, updated_at
	FROM clip
	WHERE object_key = $1
	`

	var c Clip
	err := r.db.QueryRow(ctx, query, objectKey).Scan(
		&c.ID, &c.ObjectKey, &c.Status, &c.SampleCount,
		&c.PCMKey, &c.WAVKey, &c.Failure, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to get clip for %s: %w", objectKey, err)
	}
	return c, nil
}

// List returns the most recently cataloged clips, newest first.
func (r *PostgresClipRepository) List(ctx context.Context, limit int) ([]Clip, error) {
	const query = `
	SELECT id, object_key, status, sample_count, pcm_key, wav_key, failure, created_at, updated_at
	FROM clip
	ORDER BY created_at DESC, id
	LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer rows.Close()

	var clips []Clip
	for rows.Next() {
		var c Clip
		err := rows.Scan(
			&c.ID, &c.ObjectKey, &c.Status, &c.SampleCount,
			&c.PCMKey, &c.WAVKey, &c.Failure, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clip: %w", err)
		}
		clips = append(clips, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clips: %w", err)
	}
	return clips, nil
}
