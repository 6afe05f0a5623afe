package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SketchMorph/fitenglish-server/internal/model"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository wraps an open database handle in an
// AttemptRepository and makes sure the attempts table exists.
func NewPostgresRepository(ctx context.Context, db *sql.DB) (AttemptRepository, error) {
	repo := &postgresRepository{db: db}
	if err := repo.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate attempts table: %w", err)
	}
	return repo, nil
}

func (r *postgresRepository) migrate(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS attempts (
    id UUID PRIMARY KEY,
    user_id UUID,
    target TEXT NOT NULL,
    transcript TEXT NOT NULL,
    accuracy INT NOT NULL,
    tips JSONB NOT NULL DEFAULT '[]',
    provider TEXT NOT NULL,
    confidence DOUBLE PRECISION,
    audio_path TEXT,
    audio_size_bytes BIGINT,
    processing_time_ms INT,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_user_created ON attempts(user_id, created_at DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create stores a new attempt record.
func (r *postgresRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	query := `
		INSERT INTO attempts (
			id, user_id, target, transcript, accuracy, tips, provider,
			confidence, audio_path, audio_size_bytes, processing_time_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	tipsJSON, err := json.Marshal(attempt.Tips)
	if err != nil {
		return fmt.Errorf("failed to marshal tips: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.Target,
		attempt.Transcript,
		attempt.Accuracy,
		tipsJSON,
		attempt.Provider,
		attempt.Confidence,
		attempt.AudioPath,
		attempt.AudioSizeBytes,
		attempt.ProcessingTimeMs,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

// GetByID retrieves an attempt by ID.
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	query := `
		SELECT
			id, user_id, target, transcript, accuracy, tips, provider,
			confidence, audio_path, audio_size_bytes, processing_time_ms, created_at
		FROM attempts
		WHERE id = $1
	`

	attempt, err := scanAttempt(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

// List retrieves attempts newest first with pagination.
func (r *postgresRepository) List(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]model.Attempt, error) {
	query := `
		SELECT
			id, user_id, target, transcript, accuracy, tips, provider,
			confidence, audio_path, audio_size_bytes, processing_time_ms, created_at
		FROM attempts
	`
	args := []interface{}{}
	if userID != nil {
		query += ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, *userID, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, *attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}

// Delete removes an attempt by ID.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attempts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(row scanner) (*model.Attempt, error) {
	var attempt model.Attempt
	var tipsJSON []byte

	err := row.Scan(
		&attempt.ID,
		&attempt.UserID,
		&attempt.Target,
		&attempt.Transcript,
		&attempt.Accuracy,
		&tipsJSON,
		&attempt.Provider,
		&attempt.Confidence,
		&attempt.AudioPath,
		&attempt.AudioSizeBytes,
		&attempt.ProcessingTimeMs,
		&attempt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tipsJSON) > 0 {
		if err := json.Unmarshal(tipsJSON, &attempt.Tips); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tips: %w", err)
		}
	}

	return &attempt, nil
}
