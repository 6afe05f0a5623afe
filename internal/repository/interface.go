package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/SketchMorph/fitenglish-server/internal/model"
)

// ErrNotFound is returned when no attempt matches the requested ID.
var ErrNotFound = errors.New("attempt not found")

// AttemptRepository defines data access for reading attempts.
type AttemptRepository interface {
	// Create stores a new attempt record.
	Create(ctx context.Context, attempt *model.Attempt) error

	// GetByID retrieves an attempt by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)

	// List retrieves attempts newest first with pagination. A nil userID
	// lists attempts for all users.
	List(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]model.Attempt, error)

	// Delete removes an attempt by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
