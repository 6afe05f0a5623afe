package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/SketchMorph/fitenglish-server/internal/model"
)

// memoryRepository keeps attempts in process memory. It backs the server
// when no DATABASE_URL is configured, so local development works without
// a running Postgres. Everything is lost on restart.
type memoryRepository struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]model.Attempt
}

// NewMemoryRepository returns an empty in-memory AttemptRepository.
func NewMemoryRepository() AttemptRepository {
	return &memoryRepository{
		attempts: make(map[uuid.UUID]model.Attempt),
	}
}

func (r *memoryRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.ID] = *attempt
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt, ok := r.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to avoid races with later mutation.
	cp := attempt
	return &cp, nil
}

func (r *memoryRepository) List(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []model.Attempt
	for _, attempt := range r.attempts {
		if userID != nil {
			if attempt.UserID == nil || *attempt.UserID != *userID {
				continue
			}
		}
		matched = append(matched, attempt)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.attempts[id]; !ok {
		return ErrNotFound
	}
	delete(r.attempts, id)
	return nil
}
