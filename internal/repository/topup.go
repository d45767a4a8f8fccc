package repository

import (
	"context"
	"time"

	"tripbroker/internal/domain"
)

// TopUpRepository defines the persistence operations for top-up requests.
type TopUpRepository interface {
	// Create persists a new top-up request.
	Create(ctx context.Context, req *domain.TopUpRequest) error

	// GetByID retrieves a top-up request by ID.
	GetByID(ctx context.Context, id string) (*domain.TopUpRequest, error)

	// ListByUser retrieves a user's top-up requests, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.TopUpRequest, error)

	// SetStatus records the manual review outcome. Returns ErrStale if the
	// request has already been reviewed.
	SetStatus(ctx context.Context, id string, status domain.TopUpStatus, reviewedBy string, reviewedAt time.Time) error
}
