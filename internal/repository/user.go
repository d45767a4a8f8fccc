package repository

import (
	"context"

	"tripbroker/internal/domain"
)

// UserRepository defines the persistence operations for user profiles.
type UserRepository interface {
	// Create persists a new profile.
	Create(ctx context.Context, user *domain.UserProfile) error

	// GetByID retrieves a profile by ID.
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)

	// GetByEmail retrieves a profile by email.
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)

	// Update updates an existing profile.
	Update(ctx context.Context, user *domain.UserProfile) error

	// SetFreeze toggles one of the two administrative restriction flags.
	SetFreeze(ctx context.Context, userID string, freezeType domain.FreezeType, frozen bool) error

	// SetRole writes the role and admin flag onto a profile.
	SetRole(ctx context.Context, userID string, role domain.Role, isAdmin bool) error

	// SetCurrentActiveTrip sets or clears the carrier's committed trip.
	SetCurrentActiveTrip(ctx context.Context, userID, tripID string) error
}
