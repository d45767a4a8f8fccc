package repository

import (
	"context"
	"time"

	"tripbroker/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// ListAwaitingOffers retrieves trips open for offers, oldest first.
	ListAwaitingOffers(ctx context.Context) ([]*domain.Trip, error)

	// ListByUser retrieves trips owned by a traveler, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Trip, error)

	// ListByCarrier retrieves trips committed to a carrier, newest first.
	ListByCarrier(ctx context.Context, carrierID string) ([]*domain.Trip, error)

	// ListPendingConfirmationBefore retrieves trips whose carrier
	// confirmation window opened before the cutoff.
	ListPendingConfirmationBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error)

	// MarkPendingConfirmation conditionally moves an AWAITING_OFFERS trip to
	// PENDING_CARRIER_CONFIRMATION with the given carrier. Returns ErrStale
	// if the trip is no longer awaiting offers.
	MarkPendingConfirmation(ctx context.Context, tripID, carrierID string, acceptedAt time.Time) error

	// Transition conditionally moves a trip from one status to another.
	// Returns ErrStale if the trip is not in the expected status.
	Transition(ctx context.Context, tripID string, from, to domain.TripStatus) error

	// Reopen moves a PENDING_CARRIER_CONFIRMATION trip back to
	// AWAITING_OFFERS, clearing the committed carrier. Returns ErrStale if
	// the trip is not pending confirmation.
	Reopen(ctx context.Context, tripID string) error
}
