package repository

import (
	"context"

	"tripbroker/internal/domain"
)

// OfferRepository defines the persistence operations for offers.
type OfferRepository interface {
	// Create persists a new offer.
	Create(ctx context.Context, offer *domain.Offer) error

	// GetByID retrieves an offer by ID.
	GetByID(ctx context.Context, id string) (*domain.Offer, error)

	// ListByTrip retrieves all offers for a trip in arrival order.
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Offer, error)

	// ListPendingByTrip retrieves pending offers for a trip in arrival order.
	ListPendingByTrip(ctx context.Context, tripID string) ([]*domain.Offer, error)

	// CountByTrip returns the number of offers submitted against a trip.
	CountByTrip(ctx context.Context, tripID string) (int, error)

	// Accept conditionally marks a pending offer as accepted. Returns
	// ErrStale if the offer is no longer pending.
	Accept(ctx context.Context, offerID string) error

	// RejectSiblings marks every other offer on the trip as rejected.
	RejectSiblings(ctx context.Context, tripID, acceptedOfferID string) error

	// RejectAccepted invalidates the accepted offer on a trip, if any.
	RejectAccepted(ctx context.Context, tripID string) error

	// RejectPending rejects all pending offers on a trip.
	RejectPending(ctx context.Context, tripID string) error
}
