package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tripbroker/internal/domain"
	"tripbroker/internal/repository"
)

// OfferRepository is a PostgreSQL implementation of repository.OfferRepository.
type OfferRepository struct {
	q Querier
}

// NewOfferRepository creates a new PostgreSQL offer repository.
func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{q: db}
}

// NewOfferRepositoryWithTx creates an offer repository using a transaction.
func NewOfferRepositoryWithTx(tx *sql.Tx) *OfferRepository {
	return &OfferRepository{q: tx}
}

const offerColumns = `id, trip_id, carrier_id, price, currency, notes, status, created_at`

// Create persists a new offer.
func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	query := `
		INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		offer.ID,
		offer.TripID,
		offer.CarrierID,
		offer.Price,
		offer.Currency,
		nullString(offer.Notes),
		offer.Status,
		offer.CreatedAt,
	)

	return err
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	offer, err := scanOffer(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return offer, nil
}

// ListByTrip retrieves all offers for a trip in arrival order.
func (r *OfferRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Offer, error) {
	query := `
		SELECT ` + offerColumns + ` FROM offers
		WHERE trip_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, tripID)
}

// ListPendingByTrip retrieves pending offers for a trip in arrival order.
// Arrival order is the tie-break the ranking engine relies on.
func (r *OfferRepository) ListPendingByTrip(ctx context.Context, tripID string) ([]*domain.Offer, error) {
	query := `
		SELECT ` + offerColumns + ` FROM offers
		WHERE trip_id = $1 AND status = $2
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, tripID, domain.OfferStatusPending)
}

// CountByTrip returns the number of offers submitted against a trip.
func (r *OfferRepository) CountByTrip(ctx context.Context, tripID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers WHERE trip_id = $1`, tripID).Scan(&count)
	return count, err
}

// Accept conditionally marks a pending offer as accepted.
func (r *OfferRepository) Accept(ctx context.Context, offerID string) error {
	query := `UPDATE offers SET status = $3 WHERE id = $1 AND status = $2`

	res, err := r.q.ExecContext(ctx, query, offerID, domain.OfferStatusPending, domain.OfferStatusAccepted)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrStale)
}

// RejectSiblings marks every other offer on the trip as rejected.
func (r *OfferRepository) RejectSiblings(ctx context.Context, tripID, acceptedOfferID string) error {
	query := `UPDATE offers SET status = $3 WHERE trip_id = $1 AND id <> $2 AND status = $4`

	_, err := r.q.ExecContext(ctx, query, tripID, acceptedOfferID, domain.OfferStatusRejected, domain.OfferStatusPending)
	return err
}

// RejectAccepted invalidates the accepted offer on a trip, if any.
func (r *OfferRepository) RejectAccepted(ctx context.Context, tripID string) error {
	query := `UPDATE offers SET status = $3 WHERE trip_id = $1 AND status = $2`

	_, err := r.q.ExecContext(ctx, query, tripID, domain.OfferStatusAccepted, domain.OfferStatusRejected)
	return err
}

// RejectPending rejects all pending offers on a trip.
func (r *OfferRepository) RejectPending(ctx context.Context, tripID string) error {
	query := `UPDATE offers SET status = $3 WHERE trip_id = $1 AND status = $2`

	_, err := r.q.ExecContext(ctx, query, tripID, domain.OfferStatusPending, domain.OfferStatusRejected)
	return err
}

func (r *OfferRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Offer, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []*domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

func scanOffer(s rowScanner) (*domain.Offer, error) {
	var offer domain.Offer
	var notes sql.NullString

	err := s.Scan(
		&offer.ID,
		&offer.TripID,
		&offer.CarrierID,
		&offer.Price,
		&offer.Currency,
		&notes,
		&offer.Status,
		&offer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	offer.Notes = notes.String
	return &offer, nil
}
