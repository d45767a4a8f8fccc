package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tripbroker/internal/domain"
	"tripbroker/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, user_id, carrier_id, original_carrier_id, origin, destination,
	passengers, vehicle_capacity, available_seats, preferred_vehicle,
	request_type, jurisdiction_origin, jurisdiction_destination,
	status, departure_date, accepted_at, created_at, cancelled_at, cancel_reason`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.UserID,
		nullString(trip.CarrierID),
		nullString(trip.OriginalCarrierID),
		trip.Origin,
		trip.Destination,
		trip.Passengers,
		trip.VehicleCapacity,
		trip.AvailableSeats,
		trip.PreferredVehicle,
		trip.RequestType,
		nullString(trip.JurisdictionOrigin),
		nullString(trip.JurisdictionDestination),
		trip.Status,
		trip.DepartureDate,
		nullTime(trip.AcceptedAt),
		trip.CreatedAt,
		nullTime(trip.CancelledAt),
		nullString(trip.CancelReason),
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return scanTrip(r.q.QueryRowContext(ctx, query, id))
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET carrier_id = $2, original_carrier_id = $3, status = $4,
			available_seats = $5, accepted_at = $6, cancelled_at = $7, cancel_reason = $8
		WHERE id = $1
	`

	res, err := r.q.ExecContext(ctx, query,
		trip.ID,
		nullString(trip.CarrierID),
		nullString(trip.OriginalCarrierID),
		trip.Status,
		trip.AvailableSeats,
		nullTime(trip.AcceptedAt),
		nullTime(trip.CancelledAt),
		nullString(trip.CancelReason),
	)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrNotFound)
}

// ListAwaitingOffers retrieves trips open for offers, oldest first.
func (r *TripRepository) ListAwaitingOffers(ctx context.Context) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + ` FROM trips
		WHERE status = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, domain.TripStatusAwaitingOffers)
}

// ListByUser retrieves trips owned by a traveler, newest first.
func (r *TripRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + ` FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

// ListByCarrier retrieves trips committed to a carrier, newest first.
func (r *TripRepository) ListByCarrier(ctx context.Context, carrierID string) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + ` FROM trips
		WHERE carrier_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, carrierID)
}

// ListPendingConfirmationBefore retrieves trips whose confirmation window
// opened before the cutoff.
func (r *TripRepository) ListPendingConfirmationBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + ` FROM trips
		WHERE status = $1 AND accepted_at < $2
		ORDER BY accepted_at ASC
	`
	return r.list(ctx, query, domain.TripStatusPendingCarrierConfirmation, cutoff)
}

// MarkPendingConfirmation conditionally commits a carrier to an
// AWAITING_OFFERS trip. The status predicate makes concurrent acceptances
// lose with ErrStale instead of double-assigning.
func (r *TripRepository) MarkPendingConfirmation(ctx context.Context, tripID, carrierID string, acceptedAt time.Time) error {
	query := `
		UPDATE trips
		SET status = $3, carrier_id = $4, accepted_at = $5
		WHERE id = $1 AND status = $2
	`

	res, err := r.q.ExecContext(ctx, query,
		tripID,
		domain.TripStatusAwaitingOffers,
		domain.TripStatusPendingCarrierConfirmation,
		carrierID,
		acceptedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrStale)
}

// Transition conditionally moves a trip from one status to another.
func (r *TripRepository) Transition(ctx context.Context, tripID string, from, to domain.TripStatus) error {
	query := `UPDATE trips SET status = $3 WHERE id = $1 AND status = $2`

	res, err := r.q.ExecContext(ctx, query, tripID, from, to)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrStale)
}

// Reopen returns a pending-confirmation trip to the offer pool, dropping the
// committed carrier and the confirmation window.
func (r *TripRepository) Reopen(ctx context.Context, tripID string) error {
	query := `
		UPDATE trips
		SET status = $3, carrier_id = NULL, accepted_at = NULL
		WHERE id = $1 AND status = $2
	`

	res, err := r.q.ExecContext(ctx, query,
		tripID,
		domain.TripStatusPendingCarrierConfirmation,
		domain.TripStatusAwaitingOffers,
	)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrStale)
}

func (r *TripRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Trip, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTripRow(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTripFields(s rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var carrierID, originalCarrierID, jurOrigin, jurDestination, cancelReason sql.NullString
	var acceptedAt, cancelledAt sql.NullTime

	err := s.Scan(
		&trip.ID,
		&trip.UserID,
		&carrierID,
		&originalCarrierID,
		&trip.Origin,
		&trip.Destination,
		&trip.Passengers,
		&trip.VehicleCapacity,
		&trip.AvailableSeats,
		&trip.PreferredVehicle,
		&trip.RequestType,
		&jurOrigin,
		&jurDestination,
		&trip.Status,
		&trip.DepartureDate,
		&acceptedAt,
		&trip.CreatedAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	trip.CarrierID = carrierID.String
	trip.OriginalCarrierID = originalCarrierID.String
	trip.JurisdictionOrigin = jurOrigin.String
	trip.JurisdictionDestination = jurDestination.String
	trip.CancelReason = cancelReason.String
	if acceptedAt.Valid {
		trip.AcceptedAt = acceptedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}

	return &trip, nil
}

func scanTrip(row *sql.Row) (*domain.Trip, error) {
	trip, err := scanTripFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

func scanTripRow(rows *sql.Rows) (*domain.Trip, error) {
	return scanTripFields(rows)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// requireRow maps a zero-row conditional write to the given sentinel.
func requireRow(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
