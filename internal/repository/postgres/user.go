package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tripbroker/internal/domain"
	"tripbroker/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, email, name, role, is_admin, vehicle_capacity, vehicle_category,
	jurisdiction_origin, jurisdiction_destination, current_active_trip_id,
	is_partial, rating_average, rating_tier, is_financial_frozen, is_deactivated, created_at`

// Create persists a new profile.
func (r *UserRepository) Create(ctx context.Context, user *domain.UserProfile) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	var jurOrigin, jurDestination sql.NullString
	if user.Jurisdiction != nil {
		jurOrigin = nullString(user.Jurisdiction.Origin)
		jurDestination = nullString(user.Jurisdiction.Destination)
	}

	tier := user.Rating.Tier
	if tier == "" {
		tier = domain.TierBronze
	}

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.IsAdmin,
		user.VehicleCapacity,
		nullString(user.VehicleCategory),
		jurOrigin,
		jurDestination,
		nullString(user.CurrentActiveTripID),
		user.IsPartial,
		user.Rating.Average,
		tier,
		user.IsFinancialFrozen,
		user.IsDeactivated,
		user.CreatedAt,
	)

	return err
}

// GetByID retrieves a profile by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a profile by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// Update updates an existing profile.
func (r *UserRepository) Update(ctx context.Context, user *domain.UserProfile) error {
	query := `
		UPDATE users
		SET name = $2, vehicle_capacity = $3, vehicle_category = $4,
			jurisdiction_origin = $5, jurisdiction_destination = $6,
			current_active_trip_id = $7, is_partial = $8,
			rating_average = $9, rating_tier = $10
		WHERE id = $1
	`

	var jurOrigin, jurDestination sql.NullString
	if user.Jurisdiction != nil {
		jurOrigin = nullString(user.Jurisdiction.Origin)
		jurDestination = nullString(user.Jurisdiction.Destination)
	}

	res, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.VehicleCapacity,
		nullString(user.VehicleCategory),
		jurOrigin,
		jurDestination,
		nullString(user.CurrentActiveTripID),
		user.IsPartial,
		user.Rating.Average,
		user.Rating.Tier,
	)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrNotFound)
}

// SetFreeze toggles one of the two administrative restriction flags.
func (r *UserRepository) SetFreeze(ctx context.Context, userID string, freezeType domain.FreezeType, frozen bool) error {
	column := "is_financial_frozen"
	if freezeType == domain.FreezeSecurity {
		column = "is_deactivated"
	}
	query := `UPDATE users SET ` + column + ` = $2 WHERE id = $1`

	res, err := r.q.ExecContext(ctx, query, userID, frozen)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrNotFound)
}

// SetRole writes the role and admin flag onto a profile.
func (r *UserRepository) SetRole(ctx context.Context, userID string, role domain.Role, isAdmin bool) error {
	query := `UPDATE users SET role = $2, is_admin = $3 WHERE id = $1`

	res, err := r.q.ExecContext(ctx, query, userID, role, isAdmin)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrNotFound)
}

// SetCurrentActiveTrip sets or clears the carrier's committed trip.
func (r *UserRepository) SetCurrentActiveTrip(ctx context.Context, userID, tripID string) error {
	query := `UPDATE users SET current_active_trip_id = $2 WHERE id = $1`

	res, err := r.q.ExecContext(ctx, query, userID, nullString(tripID))
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrNotFound)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.UserProfile, error) {
	var user domain.UserProfile
	var vehicleCategory, jurOrigin, jurDestination, activeTripID sql.NullString

	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.IsAdmin,
		&user.VehicleCapacity,
		&vehicleCategory,
		&jurOrigin,
		&jurDestination,
		&activeTripID,
		&user.IsPartial,
		&user.Rating.Average,
		&user.Rating.Tier,
		&user.IsFinancialFrozen,
		&user.IsDeactivated,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	user.VehicleCategory = vehicleCategory.String
	user.CurrentActiveTripID = activeTripID.String
	if jurOrigin.Valid || jurDestination.Valid {
		user.Jurisdiction = &domain.Jurisdiction{
			Origin:      jurOrigin.String,
			Destination: jurDestination.String,
		}
	}

	return &user, nil
}
