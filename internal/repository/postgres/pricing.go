package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tripbroker/internal/domain"
	"tripbroker/internal/repository"
)

// PricingRepository is a PostgreSQL implementation of
// repository.PricingRepository.
type PricingRepository struct {
	q Querier
}

// NewPricingRepository creates a new PostgreSQL pricing repository.
func NewPricingRepository(db *sql.DB) *PricingRepository {
	return &PricingRepository{q: db}
}

// GetByCountry retrieves the pricing rule for a country code.
func (r *PricingRepository) GetByCountry(ctx context.Context, country string) (*domain.PricingRule, error) {
	query := `
		SELECT country, currency, traveler_booking_fee, carrier_monthly_sub, updated_at
		FROM pricing_rules WHERE country = $1
	`

	var rule domain.PricingRule
	err := r.q.QueryRowContext(ctx, query, country).Scan(
		&rule.Country,
		&rule.Currency,
		&rule.TravelerBookingFee,
		&rule.CarrierMonthlySub,
		&rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &rule, nil
}
