package repository

import (
	"context"

	"tripbroker/internal/domain"
)

// PricingRepository defines read access to per-country pricing rules.
type PricingRepository interface {
	// GetByCountry retrieves the pricing rule for a country code.
	GetByCountry(ctx context.Context, country string) (*domain.PricingRule, error)
}
