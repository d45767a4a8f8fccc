package domain

import "time"

// PricingRule is a per-country fee and subscription schedule. Read-only to
// the matching engine.
type PricingRule struct {
	Country            string
	Currency           string
	TravelerBookingFee float64
	CarrierMonthlySub  float64
	UpdatedAt          time.Time
}
