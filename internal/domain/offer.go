package domain

import (
	"errors"
	"time"
)

// OfferStatus represents the current status of an offer.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusRejected OfferStatus = "REJECTED"
)

var (
	// ErrOfferMissingTrip is returned when an offer has no parent trip.
	ErrOfferMissingTrip = errors.New("offer requires a trip")

	// ErrOfferMissingCarrier is returned when an offer has no carrier.
	ErrOfferMissingCarrier = errors.New("offer requires a carrier")

	// ErrOfferInvalidPrice is returned for a non-positive price.
	ErrOfferInvalidPrice = errors.New("offer price must be positive")

	// ErrOfferMissingCurrency is returned when the currency is empty.
	ErrOfferMissingCurrency = errors.New("offer requires a currency")
)

// Offer is a carrier's bid on a trip.
type Offer struct {
	ID        string
	TripID    string
	CarrierID string

	Price    float64
	Currency string
	Notes    string

	Status    OfferStatus
	CreatedAt time.Time
}

// NewOffer builds a pending offer against a trip.
func NewOffer(id, tripID, carrierID string, price float64, currency, notes string, now time.Time) (*Offer, error) {
	if tripID == "" {
		return nil, ErrOfferMissingTrip
	}
	if carrierID == "" {
		return nil, ErrOfferMissingCarrier
	}
	if price <= 0 {
		return nil, ErrOfferInvalidPrice
	}
	if currency == "" {
		return nil, ErrOfferMissingCurrency
	}

	return &Offer{
		ID:        id,
		TripID:    tripID,
		CarrierID: carrierID,
		Price:     price,
		Currency:  currency,
		Notes:     notes,
		Status:    OfferStatusPending,
		CreatedAt: now,
	}, nil
}
