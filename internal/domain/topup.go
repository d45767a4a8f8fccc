package domain

import (
	"errors"
	"time"
)

// TopUpStatus represents the review status of a top-up request.
type TopUpStatus string

const (
	TopUpStatusPending  TopUpStatus = "PENDING"
	TopUpStatusApproved TopUpStatus = "APPROVED"
	TopUpStatusRejected TopUpStatus = "REJECTED"
)

var (
	// ErrTopUpMissingUser is returned when a top-up has no requesting user.
	ErrTopUpMissingUser = errors.New("top-up requires a user")

	// ErrTopUpInvalidAmount is returned for a non-positive amount.
	ErrTopUpInvalidAmount = errors.New("top-up amount must be positive")
)

// TopUpRequest records a requested balance top-up. Receipts are reviewed
// manually off-system; only the amount and status live here.
type TopUpRequest struct {
	ID         string
	UserID     string
	Amount     float64
	Currency   string
	ReceiptRef string // external reference to the uploaded receipt

	Status     TopUpStatus
	ReviewedBy string
	ReviewedAt time.Time
	CreatedAt  time.Time
}

// NewTopUpRequest builds a pending top-up request.
func NewTopUpRequest(id, userID string, amount float64, currency, receiptRef string, now time.Time) (*TopUpRequest, error) {
	if userID == "" {
		return nil, ErrTopUpMissingUser
	}
	if amount <= 0 {
		return nil, ErrTopUpInvalidAmount
	}
	if currency == "" {
		currency = "JOD"
	}
	return &TopUpRequest{
		ID:         id,
		UserID:     userID,
		Amount:     amount,
		Currency:   currency,
		ReceiptRef: receiptRef,
		Status:     TopUpStatusPending,
		CreatedAt:  now,
	}, nil
}
