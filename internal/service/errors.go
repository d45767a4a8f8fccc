package service

import "errors"

var (
	// ErrPermissionDenied is returned when the actor lacks the role or
	// ownership required for the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTripNotAwaitingOffers is returned when an offer-side operation hits
	// a trip that has already left AWAITING_OFFERS. Callers should refresh.
	ErrTripNotAwaitingOffers = errors.New("trip is no longer awaiting offers")

	// ErrTripNotPendingConfirmation is returned when a confirm or decline
	// hits a trip outside the confirmation window.
	ErrTripNotPendingConfirmation = errors.New("trip is not pending carrier confirmation")

	// ErrConfirmationElapsed is returned when the carrier confirms after the
	// confirmation window closed; the trip has re-opened for offers.
	ErrConfirmationElapsed = errors.New("confirmation window has elapsed")

	// ErrAcceptanceInProgress is returned when another acceptance already
	// holds the trip lock.
	ErrAcceptanceInProgress = errors.New("another acceptance is in progress for this trip")

	// ErrOfferNotPending is returned when accepting an offer that is no
	// longer pending.
	ErrOfferNotPending = errors.New("offer is no longer pending")

	// ErrOfferTripMismatch is returned when an offer does not belong to the
	// trip it is being accepted against.
	ErrOfferTripMismatch = errors.New("offer does not belong to this trip")

	// ErrNotCarrier is returned when a carrier-only action is attempted by a
	// non-carrier account.
	ErrNotCarrier = errors.New("account is not a carrier")

	// ErrCarrierProfileIncomplete is returned when a partial carrier profile
	// attempts any carrier action.
	ErrCarrierProfileIncomplete = errors.New("carrier profile is incomplete")

	// ErrCarrierDeactivated is returned when a security-frozen carrier
	// attempts a carrier action.
	ErrCarrierDeactivated = errors.New("carrier account is deactivated")

	// ErrFinancialFrozen is returned when a financially frozen account
	// attempts a money-handling action.
	ErrFinancialFrozen = errors.New("account is financially frozen")

	// ErrSubscriptionExpired is returned when an expired carrier attempts to
	// schedule a trip or submit an offer.
	ErrSubscriptionExpired = errors.New("carrier subscription has expired")

	// ErrOwnTrip is returned when a carrier offers on their own posted trip.
	ErrOwnTrip = errors.New("cannot offer on own trip")

	// ErrNotEligible is returned when a carrier submits an offer on a trip
	// outside their eligible pool.
	ErrNotEligible = errors.New("carrier is not eligible for this trip")

	// ErrInvalidTransition is returned for a trip transition the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("illegal trip state transition")

	// ErrTripTerminal is returned when mutating a completed or cancelled trip.
	ErrTripTerminal = errors.New("trip is in a terminal state")

	// ErrInvalidSortMode is returned for an unknown offer sort mode.
	ErrInvalidSortMode = errors.New("unknown offer sort mode")

	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidOfferID is returned when an offer ID is empty.
	ErrInvalidOfferID = errors.New("invalid offer id")

	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidEmail is returned when an email is empty.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrTopUpReviewed is returned when reviewing a top-up that has already
	// been reviewed.
	ErrTopUpReviewed = errors.New("top-up has already been reviewed")
)
