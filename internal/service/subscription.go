package service

import "time"

// SubscriptionState classifies where a carrier account sits in its grace
// period.
type SubscriptionState string

const (
	SubscriptionActive  SubscriptionState = "ACTIVE"
	SubscriptionWarning SubscriptionState = "WARNING"
	SubscriptionExpired SubscriptionState = "EXPIRED"
)

const (
	// GracePeriodDays is the window after account creation during which a
	// carrier incurs no subscription restriction.
	GracePeriodDays = 90

	// warningThresholdDays is how close to expiry the state flips to WARNING.
	warningThresholdDays = 2
)

// SubscriptionStatus is the derived grace-period state of a carrier account.
type SubscriptionStatus struct {
	State         SubscriptionState `json:"state"`
	DaysRemaining int               `json:"days_remaining"` // clamped to zero for display
}

// EvaluateSubscription derives the grace-period state from the account
// creation time. Expired carriers are blocked from scheduling trips and
// submitting offers at the service layer; the state itself carries no side
// effects.
func EvaluateSubscription(createdAt, now time.Time) SubscriptionStatus {
	daysElapsed := int(now.Sub(createdAt).Hours() / 24)
	daysRemaining := GracePeriodDays - daysElapsed

	var state SubscriptionState
	switch {
	case daysRemaining <= 0:
		state = SubscriptionExpired
	case daysRemaining <= warningThresholdDays:
		state = SubscriptionWarning
	default:
		state = SubscriptionActive
	}

	if daysRemaining < 0 {
		daysRemaining = 0
	}

	return SubscriptionStatus{State: state, DaysRemaining: daysRemaining}
}
