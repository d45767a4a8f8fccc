package service

import (
	"testing"
	"time"
)

func TestEvaluateSubscription_ActiveEarlyInGracePeriod(t *testing.T) {
	t.Parallel()

	now := time.Now()
	createdAt := now.AddDate(0, 0, -10)

	status := EvaluateSubscription(createdAt, now)
	if status.State != SubscriptionActive {
		t.Errorf("expected ACTIVE, got %s", status.State)
	}
	if status.DaysRemaining != 80 {
		t.Errorf("expected 80 days remaining, got %d", status.DaysRemaining)
	}
}

func TestEvaluateSubscription_WarningNearExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()

	for _, daysLeft := range []int{1, 2} {
		createdAt := now.AddDate(0, 0, daysLeft-GracePeriodDays)
		status := EvaluateSubscription(createdAt, now)
		if status.State != SubscriptionWarning {
			t.Errorf("days left %d: expected WARNING, got %s", daysLeft, status.State)
		}
		if status.DaysRemaining != daysLeft {
			t.Errorf("days left %d: got %d remaining", daysLeft, status.DaysRemaining)
		}
	}

	// Three days out is still comfortably active.
	status := EvaluateSubscription(now.AddDate(0, 0, 3-GracePeriodDays), now)
	if status.State != SubscriptionActive {
		t.Errorf("expected ACTIVE at 3 days remaining, got %s", status.State)
	}
}

func TestEvaluateSubscription_ExpiredClampsDaysToZero(t *testing.T) {
	t.Parallel()

	now := time.Now()
	createdAt := now.AddDate(0, 0, -95)

	status := EvaluateSubscription(createdAt, now)
	if status.State != SubscriptionExpired {
		t.Errorf("expected EXPIRED, got %s", status.State)
	}
	if status.DaysRemaining != 0 {
		t.Errorf("expected 0 days remaining, got %d", status.DaysRemaining)
	}
}

func TestEvaluateSubscription_ExpiresExactlyAtBoundary(t *testing.T) {
	t.Parallel()

	now := time.Now()
	createdAt := now.AddDate(0, 0, -GracePeriodDays)

	status := EvaluateSubscription(createdAt, now)
	if status.State != SubscriptionExpired {
		t.Errorf("expected EXPIRED on day %d, got %s", GracePeriodDays, status.State)
	}
}
