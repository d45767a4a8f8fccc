package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripbroker/internal/domain"
	"tripbroker/internal/service"
)

// ──────────────────────────────────────────────
// TOP-UP AND PRICING FLOWS
// ──────────────────────────────────────────────

type billingFlowFixture struct {
	topUpRepo   *MockTopUpRepository
	pricingRepo *MockPricingRepository
	userRepo    *MockUserRepository
	service     *service.BillingService
}

func newBillingFlowFixture(t *testing.T) *billingFlowFixture {
	t.Helper()

	topUpRepo := NewMockTopUpRepository()
	pricingRepo := NewMockPricingRepository()
	userRepo := NewMockUserRepository()

	svc := service.NewBillingService(
		topUpRepo, pricingRepo, userRepo,
		service.NewNotificationService(nil, nil), nil,
	)
	return &billingFlowFixture{
		topUpRepo:   topUpRepo,
		pricingRepo: pricingRepo,
		userRepo:    userRepo,
		service:     svc,
	}
}

func (f *billingFlowFixture) addUser(id string, role domain.Role) {
	f.userRepo.AddUser(&domain.UserProfile{
		ID:        id,
		Email:     id + "@example.com",
		Role:      role,
		IsAdmin:   role == domain.RoleAdmin,
		CreatedAt: time.Now(),
	})
}

func TestRequestTopUp_FilesPendingRequest(t *testing.T) {
	t.Parallel()

	f := newBillingFlowFixture(t)
	f.addUser("carrier-1", domain.RoleCarrier)

	req, err := f.service.RequestTopUp(context.Background(), "carrier-1", 25, "JOD", "receipt-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != domain.TopUpStatusPending {
		t.Errorf("expected PENDING, got %s", req.Status)
	}
	if req.Amount != 25 || req.ReceiptRef != "receipt-001" {
		t.Errorf("stored request = %+v", req)
	}
}

func TestRequestTopUp_FinanciallyFrozenUserIsBlocked(t *testing.T) {
	t.Parallel()

	f := newBillingFlowFixture(t)
	f.addUser("carrier-1", domain.RoleCarrier)
	f.userRepo.GetUser("carrier-1").IsFinancialFrozen = true

	_, err := f.service.RequestTopUp(context.Background(), "carrier-1", 25, "JOD", "receipt-001")
	if !errors.Is(err, service.ErrFinancialFrozen) {
		t.Fatalf("expected ErrFinancialFrozen, got %v", err)
	}
}

func TestRequestTopUp_RejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	f := newBillingFlowFixture(t)
	f.addUser("carrier-1", domain.RoleCarrier)

	_, err := f.service.RequestTopUp(context.Background(), "carrier-1", 0, "JOD", "receipt-001")
	if !errors.Is(err, domain.ErrTopUpInvalidAmount) {
		t.Fatalf("expected ErrTopUpInvalidAmount, got %v", err)
	}
}

func TestReviewTopUp_FirstReviewSticks(t *testing.T) {
	t.Parallel()

	f := newBillingFlowFixture(t)
	f.addUser("carrier-1", domain.RoleCarrier)
	f.addUser("admin-1", domain.RoleAdmin)

	ctx := context.Background()
	req, err := f.service.RequestTopUp(ctx, "carrier-1", 25, "JOD", "receipt-001")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	reviewed, err := f.service.ReviewTopUp(ctx, "admin-1", req.ID, true)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != domain.TopUpStatusApproved {
		t.Errorf("expected APPROVED, got %s", reviewed.Status)
	}
	if reviewed.ReviewedBy != "admin-1" {
		t.Errorf("reviewer = %q", reviewed.ReviewedBy)
	}

	// A second review of the same request must not overwrite the outcome.
	_, err = f.service.ReviewTopUp(ctx, "admin-1", req.ID, false)
	if !errors.Is(err, service.ErrTopUpReviewed) {
		t.Fatalf("expected ErrTopUpReviewed, got %v", err)
	}

	stored, err := f.topUpRepo.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if stored.Status != domain.TopUpStatusApproved {
		t.Errorf("second review changed outcome to %s", stored.Status)
	}
}

func TestReviewTopUp_NonAdminIsDenied(t *testing.T) {
	t.Parallel()

	f := newBillingFlowFixture(t)
	f.addUser("carrier-1", domain.RoleCarrier)

	ctx := context.Background()
	req, err := f.service.RequestTopUp(ctx, "carrier-1", 25, "JOD", "receipt-001")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if _, err := f.service.ReviewTopUp(ctx, "carrier-1", req.ID, true); !errors.Is(err, service.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestGetPricing_ReturnsCountryRule(t *testing.T) {
	t.Parallel()

	f := newBillingFlowFixture(t)
	f.pricingRepo.AddRule(&domain.PricingRule{
		Country:            "JO",
		Currency:           "JOD",
		TravelerBookingFee: 1.5,
		CarrierMonthlySub:  20,
	})

	rule, err := f.service.GetPricing(context.Background(), "JO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.Currency != "JOD" || rule.CarrierMonthlySub != 20 {
		t.Errorf("rule = %+v", rule)
	}
}
