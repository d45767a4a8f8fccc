package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripbroker/internal/domain"
	"tripbroker/internal/repository"
)

// BillingService handles balance top-ups and pricing lookups. Top-up receipts
// are reviewed by hand; the service only tracks the request and its outcome.
type BillingService struct {
	topUpRepo     repository.TopUpRepository
	pricingRepo   repository.PricingRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	logger        *zap.Logger
}

// NewBillingService creates a new BillingService.
func NewBillingService(
	topUpRepo repository.TopUpRepository,
	pricingRepo repository.PricingRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	logger *zap.Logger,
) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		topUpRepo:     topUpRepo,
		pricingRepo:   pricingRepo,
		userRepo:      userRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// RequestTopUp files a pending top-up. Financially frozen accounts are
// blocked here; a financial freeze restricts money-handling only, so the
// same account can still browse and receive offers.
func (s *BillingService) RequestTopUp(ctx context.Context, userID string, amount float64, currency, receiptRef string) (*domain.TopUpRequest, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsFinancialFrozen {
		return nil, ErrFinancialFrozen
	}

	req, err := domain.NewTopUpRequest(uuid.New().String(), userID, amount, currency, receiptRef, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.topUpRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("top-up requested",
		zap.String("topup_id", req.ID),
		zap.String("user_id", userID),
		zap.Float64("amount", amount),
	)
	return req, nil
}

// GetTopUp retrieves a single top-up request. Visible to its owner and to
// administrators.
func (s *BillingService) GetTopUp(ctx context.Context, requesterID, topUpID string) (*domain.TopUpRequest, error) {
	req, err := s.topUpRepo.GetByID(ctx, topUpID)
	if err != nil {
		return nil, err
	}
	if req.UserID != requesterID {
		requester, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil || !requester.CanAdminister() {
			return nil, ErrPermissionDenied
		}
	}
	return req, nil
}

// ListTopUps returns a user's top-up history, newest first.
func (s *BillingService) ListTopUps(ctx context.Context, userID string) ([]*domain.TopUpRequest, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.topUpRepo.ListByUser(ctx, userID)
}

// ReviewTopUp records the manual review outcome. Only the first review
// sticks; a second review of the same request is rejected.
func (s *BillingService) ReviewTopUp(ctx context.Context, adminID, topUpID string, approve bool) (*domain.TopUpRequest, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.CanAdminister() {
		return nil, ErrPermissionDenied
	}

	req, err := s.topUpRepo.GetByID(ctx, topUpID)
	if err != nil {
		return nil, err
	}

	status := domain.TopUpStatusRejected
	if approve {
		status = domain.TopUpStatusApproved
	}
	reviewedAt := time.Now()
	if err := s.topUpRepo.SetStatus(ctx, topUpID, status, adminID, reviewedAt); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrTopUpReviewed
		}
		return nil, err
	}

	req.Status = status
	req.ReviewedBy = adminID
	req.ReviewedAt = reviewedAt

	if s.notifications != nil {
		s.notifications.Notify(ctx, req.UserID, NotificationTopUpReviewed,
			"Top-Up Reviewed", "Your top-up request was "+string(status)+".", "/account/topups")
	}
	return req, nil
}

// GetPricing returns the pricing rule for a country.
func (s *BillingService) GetPricing(ctx context.Context, country string) (*domain.PricingRule, error) {
	return s.pricingRepo.GetByCountry(ctx, country)
}
