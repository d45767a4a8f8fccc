package service

import (
	"context"
	"time"

	"tripbroker/internal/domain"
	"tripbroker/internal/repository"
)

// UserService exposes profile reads and subscription standing.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile retrieves a profile by ID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.userRepo.GetByID(ctx, userID)
}

// SubscriptionStatus evaluates a carrier's subscription standing. Non-carrier
// accounts always read as active; the grace clock only runs for carriers.
func (s *UserService) SubscriptionStatus(ctx context.Context, userID string) (SubscriptionStatus, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return SubscriptionStatus{}, err
	}
	if !user.IsCarrier() {
		return SubscriptionStatus{State: SubscriptionActive, DaysRemaining: GracePeriodDays}, nil
	}
	return EvaluateSubscription(user.CreatedAt, time.Now()), nil
}
