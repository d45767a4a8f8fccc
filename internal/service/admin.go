package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripbroker/internal/domain"
	"tripbroker/internal/redis"
	"tripbroker/internal/repository"
	"tripbroker/internal/stream"
)

// AdminService performs sovereign actions: freezes, unfreezes, and role
// grants. Every state change lands in the audit log atomically with the
// change itself.
type AdminService struct {
	txm           repository.TxManager
	userRepo      repository.UserRepository
	logRepo       repository.AdminLogRepository
	cacheStore    redis.CacheStoreInterface
	bus           stream.Bus
	notifications *NotificationService
	logger        *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	txm repository.TxManager,
	userRepo repository.UserRepository,
	logRepo repository.AdminLogRepository,
	cacheStore redis.CacheStoreInterface,
	bus stream.Bus,
	notifications *NotificationService,
	logger *zap.Logger,
) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		txm:           txm,
		userRepo:      userRepo,
		logRepo:       logRepo,
		cacheStore:    cacheStore,
		bus:           bus,
		notifications: notifications,
		logger:        logger,
	}
}

// FreezeRequest is a freeze or unfreeze order against one target account.
type FreezeRequest struct {
	AdminID      string
	TargetUserID string
	FreezeType   domain.FreezeType
	Reason       string
}

// Freeze places a restriction flag on the target and records it. The actor's
// role is re-validated against the store; the transport-layer claim alone is
// never trusted for sovereign actions.
func (s *AdminService) Freeze(ctx context.Context, req FreezeRequest) (*domain.AdminLog, error) {
	return s.setFreeze(ctx, req, domain.AdminActionFreeze, true)
}

// Unfreeze lifts a restriction flag from the target and records it.
func (s *AdminService) Unfreeze(ctx context.Context, req FreezeRequest) (*domain.AdminLog, error) {
	return s.setFreeze(ctx, req, domain.AdminActionUnfreeze, false)
}

func (s *AdminService) setFreeze(ctx context.Context, req FreezeRequest, action domain.AdminAction, frozen bool) (*domain.AdminLog, error) {
	admin, err := s.requireAdmin(ctx, req.AdminID)
	if err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetByID(ctx, req.TargetUserID)
	if err != nil {
		return nil, err
	}

	entry, err := domain.NewAdminLog(
		uuid.New().String(),
		action,
		req.FreezeType,
		req.Reason,
		target.ID,
		admin.ID,
		domain.TargetSnapshot{Name: target.Name, Email: target.Email, Role: target.Role},
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	err = s.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users.SetFreeze(ctx, target.ID, req.FreezeType, frozen); err != nil {
			return err
		}
		return r.AdminLogs.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateCarrier(ctx, target.ID)
	}
	if s.bus != nil {
		s.bus.Publish(stream.Event{Topic: stream.TopicUsers, Kind: string(action), ID: target.ID})
	}
	if s.notifications != nil {
		s.notifications.NotifyFreeze(ctx, target.ID, action, req.FreezeType)
	}
	s.logger.Info("freeze state changed",
		zap.String("action", string(action)),
		zap.String("freeze_type", string(req.FreezeType)),
		zap.String("target_id", target.ID),
		zap.String("admin_id", admin.ID),
	)

	return entry, nil
}

// Logs returns the most recent audit records, newest first.
func (s *AdminService) Logs(ctx context.Context, adminID string, limit int) ([]*domain.AdminLog, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.logRepo.List(ctx, limit)
}

// LogsByTarget returns the audit trail for one account.
func (s *AdminService) LogsByTarget(ctx context.Context, adminID, targetUserID string) ([]*domain.AdminLog, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByTarget(ctx, targetUserID)
}

// GrantRole writes the role and admin flag onto an existing account, looked
// up by email. Used by the operational role tool.
func (s *AdminService) GrantRole(ctx context.Context, email string, role domain.Role, isAdmin bool) (*domain.UserProfile, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrUserInvalidRole
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetRole(ctx, user.ID, role, isAdmin); err != nil {
		return nil, err
	}
	user.Role = role
	user.IsAdmin = isAdmin

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateCarrier(ctx, user.ID)
	}
	s.logger.Info("role granted",
		zap.String("user_id", user.ID),
		zap.String("role", string(role)),
		zap.Bool("is_admin", isAdmin),
	)
	return user, nil
}

// PromoteOrCreate grants a role to the account with the given email, creating
// the account first if it does not exist. Idempotent: re-running with the
// same arguments converges on the same state.
func (s *AdminService) PromoteOrCreate(ctx context.Context, email, name string, role domain.Role, isAdmin bool) (*domain.UserProfile, error) {
	user, err := s.GrantRole(ctx, email, role, isAdmin)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err = domain.NewUserProfile(uuid.New().String(), email, name, role, time.Now())
	if err != nil {
		return nil, err
	}
	user.IsAdmin = isAdmin
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account created with role",
		zap.String("user_id", user.ID),
		zap.String("role", string(role)),
	)
	return user, nil
}

// requireAdmin re-reads the actor and checks the stored role.
func (s *AdminService) requireAdmin(ctx context.Context, adminID string) (*domain.UserProfile, error) {
	if adminID == "" {
		return nil, ErrInvalidUserID
	}
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.CanAdminister() {
		return nil, ErrPermissionDenied
	}
	return admin, nil
}
