package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripbroker/internal/domain"
	"tripbroker/internal/redis"
	"tripbroker/internal/service"
)

// ──────────────────────────────────────────────
// FREEZE, AUDIT, AND ROLE GRANT FLOWS
// ──────────────────────────────────────────────

type adminFlowFixture struct {
	userRepo   *MockUserRepository
	logRepo    *MockAdminLogRepository
	cacheStore *MockCacheStore
	service    *service.AdminService
}

func newAdminFlowFixture(t *testing.T) *adminFlowFixture {
	t.Helper()

	userRepo := NewMockUserRepository()
	logRepo := NewMockAdminLogRepository()
	cacheStore := NewMockCacheStore()
	txm := NewMockTxManager(NewMockTripRepository(), NewMockOfferRepository(), userRepo, logRepo)

	svc := service.NewAdminService(
		txm, userRepo, logRepo, cacheStore, nil,
		service.NewNotificationService(nil, nil), nil,
	)
	return &adminFlowFixture{
		userRepo:   userRepo,
		logRepo:    logRepo,
		cacheStore: cacheStore,
		service:    svc,
	}
}

func (f *adminFlowFixture) addAdmin(id string) {
	f.userRepo.AddUser(&domain.UserProfile{
		ID: id, Email: id + "@example.com", Role: domain.RoleAdmin, IsAdmin: true, CreatedAt: time.Now(),
	})
}

func (f *adminFlowFixture) addTarget(id, name string) {
	f.userRepo.AddUser(&domain.UserProfile{
		ID:        id,
		Email:     id + "@example.com",
		Name:      name,
		Role:      domain.RoleCarrier,
		CreatedAt: time.Now(),
	})
}

func TestFreeze_SetsFlagAndRecordsAudit(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)
	f.addAdmin("admin-1")
	f.addTarget("carrier-1", "Layla")

	entry, err := f.service.Freeze(context.Background(), service.FreezeRequest{
		AdminID:      "admin-1",
		TargetUserID: "carrier-1",
		FreezeType:   domain.FreezeSecurity,
		Reason:       "repeated no-shows",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target := f.userRepo.GetUser("carrier-1")
	if !target.IsDeactivated {
		t.Error("expected security freeze to deactivate the account")
	}
	if target.IsFinancialFrozen {
		t.Error("security freeze must not touch the financial flag")
	}

	if got := f.logRepo.LogCount(); got != 1 {
		t.Fatalf("expected 1 audit record, got %d", got)
	}
	if entry.Action != domain.AdminActionFreeze || entry.FreezeType != domain.FreezeSecurity {
		t.Errorf("audit record %s/%s", entry.Action, entry.FreezeType)
	}
	if entry.Reason != "repeated no-shows" {
		t.Errorf("audit reason = %q", entry.Reason)
	}
	if entry.Target.Name != "Layla" || entry.Target.Role != domain.RoleCarrier {
		t.Errorf("target snapshot = %+v", entry.Target)
	}
}

func TestFreezeThenUnfreeze_RestoresFlagWithSecondRecord(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)
	f.addAdmin("admin-1")
	f.addTarget("carrier-1", "Layla")

	ctx := context.Background()
	req := service.FreezeRequest{
		AdminID:      "admin-1",
		TargetUserID: "carrier-1",
		FreezeType:   domain.FreezeFinancial,
		Reason:       "disputed receipt",
	}
	if _, err := f.service.Freeze(ctx, req); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}
	if !f.userRepo.GetUser("carrier-1").IsFinancialFrozen {
		t.Fatal("expected financial flag set")
	}

	entry, err := f.service.Unfreeze(ctx, req)
	if err != nil {
		t.Fatalf("unfreeze failed: %v", err)
	}
	if f.userRepo.GetUser("carrier-1").IsFinancialFrozen {
		t.Error("expected financial flag cleared")
	}
	if entry.Action != domain.AdminActionUnfreeze {
		t.Errorf("audit action = %s", entry.Action)
	}
	if got := f.logRepo.LogCount(); got != 2 {
		t.Errorf("expected 2 audit records, got %d", got)
	}
}

func TestFreeze_NonAdminActorIsDenied(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)
	f.addTarget("carrier-1", "Layla")
	f.addTarget("carrier-2", "Omar")

	_, err := f.service.Freeze(context.Background(), service.FreezeRequest{
		AdminID:      "carrier-2",
		TargetUserID: "carrier-1",
		FreezeType:   domain.FreezeSecurity,
		Reason:       "trying it on",
	})
	if !errors.Is(err, service.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if f.logRepo.LogCount() != 0 {
		t.Error("denied action must leave no audit record")
	}
	if f.userRepo.GetUser("carrier-1").IsDeactivated {
		t.Error("denied action must not flip the flag")
	}
}

func TestFreeze_RequiresReason(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)
	f.addAdmin("admin-1")
	f.addTarget("carrier-1", "Layla")

	_, err := f.service.Freeze(context.Background(), service.FreezeRequest{
		AdminID:      "admin-1",
		TargetUserID: "carrier-1",
		FreezeType:   domain.FreezeSecurity,
	})
	if !errors.Is(err, domain.ErrLogMissingReason) {
		t.Fatalf("expected ErrLogMissingReason, got %v", err)
	}
}

func TestFreeze_InvalidatesCachedCarrier(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)
	f.addAdmin("admin-1")
	f.addTarget("carrier-1", "Layla")
	_ = f.cacheStore.SetCarrier(context.Background(), redis.FromProfile(f.userRepo.GetUser("carrier-1")))

	if _, err := f.service.Freeze(context.Background(), service.FreezeRequest{
		AdminID:      "admin-1",
		TargetUserID: "carrier-1",
		FreezeType:   domain.FreezeSecurity,
		Reason:       "repeated no-shows",
	}); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}

	if f.cacheStore.Cached("carrier-1") {
		t.Error("expected cached carrier invalidated after freeze")
	}
}

func TestGrantRole_PromotesExistingAccount(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)
	f.addTarget("carrier-1", "Layla")

	user, err := f.service.GrantRole(context.Background(), "carrier-1@example.com", domain.RoleAdmin, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != domain.RoleAdmin || !user.IsAdmin {
		t.Errorf("granted profile = %s admin=%v", user.Role, user.IsAdmin)
	}
	if got := f.userRepo.GetUser("carrier-1"); got.Role != domain.RoleAdmin || !got.IsAdmin {
		t.Errorf("stored profile = %s admin=%v", got.Role, got.IsAdmin)
	}
}

func TestGrantRole_UnknownRoleIsRejected(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)
	f.addTarget("carrier-1", "Layla")

	_, err := f.service.GrantRole(context.Background(), "carrier-1@example.com", domain.Role("SUPERUSER"), true)
	if !errors.Is(err, domain.ErrUserInvalidRole) {
		t.Fatalf("expected ErrUserInvalidRole, got %v", err)
	}
}

func TestPromoteOrCreate_CreatesMissingAccount(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)

	user, err := f.service.PromoteOrCreate(context.Background(), "new@example.com", "New Admin", domain.RoleAdmin, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "new@example.com" || user.Role != domain.RoleAdmin || !user.IsAdmin {
		t.Errorf("created profile = %+v", user)
	}

	// Re-running converges instead of erroring or duplicating.
	again, err := f.service.PromoteOrCreate(context.Background(), "new@example.com", "New Admin", domain.RoleAdmin, true)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected same account, got %s and %s", user.ID, again.ID)
	}
}

func TestLogs_RequiresAdminAndReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	f := newAdminFlowFixture(t)
	f.addAdmin("admin-1")
	f.addTarget("carrier-1", "Layla")

	ctx := context.Background()
	req := service.FreezeRequest{
		AdminID:      "admin-1",
		TargetUserID: "carrier-1",
		FreezeType:   domain.FreezeSecurity,
		Reason:       "repeated no-shows",
	}
	if _, err := f.service.Freeze(ctx, req); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}
	if _, err := f.service.Unfreeze(ctx, req); err != nil {
		t.Fatalf("unfreeze failed: %v", err)
	}

	logs, err := f.service.Logs(ctx, "admin-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(logs))
	}
	if logs[0].Action != domain.AdminActionUnfreeze {
		t.Errorf("expected newest record first, got %s", logs[0].Action)
	}

	if _, err := f.service.Logs(ctx, "carrier-1", 0); !errors.Is(err, service.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for non-admin, got %v", err)
	}
}
