package domain

import (
	"errors"
	"time"
)

// AdminAction is the kind of sovereign action recorded in the audit log.
type AdminAction string

const (
	AdminActionFreeze   AdminAction = "FREEZE"
	AdminActionUnfreeze AdminAction = "UNFREEZE"
)

// FreezeType distinguishes the two administrative restriction flags.
type FreezeType string

const (
	FreezeFinancial FreezeType = "FINANCIAL"
	FreezeSecurity  FreezeType = "SECURITY"
)

var (
	// ErrLogMissingTarget is returned when the audit record has no target.
	ErrLogMissingTarget = errors.New("admin log requires a target user")

	// ErrLogMissingActor is returned when the audit record has no acting admin.
	ErrLogMissingActor = errors.New("admin log requires an acting admin")

	// ErrLogMissingReason is returned when no reason is supplied for a freeze.
	ErrLogMissingReason = errors.New("admin log requires a reason")

	// ErrLogInvalidFreezeType is returned for an unknown freeze type.
	ErrLogInvalidFreezeType = errors.New("unknown freeze type")
)

// TargetSnapshot captures the target's display data at the time of the action.
type TargetSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// AdminLog is an append-only audit record of a sovereign action. One record
// per action; never mutated or deleted after creation.
type AdminLog struct {
	ID           string
	Action       AdminAction
	FreezeType   FreezeType
	Reason       string
	TargetUserID string
	AdminID      string
	Target       TargetSnapshot
	CreatedAt    time.Time
}

// ValidFreezeType reports whether t is a known freeze type.
func ValidFreezeType(t FreezeType) bool {
	return t == FreezeFinancial || t == FreezeSecurity
}

// NewAdminLog builds a validated audit record.
func NewAdminLog(id string, action AdminAction, freezeType FreezeType, reason, targetUserID, adminID string, target TargetSnapshot, now time.Time) (*AdminLog, error) {
	if targetUserID == "" {
		return nil, ErrLogMissingTarget
	}
	if adminID == "" {
		return nil, ErrLogMissingActor
	}
	if reason == "" && action == AdminActionFreeze {
		return nil, ErrLogMissingReason
	}
	if !ValidFreezeType(freezeType) {
		return nil, ErrLogInvalidFreezeType
	}
	return &AdminLog{
		ID:           id,
		Action:       action,
		FreezeType:   freezeType,
		Reason:       reason,
		TargetUserID: targetUserID,
		AdminID:      adminID,
		Target:       target,
		CreatedAt:    now,
	}, nil
}
