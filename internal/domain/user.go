package domain

import (
	"errors"
	"time"
)

// Role represents the role of an account.
type Role string

const (
	RoleTraveler Role = "TRAVELER"
	RoleCarrier  Role = "CARRIER"
	RoleAdmin    Role = "ADMIN"
	RoleOwner    Role = "OWNER"
)

// RatingTier represents a carrier's reputation tier.
type RatingTier string

const (
	TierBronze   RatingTier = "BRONZE"
	TierSilver   RatingTier = "SILVER"
	TierGold     RatingTier = "GOLD"
	TierPlatinum RatingTier = "PLATINUM"
)

var (
	// ErrUserMissingEmail is returned when a profile has no email.
	ErrUserMissingEmail = errors.New("profile requires an email")

	// ErrUserInvalidRole is returned for an unknown role.
	ErrUserInvalidRole = errors.New("unknown role")
)

// Jurisdiction is a carrier's configured operating origin/destination pair.
type Jurisdiction struct {
	Origin      string
	Destination string
}

// RatingStats summarizes a carrier's reputation.
type RatingStats struct {
	Average float64
	Tier    RatingTier
}

// UserProfile is a role-tagged account. Carrier-specific fields are zero for
// other roles.
type UserProfile struct {
	ID      string
	Email   string
	Name    string
	Role    Role
	IsAdmin bool

	VehicleCapacity     int
	VehicleCategory     string
	Jurisdiction        *Jurisdiction
	CurrentActiveTripID string // non-empty puts the carrier in return-trip mode
	IsPartial           bool   // profile incomplete, blocks all carrier actions
	Rating              RatingStats

	IsFinancialFrozen bool
	IsDeactivated     bool // security freeze

	CreatedAt time.Time
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleTraveler, RoleCarrier, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// NewUserProfile builds a profile with a validated role.
func NewUserProfile(id, email, name string, role Role, now time.Time) (*UserProfile, error) {
	if email == "" {
		return nil, ErrUserMissingEmail
	}
	if !ValidRole(role) {
		return nil, ErrUserInvalidRole
	}
	return &UserProfile{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      role,
		IsAdmin:   role == RoleAdmin || role == RoleOwner,
		CreatedAt: now,
	}, nil
}

// IsCarrier reports whether the profile belongs to a carrier.
func (u *UserProfile) IsCarrier() bool {
	return u.Role == RoleCarrier
}

// CanAdminister reports whether the profile may perform sovereign actions.
func (u *UserProfile) CanAdminister() bool {
	return u.Role == RoleAdmin || u.Role == RoleOwner
}

// InReturnTripMode reports whether the carrier is committed to an active trip.
// Resolution of the referenced trip is the caller's concern.
func (u *UserProfile) InReturnTripMode() bool {
	return u.CurrentActiveTripID != ""
}

// IsTopTier reports whether the carrier's reputation tier is GOLD or PLATINUM.
func (u *UserProfile) IsTopTier() bool {
	return u.Rating.Tier == TierGold || u.Rating.Tier == TierPlatinum
}
