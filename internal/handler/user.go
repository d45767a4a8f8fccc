package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripbroker/internal/domain"
	"tripbroker/internal/middleware"
	"tripbroker/internal/service"
)

// UserHandler handles HTTP requests for the authenticated profile.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ProfileResponse is the HTTP response for the authenticated profile.
type ProfileResponse struct {
	ID                  string  `json:"id"`
	Email               string  `json:"email"`
	Name                string  `json:"name"`
	Role                string  `json:"role"`
	VehicleCapacity     int     `json:"vehicle_capacity,omitempty"`
	VehicleCategory     string  `json:"vehicle_category,omitempty"`
	JurisdictionOrigin  string  `json:"jurisdiction_origin,omitempty"`
	JurisdictionDest    string  `json:"jurisdiction_destination,omitempty"`
	CurrentActiveTripID string  `json:"current_active_trip_id,omitempty"`
	IsPartial           bool    `json:"is_partial,omitempty"`
	RatingAverage       float64 `json:"rating_average,omitempty"`
	RatingTier          string  `json:"rating_tier,omitempty"`
	IsFinancialFrozen   bool    `json:"is_financial_frozen,omitempty"`
	IsDeactivated       bool    `json:"is_deactivated,omitempty"`
}

func toProfileResponse(u *domain.UserProfile) ProfileResponse {
	r := ProfileResponse{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		Role:                string(u.Role),
		VehicleCapacity:     u.VehicleCapacity,
		VehicleCategory:     u.VehicleCategory,
		CurrentActiveTripID: u.CurrentActiveTripID,
		IsPartial:           u.IsPartial,
		RatingAverage:       u.Rating.Average,
		RatingTier:          string(u.Rating.Tier),
		IsFinancialFrozen:   u.IsFinancialFrozen,
		IsDeactivated:       u.IsDeactivated,
	}
	if u.Jurisdiction != nil {
		r.JurisdictionOrigin = u.Jurisdiction.Origin
		r.JurisdictionDest = u.Jurisdiction.Destination
	}
	return r
}

// GetMe handles GET /v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toProfileResponse(user))
}

// GetSubscription handles GET /v1/users/me/subscription
func (h *UserHandler) GetSubscription(c *gin.Context) {
	status, err := h.userService.SubscriptionStatus(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, status)
}
