package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripbroker/internal/domain"
	"tripbroker/internal/middleware"
	"tripbroker/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for posting a trip request.
type CreateTripRequest struct {
	Origin                  string `json:"origin" binding:"required"`
	Destination             string `json:"destination" binding:"required"`
	Passengers              int    `json:"passengers" binding:"required"`
	PreferredVehicle        string `json:"preferred_vehicle"`
	RequestType             string `json:"request_type"`
	JurisdictionOrigin      string `json:"jurisdiction_origin"`
	JurisdictionDestination string `json:"jurisdiction_destination"`
	DepartureDate           string `json:"departure_date" binding:"required"`
}

// ScheduleTripRequest is the HTTP request body for a carrier-scheduled run.
type ScheduleTripRequest struct {
	Origin          string `json:"origin" binding:"required"`
	Destination     string `json:"destination" binding:"required"`
	VehicleCapacity int    `json:"vehicle_capacity" binding:"required"`
	DepartureDate   string `json:"departure_date" binding:"required"`
}

// CancelTripRequest is the HTTP request body for cancelling a trip.
type CancelTripRequest struct {
	Reason string `json:"reason"`
}

// TransferTripRequest is the HTTP request body for an admin trip transfer.
type TransferTripRequest struct {
	NewCarrierID string `json:"new_carrier_id" binding:"required"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID                  string `json:"trip_id"`
	UserID                  string `json:"user_id"`
	CarrierID               string `json:"carrier_id,omitempty"`
	OriginalCarrierID       string `json:"original_carrier_id,omitempty"`
	Origin                  string `json:"origin"`
	Destination             string `json:"destination"`
	Passengers              int    `json:"passengers,omitempty"`
	VehicleCapacity         int    `json:"vehicle_capacity,omitempty"`
	AvailableSeats          int    `json:"available_seats,omitempty"`
	PreferredVehicle        string `json:"preferred_vehicle,omitempty"`
	RequestType             string `json:"request_type"`
	JurisdictionOrigin      string `json:"jurisdiction_origin,omitempty"`
	JurisdictionDestination string `json:"jurisdiction_destination,omitempty"`
	Status                  string `json:"status"`
	DepartureDate           string `json:"departure_date"`
	AcceptedAt              string `json:"accepted_at,omitempty"`
	CreatedAt               string `json:"created_at"`
	CancelledAt             string `json:"cancelled_at,omitempty"`
	CancelReason            string `json:"cancel_reason,omitempty"`
	OfferCount              int    `json:"offer_count,omitempty"`
	Stagnant                bool   `json:"stagnant,omitempty"`
}

func toTripResponse(t *domain.Trip) TripResponse {
	r := TripResponse{
		TripID:                  t.ID,
		UserID:                  t.UserID,
		CarrierID:               t.CarrierID,
		OriginalCarrierID:       t.OriginalCarrierID,
		Origin:                  t.Origin,
		Destination:             t.Destination,
		Passengers:              t.Passengers,
		VehicleCapacity:         t.VehicleCapacity,
		AvailableSeats:          t.AvailableSeats,
		PreferredVehicle:        t.PreferredVehicle,
		RequestType:             string(t.RequestType),
		JurisdictionOrigin:      t.JurisdictionOrigin,
		JurisdictionDestination: t.JurisdictionDestination,
		Status:                  string(t.Status),
		DepartureDate:           t.DepartureDate.Format(time.RFC3339),
		CreatedAt:               t.CreatedAt.Format(time.RFC3339),
		CancelReason:            t.CancelReason,
	}
	if !t.AcceptedAt.IsZero() {
		r.AcceptedAt = t.AcceptedAt.Format(time.RFC3339)
	}
	if !t.CancelledAt.IsZero() {
		r.CancelledAt = t.CancelledAt.Format(time.RFC3339)
	}
	return r
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureDate)
	if err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "departure_date must be RFC3339"})
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		UserID:                  middleware.UserID(c),
		Origin:                  req.Origin,
		Destination:             req.Destination,
		Passengers:              req.Passengers,
		PreferredVehicle:        req.PreferredVehicle,
		RequestType:             domain.RequestType(req.RequestType),
		JurisdictionOrigin:      req.JurisdictionOrigin,
		JurisdictionDestination: req.JurisdictionDestination,
		DepartureDate:           departure,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// ScheduleTrip handles POST /v1/trips/scheduled
func (h *TripHandler) ScheduleTrip(c *gin.Context) {
	var req ScheduleTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureDate)
	if err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "departure_date must be RFC3339"})
		return
	}

	trip, err := h.tripService.ScheduleTrip(c.Request.Context(), service.ScheduleTripRequest{
		CarrierID:       middleware.UserID(c),
		Origin:          req.Origin,
		Destination:     req.Destination,
		VehicleCapacity: req.VehicleCapacity,
		DepartureDate:   departure,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	view, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := toTripResponse(view.Trip)
	response.OfferCount = view.OfferCount
	response.Stagnant = view.Stagnant
	respondJSON(c, http.StatusOK, response)
}

// ListMyTrips handles GET /v1/trips
func (h *TripHandler) ListMyTrips(c *gin.Context) {
	userID := middleware.UserID(c)

	var trips []*domain.Trip
	var err error
	if c.Query("as") == "carrier" {
		trips, err = h.tripService.ListTripsByCarrier(c.Request.Context(), userID)
	} else {
		trips, err = h.tripService.ListTripsByUser(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		responses = append(responses, toTripResponse(t))
	}
	respondJSON(c, http.StatusOK, responses)
}

// ListOpportunities handles GET /v1/trips/opportunities
func (h *TripHandler) ListOpportunities(c *gin.Context) {
	trips, err := h.tripService.ListOpportunities(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		responses = append(responses, toTripResponse(t))
	}
	respondJSON(c, http.StatusOK, responses)
}

// ConfirmTrip handles POST /v1/trips/:id/confirm
func (h *TripHandler) ConfirmTrip(c *gin.Context) {
	trip, err := h.tripService.ConfirmTrip(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// DeclineTrip handles POST /v1/trips/:id/decline
func (h *TripHandler) DeclineTrip(c *gin.Context) {
	trip, err := h.tripService.DeclineTrip(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// StartTrip handles POST /v1/trips/:id/start
func (h *TripHandler) StartTrip(c *gin.Context) {
	trip, err := h.tripService.StartTrip(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	trip, err := h.tripService.CompleteTrip(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	var req CancelTripRequest
	_ = c.ShouldBindJSON(&req) // reason is optional

	trip, err := h.tripService.CancelTrip(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// TransferTrip handles POST /v1/admin/trips/:id/transfer
func (h *TripHandler) TransferTrip(c *gin.Context) {
	var req TransferTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.TransferTrip(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.NewCarrierID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponse(trip))
}
