package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripbroker/internal/domain"
	"tripbroker/internal/middleware"
	"tripbroker/internal/service"
)

// OfferHandler handles HTTP requests for offers.
type OfferHandler struct {
	tripService *service.TripService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(tripService *service.TripService) *OfferHandler {
	return &OfferHandler{tripService: tripService}
}

// SubmitOfferRequest is the HTTP request body for a carrier bid.
type SubmitOfferRequest struct {
	Price    float64 `json:"price" binding:"required"`
	Currency string  `json:"currency" binding:"required"`
	Notes    string  `json:"notes"`
}

// OfferResponse is the HTTP response for offer operations.
type OfferResponse struct {
	OfferID   string  `json:"offer_id"`
	TripID    string  `json:"trip_id"`
	CarrierID string  `json:"carrier_id"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Notes     string  `json:"notes,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// RankedOfferResponse is an offer annotated for traveler review.
type RankedOfferResponse struct {
	OfferResponse
	CarrierName   string  `json:"carrier_name"`
	CarrierRating float64 `json:"carrier_rating"`
	CarrierTier   string  `json:"carrier_tier"`
	Score         float64 `json:"score"`
	IsBestValue   bool    `json:"is_best_value"`
	IsTopTier     bool    `json:"is_top_tier"`
}

func toOfferResponse(o *domain.Offer) OfferResponse {
	return OfferResponse{
		OfferID:   o.ID,
		TripID:    o.TripID,
		CarrierID: o.CarrierID,
		Price:     o.Price,
		Currency:  o.Currency,
		Notes:     o.Notes,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}

// SubmitOffer handles POST /v1/trips/:id/offers
func (h *OfferHandler) SubmitOffer(c *gin.Context) {
	var req SubmitOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := h.tripService.SubmitOffer(c.Request.Context(), service.SubmitOfferRequest{
		CarrierID: middleware.UserID(c),
		TripID:    c.Param("id"),
		Price:     req.Price,
		Currency:  req.Currency,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toOfferResponse(offer))
}

// ListOffers handles GET /v1/trips/:id/offers
func (h *OfferHandler) ListOffers(c *gin.Context) {
	ranked, err := h.tripService.RankedOffers(
		c.Request.Context(),
		middleware.UserID(c),
		c.Param("id"),
		service.SortMode(c.Query("sort")),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]RankedOfferResponse, 0, len(ranked))
	for _, r := range ranked {
		responses = append(responses, RankedOfferResponse{
			OfferResponse: toOfferResponse(r.Offer),
			CarrierName:   r.Carrier.Name,
			CarrierRating: r.Carrier.Rating.Average,
			CarrierTier:   string(r.Carrier.Rating.Tier),
			Score:         r.Score,
			IsBestValue:   r.IsBestValue,
			IsTopTier:     r.IsTopTier,
		})
	}
	respondJSON(c, http.StatusOK, responses)
}

// AcceptOffer handles POST /v1/trips/:id/offers/:offerId/accept
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	trip, err := h.tripService.AcceptOffer(
		c.Request.Context(),
		middleware.UserID(c),
		c.Param("id"),
		c.Param("offerId"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}
