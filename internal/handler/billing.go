package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripbroker/internal/domain"
	"tripbroker/internal/middleware"
	"tripbroker/internal/service"
)

// BillingHandler handles HTTP requests for top-ups and pricing.
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// TopUpRequestBody is the HTTP request body for a top-up.
type TopUpRequestBody struct {
	Amount     float64 `json:"amount" binding:"required"`
	Currency   string  `json:"currency"`
	ReceiptRef string  `json:"receipt_ref"`
}

// ReviewTopUpRequest is the HTTP request body for a top-up review.
type ReviewTopUpRequest struct {
	Approve bool `json:"approve"`
}

// TopUpResponse is the HTTP response for top-up operations.
type TopUpResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	ReceiptRef string  `json:"receipt_ref,omitempty"`
	Status     string  `json:"status"`
	ReviewedBy string  `json:"reviewed_by,omitempty"`
	ReviewedAt string  `json:"reviewed_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// PricingResponse is the HTTP response for a pricing rule.
type PricingResponse struct {
	Country            string  `json:"country"`
	Currency           string  `json:"currency"`
	TravelerBookingFee float64 `json:"traveler_booking_fee"`
	CarrierMonthlySub  float64 `json:"carrier_monthly_subscription"`
}

func toTopUpResponse(t *domain.TopUpRequest) TopUpResponse {
	r := TopUpResponse{
		ID:         t.ID,
		UserID:     t.UserID,
		Amount:     t.Amount,
		Currency:   t.Currency,
		ReceiptRef: t.ReceiptRef,
		Status:     string(t.Status),
		ReviewedBy: t.ReviewedBy,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}
	if !t.ReviewedAt.IsZero() {
		r.ReviewedAt = t.ReviewedAt.Format(time.RFC3339)
	}
	return r
}

// RequestTopUp handles POST /v1/topups
func (h *BillingHandler) RequestTopUp(c *gin.Context) {
	var req TopUpRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	topUp, err := h.billingService.RequestTopUp(c.Request.Context(), middleware.UserID(c), req.Amount, req.Currency, req.ReceiptRef)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTopUpResponse(topUp))
}

// ListTopUps handles GET /v1/topups
func (h *BillingHandler) ListTopUps(c *gin.Context) {
	topUps, err := h.billingService.ListTopUps(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]TopUpResponse, 0, len(topUps))
	for _, t := range topUps {
		responses = append(responses, toTopUpResponse(t))
	}
	respondJSON(c, http.StatusOK, responses)
}

// GetTopUp handles GET /v1/topups/:id
func (h *BillingHandler) GetTopUp(c *gin.Context) {
	topUp, err := h.billingService.GetTopUp(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTopUpResponse(topUp))
}

// ReviewTopUp handles POST /v1/admin/topups/:id/review
func (h *BillingHandler) ReviewTopUp(c *gin.Context) {
	var req ReviewTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	topUp, err := h.billingService.ReviewTopUp(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTopUpResponse(topUp))
}

// GetPricing handles GET /v1/pricing/:country
func (h *BillingHandler) GetPricing(c *gin.Context) {
	rule, err := h.billingService.GetPricing(c.Request.Context(), c.Param("country"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PricingResponse{
		Country:            rule.Country,
		Currency:           rule.Currency,
		TravelerBookingFee: rule.TravelerBookingFee,
		CarrierMonthlySub:  rule.CarrierMonthlySub,
	})
}
