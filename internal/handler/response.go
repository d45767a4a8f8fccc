package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripbroker/internal/domain"
	"tripbroker/internal/repository"
	"tripbroker/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidOfferID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidSortMode),
		errors.Is(err, domain.ErrTripMissingOwner),
		errors.Is(err, domain.ErrTripMissingRoute),
		errors.Is(err, domain.ErrTripInvalidCapacity),
		errors.Is(err, domain.ErrTripDepartureInPast),
		errors.Is(err, domain.ErrTripInvalidJurisdiction),
		errors.Is(err, domain.ErrOfferInvalidPrice),
		errors.Is(err, domain.ErrOfferMissingCurrency),
		errors.Is(err, domain.ErrTopUpInvalidAmount),
		errors.Is(err, domain.ErrUserInvalidRole),
		errors.Is(err, domain.ErrLogMissingReason),
		errors.Is(err, domain.ErrLogInvalidFreezeType):
		return http.StatusBadRequest

	// Conflict errors - the precondition no longer holds
	case errors.Is(err, service.ErrTripNotAwaitingOffers),
		errors.Is(err, service.ErrTripNotPendingConfirmation),
		errors.Is(err, service.ErrConfirmationElapsed),
		errors.Is(err, service.ErrAcceptanceInProgress),
		errors.Is(err, service.ErrOfferNotPending),
		errors.Is(err, service.ErrOfferTripMismatch),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrTripTerminal),
		errors.Is(err, service.ErrTopUpReviewed),
		errors.Is(err, repository.ErrStale):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrNotCarrier),
		errors.Is(err, service.ErrCarrierProfileIncomplete),
		errors.Is(err, service.ErrCarrierDeactivated),
		errors.Is(err, service.ErrFinancialFrozen),
		errors.Is(err, service.ErrSubscriptionExpired),
		errors.Is(err, service.ErrOwnTrip),
		errors.Is(err, service.ErrNotEligible):
		return http.StatusForbidden

	// Store timeouts - transient, caller may retry
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
