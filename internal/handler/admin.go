package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tripbroker/internal/domain"
	"tripbroker/internal/middleware"
	"tripbroker/internal/service"
)

// AdminHandler handles HTTP requests for sovereign actions.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// FreezeRequest is the HTTP request body for freeze and unfreeze.
type FreezeRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
	FreezeType   string `json:"freeze_type" binding:"required"`
	Reason       string `json:"reason"`
}

// AdminLogResponse is one audit record.
type AdminLogResponse struct {
	ID           string `json:"id"`
	Action       string `json:"action"`
	FreezeType   string `json:"freeze_type"`
	Reason       string `json:"reason,omitempty"`
	TargetUserID string `json:"target_user_id"`
	AdminID      string `json:"admin_id"`
	TargetName   string `json:"target_name"`
	TargetEmail  string `json:"target_email"`
	TargetRole   string `json:"target_role"`
	CreatedAt    string `json:"created_at"`
}

func toAdminLogResponse(l *domain.AdminLog) AdminLogResponse {
	return AdminLogResponse{
		ID:           l.ID,
		Action:       string(l.Action),
		FreezeType:   string(l.FreezeType),
		Reason:       l.Reason,
		TargetUserID: l.TargetUserID,
		AdminID:      l.AdminID,
		TargetName:   l.Target.Name,
		TargetEmail:  l.Target.Email,
		TargetRole:   string(l.Target.Role),
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
	}
}

// Freeze handles POST /v1/admin/freeze
func (h *AdminHandler) Freeze(c *gin.Context) {
	var req FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	entry, err := h.adminService.Freeze(c.Request.Context(), service.FreezeRequest{
		AdminID:      middleware.UserID(c),
		TargetUserID: req.TargetUserID,
		FreezeType:   domain.FreezeType(req.FreezeType),
		Reason:       req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAdminLogResponse(entry))
}

// Unfreeze handles POST /v1/admin/unfreeze
func (h *AdminHandler) Unfreeze(c *gin.Context) {
	var req FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	entry, err := h.adminService.Unfreeze(c.Request.Context(), service.FreezeRequest{
		AdminID:      middleware.UserID(c),
		TargetUserID: req.TargetUserID,
		FreezeType:   domain.FreezeType(req.FreezeType),
		Reason:       req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAdminLogResponse(entry))
}

// ListLogs handles GET /v1/admin/logs
func (h *AdminHandler) ListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	var logs []*domain.AdminLog
	var err error
	if target := c.Query("target"); target != "" {
		logs, err = h.adminService.LogsByTarget(c.Request.Context(), middleware.UserID(c), target)
	} else {
		logs, err = h.adminService.Logs(c.Request.Context(), middleware.UserID(c), limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]AdminLogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, toAdminLogResponse(l))
	}
	respondJSON(c, http.StatusOK, responses)
}
