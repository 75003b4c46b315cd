package handlers

import (
	"github.com/Nina932/nyx/internal/services"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

type SystemLogHandler struct {
	systemLogService *services.SystemLogService
	retentionDays    int
}

func NewSystemLogHandler(svc *services.SystemLogService, retentionDays int) *SystemLogHandler {
	return &SystemLogHandler{systemLogService: svc, retentionDays: retentionDays}
}

// GET /api/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	resp, err := h.systemLogService.List(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, resp)
}

// Cleanup deletes logs past the retention period. The optional days query
// parameter overrides the configured retention.
// POST /api/system-logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	var q struct {
		Days int `form:"days" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid days")
		return
	}
	days := h.retentionDays
	if q.Days > 0 {
		days = q.Days
	}
	deleted, err := h.systemLogService.Cleanup(c.Request.Context(), days)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted, "retentionDays": days})
}
