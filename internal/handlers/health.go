package handlers

import (
	"net/http"
	"time"

	"github.com/Nina932/nyx/internal/ledger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports liveness plus the state of the database.
type HealthHandler struct {
	db    *gorm.DB
	usage ledger.Writer
}

func NewHealthHandler(db *gorm.DB, usage ledger.Writer) *HealthHandler {
	return &HealthHandler{db: db, usage: usage}
}

// GET /api/health
func (h *HealthHandler) Check(c *gin.Context) {
	status, code := "ok", http.StatusOK
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "error"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error"
	}
	if dbStatus != "ok" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	usageMode := "sync"
	if h.usage != nil && h.usage.IsAsync() {
		usageMode = "async (Redis)"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"components": gin.H{
			"database":   dbStatus,
			"usage_mode": usageMode,
		},
	})
}
