package handlers

import (
	"net/http"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/database"
	"github.com/gin-gonic/gin"
)

// HealthHandlers contains liveness and readiness HTTP handlers
type HealthHandlers struct {
	db      *database.DB
	logger  *logging.ChanneledLogger
	started time.Time
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(db *database.DB, logger *logging.ChanneledLogger) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		logger:  logger,
		started: time.Now().UTC(),
	}
}

// GetHealth handles GET /api/v1/health - reports service and database status
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	overall, dbStatus := "ok", "ok"
	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		h.logger.System().Error("Health check database ping failed", "error", err.Error())
		overall, dbStatus = "degraded", "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbStatus,
		"uptime":   time.Since(h.started).String(),
	})
}
