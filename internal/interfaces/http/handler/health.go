package handler

import (
	"net/http"
	"time"

	"github.com/fintermediary/backoffice/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable. *persistence.Database satisfies it.
type Pinger interface {
	Ping() error
}

// HealthHandler answers liveness checks
type HealthHandler struct {
	db      Pinger
	version string
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health reports 200 when the database answers, 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"version":  h.version,
		"database": "ok",
	}
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		body["status"] = "unhealthy"
		body["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
