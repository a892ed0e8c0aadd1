package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"technews/internal/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	base
	db *gorm.DB
}

func NewHealthHandler(logger *slog.Logger, db *gorm.DB) *HealthHandler {
	return &HealthHandler{base: base{logger: logger}, db: db}
}

// Health GET /health reports 503 when the store does not answer.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, h.db); err != nil {
		h.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
