package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/pkg/version"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health reports liveness together with database reachability
type Health struct {
	db     *database.DB
	logger *zap.Logger
}

func NewHealth(db *database.DB, logger *zap.Logger) *Health {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Health{db: db, logger: logger.Named("health")}
}

func (h *Health) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "version": version.Get()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
}
