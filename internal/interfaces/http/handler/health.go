package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthData}
// @Failure      503 {object} dto.Response{data=HealthData}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	data := HealthData{
		Status:   "healthy",
		Database: "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Warn("database ping failed", zap.Error(err))
		data.Status = "unhealthy"
		data.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Message: "database unreachable", Data: data})
		return
	}
	h.Success(c, data)
}
