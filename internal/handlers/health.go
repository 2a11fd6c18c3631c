package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"repurpose-backend/internal/models"
)

const (
	healthTimeout = 3 * time.Second
	unavailable   = "unavailable"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	queue Pinger
}

func NewHealthHandler(db, queue Pinger) *HealthHandler {
	return &HealthHandler{db: db, queue: queue}
}

// Health godoc
// @Summary     Health check
// @Description Reports API, database and queue status
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	response := models.HealthResponse{
		Status:   "ok",
		Database: check(ctx, h.db),
		Queue:    check(ctx, h.queue),
	}

	status := http.StatusOK
	if response.Database == unavailable || response.Queue == unavailable {
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

func check(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return unavailable
	}
	return "ok"
}
