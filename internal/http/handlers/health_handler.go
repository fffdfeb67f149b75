package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codedsnow/feedback-api/internal/http/middleware"
)

// HealthResponse reports liveness and, when available, stored record totals.
type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	Suggestions *int64 `json:"suggestions,omitempty" example:"42"`
	Reports     *int64 `json:"reports,omitempty" example:"7"`
}

// Health godoc
// @ID          health
// @Summary     Liveness and store check
// @Description Returns 200 when the store answers, 503 otherwise. Unlike API routes this is an ops endpoint and uses real status codes.
// @Tags        Ops
// @Produce     json
// @Success     200 {object} handlers.HealthResponse
// @Failure     503 {object} handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	counts, err := h.stats(ctx)
	if err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Suggestions: &counts.Suggestions,
		Reports:     &counts.Reports,
	})
}
