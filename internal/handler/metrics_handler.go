package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytezen/bytezen-api/internal/service"
	"github.com/bytezen/bytezen-api/pkg/response"
)

// MetricsHandler exposes operational counters.
type MetricsHandler struct {
	service *service.MetricsService
}

// NewMetricsHandler creates a new handler.
func NewMetricsHandler(svc *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: svc}
}

// Snapshot godoc
// @Summary Metrics snapshot
// @Description Aggregated request, cache and leaderboard counters as JSON
// @Tags Metrics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Snapshot(), nil)
}

// Prometheus returns the raw prometheus scrape handler.
func (h *MetricsHandler) Prometheus() gin.HandlerFunc {
	return gin.WrapH(h.service.Handler())
}
