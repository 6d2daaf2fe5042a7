package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytezen/bytezen-api/internal/middleware"
	"github.com/bytezen/bytezen-api/internal/service"
	"github.com/bytezen/bytezen-api/pkg/response"
)

// LeaderboardHandler wires HTTP endpoints to the leaderboard service.
type LeaderboardHandler struct {
	service *service.LeaderboardService
}

// NewLeaderboardHandler creates a new handler.
func NewLeaderboardHandler(svc *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: svc}
}

// Get godoc
// @Summary Course leaderboard
// @Description Ranked standings for a course: combined weighted score, dense ranks and medals
// @Tags Leaderboard
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/leaderboard [get]
func (h *LeaderboardHandler) Get(c *gin.Context) {
	view, cacheHit, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Refresh godoc
// @Summary Queue leaderboard refresh
// @Description Enqueues an asynchronous recomputation of the course leaderboard
// @Tags Leaderboard
// @Param id path string true "Course ID"
// @Success 202 {object} response.Envelope
// @Router /courses/{id}/leaderboard/refresh [post]
func (h *LeaderboardHandler) Refresh(c *gin.Context) {
	if err := h.service.RequestRefresh(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "refresh queued"}, nil)
}

// Export godoc
// @Summary Export leaderboard
// @Description Download the current standings as CSV or PDF
// @Tags Leaderboard
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /courses/{id}/leaderboard/export [get]
func (h *LeaderboardHandler) Export(c *gin.Context) {
	payload, filename, contentType, err := h.service.Export(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}
