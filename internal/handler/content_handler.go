package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytezen/bytezen-api/internal/service"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
	"github.com/bytezen/bytezen-api/pkg/response"
)

// ContentHandler wires HTTP endpoints to the content service.
type ContentHandler struct {
	service *service.ContentService
}

// NewContentHandler creates a new handler.
func NewContentHandler(svc *service.ContentService) *ContentHandler {
	return &ContentHandler{service: svc}
}

// ListByCourse godoc
// @Summary List course content
// @Tags Content
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/content [get]
func (h *ContentHandler) ListByCourse(c *gin.Context) {
	items, err := h.service.ListByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get content item
// @Tags Content
// @Produce json
// @Param id path string true "Content item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Author content item
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body service.CreateContentRequest true "Content payload"
// @Success 201 {object} response.Envelope
// @Router /content [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var req service.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid content payload"))
		return
	}

	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Edit content item
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Content item ID"
// @Param payload body service.UpdateContentRequest true "Content payload"
// @Success 200 {object} response.Envelope
// @Router /content/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	var req service.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid content payload"))
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete content item
// @Tags Content
// @Param id path string true "Content item ID"
// @Success 204 {object} response.Envelope
// @Router /content/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Complete godoc
// @Summary Mark content item complete
// @Description Records a completion for an enrollment; repeat calls are no-ops
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Content item ID"
// @Param payload body object true "Enrollment reference"
// @Success 204 {object} response.Envelope
// @Router /content/{id}/complete [post]
func (h *ContentHandler) Complete(c *gin.Context) {
	var payload struct {
		EnrollmentID string `json:"enrollment_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "enrollment_id required"))
		return
	}

	if err := h.service.Complete(c.Request.Context(), payload.EnrollmentID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
