package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytezen/bytezen-api/internal/models"
	"github.com/bytezen/bytezen-api/internal/service"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
	"github.com/bytezen/bytezen-api/pkg/response"
)

// CouncilHandler wires HTTP endpoints to the council service.
type CouncilHandler struct {
	service *service.CouncilService
}

// NewCouncilHandler creates a new handler.
func NewCouncilHandler(svc *service.CouncilService) *CouncilHandler {
	return &CouncilHandler{service: svc}
}

// List returns the roster; non-admin callers only see active members.
func (h *CouncilHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	activeOnly := claims == nil || claims.Role == models.RoleStudent
	members, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// Create adds a roster entry.
func (h *CouncilHandler) Create(c *gin.Context) {
	var req service.CouncilMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid council payload"))
		return
	}

	member, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update modifies a roster entry.
func (h *CouncilHandler) Update(c *gin.Context) {
	var req service.CouncilMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid council payload"))
		return
	}

	member, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Delete removes a roster entry.
func (h *CouncilHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
