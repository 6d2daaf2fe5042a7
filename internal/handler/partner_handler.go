package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytezen/bytezen-api/internal/models"
	"github.com/bytezen/bytezen-api/internal/service"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
	"github.com/bytezen/bytezen-api/pkg/response"
)

// PartnerHandler wires HTTP endpoints to the partner service.
type PartnerHandler struct {
	service *service.PartnerService
}

// NewPartnerHandler creates a new handler.
func NewPartnerHandler(svc *service.PartnerService) *PartnerHandler {
	return &PartnerHandler{service: svc}
}

// List returns partners; non-admin callers only see active ones.
func (h *PartnerHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	activeOnly := claims == nil || claims.Role == models.RoleStudent
	partners, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, partners, nil)
}

// Create registers a partner.
func (h *PartnerHandler) Create(c *gin.Context) {
	var req service.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid partner payload"))
		return
	}

	partner, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, partner)
}

// Update modifies a partner.
func (h *PartnerHandler) Update(c *gin.Context) {
	var req service.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid partner payload"))
		return
	}

	partner, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, partner, nil)
}

// Delete removes a partner.
func (h *PartnerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
