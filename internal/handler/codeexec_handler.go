package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytezen/bytezen-api/internal/service"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
	"github.com/bytezen/bytezen-api/pkg/response"
)

// CodeExecHandler wires HTTP endpoints to the code execution proxy.
type CodeExecHandler struct {
	service *service.CodeExecService
}

// NewCodeExecHandler creates a new handler.
func NewCodeExecHandler(svc *service.CodeExecService) *CodeExecHandler {
	return &CodeExecHandler{service: svc}
}

// Execute godoc
// @Summary Execute code
// @Description Forwards the submission to the external sandbox and returns its verdict
// @Tags Code
// @Accept json
// @Produce json
// @Param payload body service.ExecuteRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /code/execute [post]
func (h *CodeExecHandler) Execute(c *gin.Context) {
	var req service.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid execution payload"))
		return
	}

	result, err := h.service.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
