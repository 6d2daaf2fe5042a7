package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytezen/bytezen-api/internal/models"
	"github.com/bytezen/bytezen-api/internal/service"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
	"github.com/bytezen/bytezen-api/pkg/response"
)

// maxCoverSize caps cover uploads at 5 MiB.
const maxCoverSize = 5 << 20

// ByteLogHandler wires HTTP endpoints to the bytelog service.
type ByteLogHandler struct {
	service *service.ByteLogService
}

// NewByteLogHandler creates a new handler.
func NewByteLogHandler(svc *service.ByteLogService) *ByteLogHandler {
	return &ByteLogHandler{service: svc}
}

// List godoc
// @Summary List bytelogs
// @Description Paginated bytelog posts; non-admin callers only see published ones
// @Tags ByteLogs
// @Produce json
// @Param search query string false "Title search"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Router /bytelogs [get]
func (h *ByteLogHandler) List(c *gin.Context) {
	filter := models.ByteLogFilter{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	claims := claimsFromContext(c)
	if claims == nil || claims.Role == models.RoleStudent {
		published := true
		filter.Published = &published
	} else if raw := c.Query("published"); raw != "" {
		published := raw == "true"
		filter.Published = &published
	}

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// Get returns one bytelog by id.
func (h *ByteLogHandler) Get(c *gin.Context) {
	log, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// GetBySlug returns one bytelog by slug.
func (h *ByteLogHandler) GetBySlug(c *gin.Context) {
	log, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Create publishes or drafts a bytelog.
func (h *ByteLogHandler) Create(c *gin.Context) {
	var req service.ByteLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bytelog payload"))
		return
	}

	log, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, log)
}

// Update modifies a bytelog.
func (h *ByteLogHandler) Update(c *gin.Context) {
	var req service.ByteLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bytelog payload"))
		return
	}

	log, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Delete removes a bytelog and its cover file.
func (h *ByteLogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadCover godoc
// @Summary Upload bytelog cover
// @Description Attaches a cover image to a bytelog, replacing any previous one
// @Tags ByteLogs
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "ByteLog ID"
// @Param cover formData file true "Cover image (png, jpg, jpeg, webp)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bytelogs/{id}/cover [post]
func (h *ByteLogHandler) UploadCover(c *gin.Context) {
	fileHeader, err := c.FormFile("cover")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cover file is required"))
		return
	}
	if fileHeader.Size > maxCoverSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "cover file exceeds 5 MiB"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read cover file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read cover file"))
		return
	}

	log, err := h.service.UploadCover(c.Request.Context(), c.Param("id"), fileHeader.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// DownloadCover serves a cover image through a signed token. Public route,
// authorization lives in the token itself.
func (h *ByteLogHandler) DownloadCover(c *gin.Context) {
	path, err := h.service.ResolveCoverToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}
