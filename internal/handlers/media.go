package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/services"
)

type MediaHandler struct {
	log          *logger.Logger
	mediaService services.MediaService
}

func NewMediaHandler(log *logger.Logger, msvc services.MediaService) *MediaHandler {
	return &MediaHandler{
		log:          log.With("handler", "MediaHandler"),
		mediaService: msvc,
	}
}

// POST /api/audits/:id/steps/:label/upload
// Attaches media by (audit, label); the step is resolved or created first, so
// uploading ahead of an explicit step upsert is fine.
func (h *MediaHandler) UploadByLabel(c *gin.Context) {
	auditID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	label := c.Param("label")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "no file uploaded")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error("Opening uploaded file failed", "error", err)
		respondError(c, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	media, err := h.mediaService.Attach(c.Request.Context(), services.AttachInput{
		AuditID:   auditID,
		StepType:  c.PostForm("step_type"),
		Label:     label,
		MediaType: c.PostForm("media_type"),
		FileName:  fileHeader.Filename,
		File:      file,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

// GET /api/audits/:id/steps/:label/media
func (h *MediaHandler) ListByLabel(c *gin.Context) {
	auditID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	label := c.Param("label")

	media, err := h.mediaService.ListByStepLabel(c.Request.Context(), auditID, label)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}
