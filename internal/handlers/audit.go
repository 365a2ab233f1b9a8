package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/services"
)

type AuditHandler struct {
	log          *logger.Logger
	auditService services.AuditService
	mediaService services.MediaService
}

func NewAuditHandler(log *logger.Logger, asvc services.AuditService, msvc services.MediaService) *AuditHandler {
	return &AuditHandler{
		log:          log.With("handler", "AuditHandler"),
		auditService: asvc,
		mediaService: msvc,
	}
}

type createAuditBody struct {
	PropertyID  string         `json:"property_id"`
	Date        string         `json:"date"`
	AuditorName string         `json:"auditor_name"`
	Notes       string         `json:"notes"`
	Metadata    datatypes.JSON `json:"metadata"`
}

// POST /api/audits and POST /api/properties/:id/audits
func (h *AuditHandler) Create(c *gin.Context) {
	var body createAuditBody
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// The nested route carries the property id in the path.
	if pathID := c.Param("id"); pathID != "" {
		body.PropertyID = pathID
	}
	if body.PropertyID == "" {
		respondError(c, http.StatusBadRequest, "missing property_id")
		return
	}
	propertyID, err := uuid.Parse(body.PropertyID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid property_id")
		return
	}

	in := services.CreateAuditInput{
		PropertyID:  propertyID,
		AuditorName: body.AuditorName,
		Notes:       body.Notes,
		Metadata:    body.Metadata,
	}
	if body.Date != "" {
		date, err := parseDate(body.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid date")
			return
		}
		in.Date = &date
	}

	audit, err := h.auditService.Create(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, audit)
}

// GET /api/audits/:id
func (h *AuditHandler) Get(c *gin.Context) {
	auditID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.auditService.Get(c.Request.Context(), auditID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /api/properties/:id/audit
func (h *AuditHandler) GetByProperty(c *gin.Context) {
	propertyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.auditService.GetByProperty(c.Request.Context(), propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /api/audits/:id/steps
func (h *AuditHandler) ListSteps(c *gin.Context) {
	auditID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	steps, err := h.auditService.ListStepsWithMedia(c.Request.Context(), auditID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, steps)
}

// GET /api/audits/:id/media
func (h *AuditHandler) ListMedia(c *gin.Context) {
	auditID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	media, err := h.mediaService.ListByAudit(c.Request.Context(), auditID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
