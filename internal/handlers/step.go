package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/services"
)

type StepHandler struct {
	log            *logger.Logger
	stepService    services.StepService
	mediaService   services.MediaService
	findingService services.FindingService
}

func NewStepHandler(log *logger.Logger, ssvc services.StepService, msvc services.MediaService, fsvc services.FindingService) *StepHandler {
	return &StepHandler{
		log:            log.With("handler", "StepHandler"),
		stepService:    ssvc,
		mediaService:   msvc,
		findingService: fsvc,
	}
}

type upsertStepBody struct {
	StepType      string  `json:"step_type"`
	Label         string  `json:"label"`
	IsCompleted   *bool   `json:"is_completed"`
	NotAccessible *bool   `json:"not_accessible"`
	Notes         *string `json:"notes"`
}

// POST /api/audits/:id/steps
// Resolve-or-update against the (audit_id, step_type, label) identity key:
// 201 when the step was created, 200 when an existing one was updated.
func (h *StepHandler) ResolveOrUpdate(c *gin.Context) {
	auditID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var body upsertStepBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := services.StepPatch{
		IsCompleted:   body.IsCompleted,
		NotAccessible: body.NotAccessible,
		Notes:         body.Notes,
	}
	step, created, err := h.stepService.ResolveOrUpdate(c.Request.Context(), nil, auditID, body.StepType, body.Label, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, step)
		return
	}
	c.JSON(http.StatusOK, step)
}

type patchStepBody struct {
	IsCompleted *bool `json:"is_completed"`
}

// PATCH /api/steps/:id
// Updates is_completed only, by surrogate id.
func (h *StepHandler) Patch(c *gin.Context) {
	stepID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var body patchStepBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.IsCompleted == nil {
		respondError(c, http.StatusBadRequest, "missing is_completed")
		return
	}
	step, err := h.stepService.SetCompletedByID(c.Request.Context(), stepID, *body.IsCompleted)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

// POST /api/steps/:id/upload
func (h *StepHandler) Upload(c *gin.Context) {
	stepID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
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

	media, err := h.mediaService.AttachToStep(c.Request.Context(), stepID, c.PostForm("media_type"), fileHeader.Filename, file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

type createFindingBody struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	Severity       string `json:"severity"`
	Source         string `json:"source"`
}

// POST /api/steps/:id/findings
func (h *StepHandler) CreateFinding(c *gin.Context) {
	stepID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var body createFindingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	finding, err := h.findingService.Create(c.Request.Context(), services.CreateFindingInput{
		StepID:         stepID,
		Title:          body.Title,
		Description:    body.Description,
		Recommendation: body.Recommendation,
		Severity:       body.Severity,
		Source:         body.Source,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, finding)
}
