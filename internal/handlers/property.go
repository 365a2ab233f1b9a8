package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/services"
)

type PropertyHandler struct {
	log             *logger.Logger
	propertyService services.PropertyService
}

func NewPropertyHandler(log *logger.Logger, psvc services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		log:             log.With("handler", "PropertyHandler"),
		propertyService: psvc,
	}
}

type propertyBody struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	YearBuilt int    `json:"year_built"`
	Sqft      *int   `json:"sqft"`
}

func (b propertyBody) toInput() services.PropertyInput {
	return services.PropertyInput{
		Street:    b.Street,
		City:      b.City,
		State:     b.State,
		ZipCode:   b.ZipCode,
		YearBuilt: b.YearBuilt,
		Sqft:      b.Sqft,
	}
}

// GET /api/properties
func (h *PropertyHandler) List(c *gin.Context) {
	properties, err := h.propertyService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// POST /api/properties
func (h *PropertyHandler) Create(c *gin.Context) {
	var body propertyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	property, err := h.propertyService.Create(c.Request.Context(), body.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

// GET /api/properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	propertyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	property, err := h.propertyService.Get(c.Request.Context(), propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// PUT /api/properties/:id
func (h *PropertyHandler) Update(c *gin.Context) {
	propertyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var body propertyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	property, err := h.propertyService.Update(c.Request.Context(), propertyID, body.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// DELETE /api/properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	propertyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.propertyService.Delete(c.Request.Context(), propertyID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": propertyID})
}

// POST /api/properties/:id/upload-utility-bill
func (h *PropertyHandler) UploadUtilityBill(c *gin.Context) {
	propertyID, ok := parseUUIDParam(c, "id")
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

	property, err := h.propertyService.UploadUtilityBill(c.Request.Context(), propertyID, fileHeader.Filename, file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
