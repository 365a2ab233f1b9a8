package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propscan/audit-backend/internal/services"
)

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// respondServiceError maps the service error kinds onto status codes.
// Validation messages are safe for clients; storage faults stay generic so
// upstream details never leak.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondError(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrStorage):
		respondError(c, http.StatusInternalServerError, services.ErrStorage.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func validationMessage(err error) string {
	msg := err.Error()
	const prefix = "validation failed: "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
