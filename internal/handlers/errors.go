package handlers

import (
	"net/http"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/gin-gonic/gin"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends the failure envelope and records err for the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, models.ErrorResponse{Success: false, Message: message})
}

func respondValidationError(c *gin.Context, fieldErrors []models.FieldError, err error) {
	attachError(c, err)
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  fieldErrors,
	})
}
