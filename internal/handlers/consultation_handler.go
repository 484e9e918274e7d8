package handlers

import (
	"net/http"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/internal/services"
	"github.com/gin-gonic/gin"
)

const estimatedResponse = "24 hours"

type ConsultationHandler struct {
	service services.ConsultationServiceInterface
}

func NewConsultationHandler(service services.ConsultationServiceInterface) *ConsultationHandler {
	RegisterValidators()
	return &ConsultationHandler{service: service}
}

// Submit handles POST /api/consultation.
func (h *ConsultationHandler) Submit(c *gin.Context) {
	var req models.ConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, ParseValidationErrors(err), err)
		return
	}

	outcome, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	c.JSON(http.StatusOK, models.SubmissionResponse{
		Success: true,
		Message: "Consultation request submitted successfully",
		Data: &models.SubmissionData{
			ID:                outcome.Consultation.ID,
			Status:            outcome.Consultation.Status,
			EstimatedResponse: estimatedResponse,
			EmailSent:         outcome.Confirmation.Success,
		},
	})
}

// Describe handles GET /api/consultation.
func (h *ConsultationHandler) Describe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Consultation API endpoint is active",
		"methods": []string{http.MethodPost},
	})
}
