package handlers

import (
	"net/http"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/internal/services"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/gin-gonic/gin"
)

type AdminConsultationsHandler struct {
	service services.AdminConsultationsServiceInterface
}

func NewAdminConsultationsHandler(service services.AdminConsultationsServiceInterface) *AdminConsultationsHandler {
	return &AdminConsultationsHandler{service: service}
}

func (h *AdminConsultationsHandler) List(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch consultations", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminConsultationsHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 || req.Status == "" {
		respondError(c, http.StatusBadRequest, "ID and status are required", err)
		return
	}

	err := h.service.UpdateStatus(c.Request.Context(), req.ID, models.ConsultationStatus(req.Status))
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated successfully"})
		return
	}

	switch status := apperrors.HTTPStatus(err); status {
	case http.StatusBadRequest:
		respondError(c, status, "Invalid status", err)
	case http.StatusNotFound:
		respondError(c, status, "Consultation not found", err)
	default:
		respondError(c, http.StatusInternalServerError, "Failed to update status", err)
	}
}

// SendTestEmail handles GET /api/admin/test-email. The recipient is always
// the configured team address.
func (h *AdminConsultationsHandler) SendTestEmail(c *gin.Context) {
	res := h.service.SendTestEmail(c.Request.Context())
	if !res.Success {
		attachError(c, res.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": res.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "messageId": res.MessageID, "to": res.Recipient})
}
