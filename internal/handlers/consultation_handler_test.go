package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/internal/notification"
	"github.com/axioniz/axioniz-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validSubmission = `{
	"services": ["ai-integration", "custom-software"],
	"date": "2026-11-02",
	"time": "10:00 AM",
	"firstName": "Ada",
	"lastName": "Lovelace",
	"email": "ada@example.com",
	"phone": "+442079460958",
	"gdprConsent": true
}`

func newConsultationRouter(service *mockConsultationService) *gin.Engine {
	handler := NewConsultationHandler(service)
	router := gin.New()
	router.POST("/api/consultation", handler.Submit)
	router.GET("/api/consultation", handler.Describe)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestConsultationHandler_Submit(t *testing.T) {
	service := new(mockConsultationService)
	service.On("Submit", mock.Anything, mock.MatchedBy(func(req *models.ConsultationRequest) bool {
		return req.Email == "ada@example.com" && len(req.Services) == 2
	})).Return(&services.SubmissionOutcome{
		Consultation: &models.Consultation{ID: 42, Status: models.StatusPending},
		Confirmation: notification.Result{Success: true},
	}, nil).Once()

	w := postJSON(newConsultationRouter(service), "/api/consultation", validSubmission)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"message": "Consultation request submitted successfully",
		"data": {"id": 42, "status": "pending", "estimatedResponse": "24 hours", "emailSent": true}
	}`, w.Body.String())
	service.AssertExpectations(t)
}

func TestConsultationHandler_SubmitEmailNotSent(t *testing.T) {
	service := new(mockConsultationService)
	service.On("Submit", mock.Anything, mock.Anything).Return(&services.SubmissionOutcome{
		Consultation: &models.Consultation{ID: 1, Status: models.StatusPending},
		Confirmation: notification.Result{Message: "Email service not configured"},
	}, nil).Once()

	w := postJSON(newConsultationRouter(service), "/api/consultation", validSubmission)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SubmissionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.EmailSent)
}

func TestConsultationHandler_SubmitValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			name:      "no services",
			body:      strings.Replace(validSubmission, `["ai-integration", "custom-software"]`, `[]`, 1),
			wantField: "services",
		},
		{
			name:      "unknown service",
			body:      strings.Replace(validSubmission, `"custom-software"`, `"teleportation"`, 1),
			wantField: "services[1]",
		},
		{
			name:      "bad email",
			body:      strings.Replace(validSubmission, "ada@example.com", "ada-at-example", 1),
			wantField: "email",
		},
		{
			name:      "short phone",
			body:      strings.Replace(validSubmission, "+442079460958", "12345", 1),
			wantField: "phone",
		},
		{
			name:      "bad date",
			body:      strings.Replace(validSubmission, "2026-11-02", "02/11/2026", 1),
			wantField: "date",
		},
		{
			name:      "unknown slot",
			body:      strings.Replace(validSubmission, "10:00 AM", "3:17 AM", 1),
			wantField: "time",
		},
		{
			name:      "malformed json",
			body:      `{"services":`,
			wantField: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockConsultationService)

			w := postJSON(newConsultationRouter(service), "/api/consultation", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, "Validation failed", resp.Message)

			fields := make([]string, 0, len(resp.Errors))
			for _, fe := range resp.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
			service.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
		})
	}
}

func TestConsultationHandler_SubmitStorageFailure(t *testing.T) {
	service := new(mockConsultationService)
	service.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("failed to save consultation: disk full")).Once()

	w := postJSON(newConsultationRouter(service), "/api/consultation", validSubmission)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestConsultationHandler_Describe(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/consultation", http.NoBody)

	newConsultationRouter(new(mockConsultationService)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Consultation API endpoint is active","methods":["POST"]}`, w.Body.String())
}
