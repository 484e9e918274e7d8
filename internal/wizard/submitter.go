package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/pkg/httpclient"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
)

const maxResponseSize = 1 << 20

// APIError is a rejection reported by the consultation API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []models.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("consultation API returned %d: %s", e.StatusCode, e.Message)
}

// HTTPSubmitter posts consultation requests to a running API.
type HTTPSubmitter struct {
	endpoint string
	client   httpclient.Client
}

// NewHTTPSubmitter targets <baseURL>/api/consultation.
func NewHTTPSubmitter(baseURL string, client httpclient.Client) *HTTPSubmitter {
	return &HTTPSubmitter{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/consultation",
		client:   client,
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, req models.ConsultationRequest) (*models.SubmissionData, error) {
	start := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode consultation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build consultation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		logger.LogAPICall("consultation_api", "submit", "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to reach consultation API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read consultation API response: %w", err)
	}

	var envelope struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    *models.SubmissionData `json:"data"`
		Errors  []models.FieldError    `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.LogAPICall("consultation_api", "submit", "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to decode consultation API response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Success || envelope.Data == nil {
		logger.LogAPICall("consultation_api", "submit", "rejected", metrics.MeasureDuration(start))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: envelope.Message, Fields: envelope.Errors}
	}

	logger.LogAPICall("consultation_api", "submit", "success", metrics.MeasureDuration(start))
	return envelope.Data, nil
}
