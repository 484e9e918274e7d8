package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/internal/notification"
	"github.com/axioniz/axioniz-api/internal/repository"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrConsultationNotFound = apperrors.NotFoundError("consultation")
	ErrInvalidStatus        = apperrors.InvalidInputError("status", "must be one of pending, contacted, scheduled, completed")
)

// AdminConsultationsService backs the admin dashboard.
type AdminConsultationsService struct {
	repo     repository.ConsultationRepositoryInterface
	notifier Notifier
}

func NewAdminConsultationsService(repo repository.ConsultationRepositoryInterface, notifier Notifier) *AdminConsultationsService {
	return &AdminConsultationsService{repo: repo, notifier: notifier}
}

// List returns every consultation newest first with per-status counts.
func (s *AdminConsultationsService) List(ctx context.Context) (*models.ConsultationListResponse, error) {
	if err := s.repo.Initialize(ctx); err != nil {
		logger.Warn("Consultation storage initialization failed", zap.Error(err))
	}

	consultations, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}

	return &models.ConsultationListResponse{
		Success:       true,
		Consultations: consultations,
		Count:         len(consultations),
		Counts:        models.CountByStatus(consultations),
	}, nil
}

// UpdateStatus moves a consultation to status. Any transition is allowed.
func (s *AdminConsultationsService) UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error {
	if !status.IsValid() {
		metrics.ConsultationStatusUpdates.WithLabelValues("invalid", "rejected").Inc()
		return ErrInvalidStatus
	}

	if err := s.repo.Initialize(ctx); err != nil {
		logger.Warn("Consultation storage initialization failed", zap.Error(err))
	}

	err := s.repo.UpdateStatus(ctx, id, status)
	switch {
	case err == nil:
		metrics.ConsultationStatusUpdates.WithLabelValues(string(status), "success").Inc()
		logger.Info("Consultation status updated",
			zap.Int64("consultation_id", id),
			zap.String("status", string(status)))
		return nil
	case errors.Is(err, apperrors.ErrNotFound):
		metrics.ConsultationStatusUpdates.WithLabelValues(string(status), "not_found").Inc()
		return ErrConsultationNotFound
	default:
		metrics.ConsultationStatusUpdates.WithLabelValues(string(status), "error").Inc()
		return fmt.Errorf("failed to update consultation %d: %w", id, err)
	}
}

// SendTestEmail verifies SMTP delivery by mailing the team address.
func (s *AdminConsultationsService) SendTestEmail(ctx context.Context) notification.Result {
	return s.notifier.SendTest(ctx)
}
