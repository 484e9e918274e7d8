package services

import (
	"context"
	"fmt"

	"github.com/axioniz/axioniz-api/config"
	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/internal/notification"
	"github.com/axioniz/axioniz-api/internal/repository"
	"github.com/axioniz/axioniz-api/pkg/httpclient"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/axioniz/axioniz-api/pkg/tracing"
	"github.com/axioniz/axioniz-api/pkg/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// SubmissionOutcome aggregates what happened to one submission. Only a
// failed save aborts the pipeline; every other step is recorded here.
type SubmissionOutcome struct {
	Consultation       *models.Consultation
	StorageInitialized bool
	Confirmation       notification.Result
	TeamNotification   notification.Result
	Archived           bool
}

// ConsultationService runs the submission pipeline: prepare storage, persist,
// notify, archive, trigger.
type ConsultationService struct {
	repo       repository.ConsultationRepositoryInterface
	notifier   Notifier
	archiver   Archiver
	config     *config.Config
	httpClient httpclient.Client
}

// NewConsultationService creates the service. archiver may be nil.
func NewConsultationService(
	repo repository.ConsultationRepositoryInterface,
	notifier Notifier,
	archiver Archiver,
	cfg *config.Config,
	httpClient httpclient.Client,
) *ConsultationService {
	return &ConsultationService{
		repo:       repo,
		notifier:   notifier,
		archiver:   archiver,
		config:     cfg,
		httpClient: httpClient,
	}
}

// Submit stores a validated request and dispatches its notifications.
// It returns an error only when the consultation could not be saved.
func (s *ConsultationService) Submit(ctx context.Context, req *models.ConsultationRequest) (*SubmissionOutcome, error) {
	ctx, span := tracing.StartSpan(ctx, "consultation.submit")
	defer span.End()

	outcome := &SubmissionOutcome{}

	if err := s.repo.Initialize(ctx); err != nil {
		logger.Warn("Consultation storage initialization failed, attempting save anyway",
			zap.String("storage", s.repo.Backend()),
			zap.Error(err))
	} else {
		outcome.StorageInitialized = true
	}

	consultation, err := s.repo.Create(ctx, req)
	if err != nil {
		metrics.ConsultationSubmissions.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		logger.Error("Failed to save consultation",
			zap.String("storage", s.repo.Backend()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save consultation: %w", err)
	}
	outcome.Consultation = consultation
	span.SetAttributes(
		attribute.Int64("consultation.id", consultation.ID),
		attribute.String("consultation.storage", s.repo.Backend()),
	)

	outcome.Confirmation = s.notifier.SendConfirmation(ctx, consultation)
	outcome.TeamNotification = s.notifier.SendTeamNotification(ctx, consultation)

	if s.archiver != nil {
		if _, archiveErr := s.archiver.Put(ctx, consultation.ID, consultation.CreatedAt, consultation); archiveErr != nil {
			logger.Warn("Failed to archive consultation",
				zap.Int64("consultation_id", consultation.ID),
				zap.Error(archiveErr))
		} else {
			outcome.Archived = true
		}
	}

	trigger.CallAsync(s.config.EventTriggers.ConsultationCreatedTriggerURL, consultation.ID, s.httpClient)

	span.SetAttributes(
		attribute.Bool("consultation.confirmation_sent", outcome.Confirmation.Success),
		attribute.Bool("consultation.team_notified", outcome.TeamNotification.Success),
		attribute.Bool("consultation.archived", outcome.Archived),
	)
	metrics.ConsultationSubmissions.WithLabelValues("success").Inc()
	logger.Info("Consultation submitted",
		zap.Int64("consultation_id", consultation.ID),
		zap.String("storage", s.repo.Backend()),
		zap.Bool("storage_initialized", outcome.StorageInitialized),
		zap.Bool("confirmation_sent", outcome.Confirmation.Success),
		zap.String("confirmation_error", outcome.Confirmation.Error()),
		zap.Bool("team_notified", outcome.TeamNotification.Success),
		zap.String("team_notification_error", outcome.TeamNotification.Error()),
		zap.Bool("archived", outcome.Archived),
		zap.Strings("services", consultation.Services))

	return outcome, nil
}
