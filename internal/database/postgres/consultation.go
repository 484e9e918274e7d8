package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const consultationColumns = `id, services, date, time, first_name, last_name, email, phone,
	COALESCE(company, ''), message, gdpr_consent, status, created_at, updated_at`

// Save inserts a consultation with status pending.
func (c *Client) Save(ctx context.Context, req *models.ConsultationRequest) (*models.Consultation, error) {
	start := time.Now()
	operation := "save"

	services, err := models.ServiceList(req.Services).Value()
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to encode services: %w", err)
	}

	row := c.pool.QueryRow(ctx, `
		INSERT INTO consultations (
			services, date, time, first_name, last_name, email, phone,
			company, message, gdpr_consent, status
		) VALUES ($1::jsonb, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)
		RETURNING `+consultationColumns,
		services, req.Date, req.Time, req.FirstName, req.LastName, req.Email, req.Phone,
		req.Company, req.Message, req.GDPRConsent, string(models.StatusPending),
	)

	consultation, err := scanConsultation(row)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.Error("Failed to insert consultation", zap.Error(err))
		return nil, fmt.Errorf("failed to insert consultation: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.Debug("Consultation inserted",
		zap.Int64("consultation_id", consultation.ID),
		zap.Float64("duration_s", duration))
	return consultation, nil
}

// List returns all consultations newest first.
func (c *Client) List(ctx context.Context) ([]*models.Consultation, error) {
	start := time.Now()
	operation := "list"

	rows, err := c.pool.Query(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query consultations: %w", err)
	}
	defer rows.Close()

	consultations := []*models.Consultation{}
	for rows.Next() {
		consultation, scanErr := scanConsultation(rows)
		if scanErr != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, fmt.Errorf("failed to scan consultation: %w", scanErr)
		}
		consultations = append(consultations, consultation)
	}
	if err := rows.Err(); err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to iterate consultations: %w", err)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return consultations, nil
}

// UpdateStatus sets the status and bumps updated_at. An unknown id yields ErrNotFound.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error {
	start := time.Now()
	operation := "update_status"

	tag, err := c.pool.Exec(ctx,
		`UPDATE consultations SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), id)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update consultation status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("consultation")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

func scanConsultation(row pgx.Row) (*models.Consultation, error) {
	var (
		consultation models.Consultation
		status       string
	)
	err := row.Scan(
		&consultation.ID,
		&consultation.Services,
		&consultation.Date,
		&consultation.Time,
		&consultation.FirstName,
		&consultation.LastName,
		&consultation.Email,
		&consultation.Phone,
		&consultation.Company,
		&consultation.Message,
		&consultation.GDPRConsent,
		&status,
		&consultation.CreatedAt,
		&consultation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	consultation.Status = models.ConsultationStatus(status)
	consultation.CreatedAt = consultation.CreatedAt.UTC()
	consultation.UpdatedAt = consultation.UpdatedAt.UTC()
	return &consultation, nil
}
