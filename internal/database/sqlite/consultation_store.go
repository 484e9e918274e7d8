package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const backendName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS consultations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	services     TEXT    NOT NULL,
	date         TEXT    NOT NULL,
	time         TEXT    NOT NULL,
	first_name   TEXT    NOT NULL,
	last_name    TEXT    NOT NULL,
	email        TEXT    NOT NULL,
	phone        TEXT    NOT NULL,
	company      TEXT,
	message      TEXT    NOT NULL DEFAULT '',
	gdpr_consent INTEGER NOT NULL DEFAULT 0,
	status       TEXT    NOT NULL DEFAULT 'pending',
	created_at   TEXT    NOT NULL,
	updated_at   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_consultations_created_at ON consultations (created_at DESC, id DESC);
`

// Timestamps are stored as fixed-width UTC text so lexical order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// consultationRow mirrors the table; SQLite has no native time or boolean types.
type consultationRow struct {
	ID          int64              `db:"id"`
	Services    models.ServiceList `db:"services"`
	Date        string             `db:"date"`
	Time        string             `db:"time"`
	FirstName   string             `db:"first_name"`
	LastName    string             `db:"last_name"`
	Email       string             `db:"email"`
	Phone       string             `db:"phone"`
	Company     string             `db:"company"`
	Message     string             `db:"message"`
	GDPRConsent bool               `db:"gdpr_consent"`
	Status      string             `db:"status"`
	CreatedAt   string             `db:"created_at"`
	UpdatedAt   string             `db:"updated_at"`
}

func (r *consultationRow) toModel() (*models.Consultation, error) {
	createdAt, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", r.CreatedAt, err)
	}
	updatedAt, err := time.Parse(timeLayout, r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", r.UpdatedAt, err)
	}
	return &models.Consultation{
		ID:          r.ID,
		Services:    r.Services,
		Date:        r.Date,
		Time:        r.Time,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		Company:     r.Company,
		Message:     r.Message,
		GDPRConsent: r.GDPRConsent,
		Status:      models.ConsultationStatus(r.Status),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// ConsultationStore persists consultations in a local SQLite file.
type ConsultationStore struct {
	db   *sqlx.DB
	path string
	now  func() time.Time

	initMu      sync.Mutex
	initialized bool
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*ConsultationStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single writer connection serializes inserts and keeps ids monotonic.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	logger.Info("SQLite consultation store opened", zap.String("path", path))

	return &ConsultationStore{db: db, path: path, now: time.Now}, nil
}

func (s *ConsultationStore) Backend() string { return backendName }

// Initialize creates the schema if missing. Safe to call on every request.
func (s *ConsultationStore) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized {
		return nil
	}

	start := time.Now()
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		recordMetrics("initialize", "error", metrics.MeasureDuration(start))
		return fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	recordMetrics("initialize", "success", metrics.MeasureDuration(start))

	s.initialized = true
	return nil
}

func (s *ConsultationStore) Save(ctx context.Context, req *models.ConsultationRequest) (*models.Consultation, error) {
	start := time.Now()
	operation := "save"
	now := s.now().UTC().Format(timeLayout)

	row := consultationRow{
		Services:    models.ServiceList(append([]string{}, req.Services...)),
		Date:        req.Date,
		Time:        req.Time,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Message:     req.Message,
		GDPRConsent: req.GDPRConsent,
		Status:      string(models.StatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO consultations (
			services, date, time, first_name, last_name, email, phone,
			company, message, gdpr_consent, status, created_at, updated_at
		) VALUES (
			:services, :date, :time, :first_name, :last_name, :email, :phone,
			NULLIF(:company, ''), :message, :gdpr_consent, :status, :created_at, :updated_at
		)`, row)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to insert consultation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to read consultation id: %w", err)
	}
	row.ID = id

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return row.toModel()
}

// List returns all consultations newest first.
func (s *ConsultationStore) List(ctx context.Context) ([]*models.Consultation, error) {
	start := time.Now()
	operation := "list"

	var rows []consultationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, services, date, time, first_name, last_name, email, phone,
			COALESCE(company, '') AS company, message, gdpr_consent, status,
			created_at, updated_at
		FROM consultations
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query consultations: %w", err)
	}

	consultations := make([]*models.Consultation, 0, len(rows))
	for i := range rows {
		c, convErr := rows[i].toModel()
		if convErr != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, convErr
		}
		consultations = append(consultations, c)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return consultations, nil
}

// UpdateStatus sets the status and bumps updated_at. An unknown id yields ErrNotFound.
func (s *ConsultationStore) UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error {
	start := time.Now()
	operation := "update_status"

	res, err := s.db.ExecContext(ctx,
		`UPDATE consultations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), s.now().UTC().Format(timeLayout), id)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return fmt.Errorf("failed to update consultation status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		recordMetrics(operation, "not_found", metrics.MeasureDuration(start))
		return apperrors.NotFoundError("consultation")
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return nil
}

func (s *ConsultationStore) Close() error {
	return s.db.Close()
}

func recordMetrics(operation, status string, duration float64) {
	metrics.RecordDBOperation(backendName, operation, status, duration)
}
