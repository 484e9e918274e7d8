package repository

import (
	"context"

	"github.com/axioniz/axioniz-api/internal/cache"
	"github.com/axioniz/axioniz-api/internal/database/memory"
	"github.com/axioniz/axioniz-api/internal/database/postgres"
	"github.com/axioniz/axioniz-api/internal/database/sqlite"
	"github.com/axioniz/axioniz-api/internal/models"
)

// ConsultationDataSource is the storage contract every backend satisfies.
// The backend is chosen once at startup.
type ConsultationDataSource interface {
	// Initialize prepares the schema. Idempotent; safe to call on every request.
	Initialize(ctx context.Context) error

	// Save persists a new consultation with status pending and returns it
	// with its assigned id and timestamps.
	Save(ctx context.Context, req *models.ConsultationRequest) (*models.Consultation, error)

	// List returns every consultation ordered by creation time, newest first.
	List(ctx context.Context) ([]*models.Consultation, error)

	// UpdateStatus changes a consultation's status. An unknown id yields an
	// error wrapping errors.ErrNotFound.
	UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error

	// Close releases connections.
	Close() error

	// Backend names the storage kind ("memory", "sqlite", "postgres").
	Backend() string
}

// ConsultationRepositoryInterface is what the services depend on.
type ConsultationRepositoryInterface interface {
	Initialize(ctx context.Context) error
	Create(ctx context.Context, req *models.ConsultationRequest) (*models.Consultation, error)
	GetAll(ctx context.Context) ([]*models.Consultation, error)
	UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error
	Backend() string
}

var (
	_ ConsultationDataSource          = (*memory.ConsultationStore)(nil)
	_ ConsultationDataSource          = (*sqlite.ConsultationStore)(nil)
	_ ConsultationDataSource          = (*postgres.Client)(nil)
	_ ConsultationRepositoryInterface = (*ConsultationRepository)(nil)
	_ consultationsCache              = (*cache.ConsultationsCache)(nil)
)
