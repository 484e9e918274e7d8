package repository

import (
	"context"

	"github.com/axioniz/axioniz-api/config"
	"github.com/axioniz/axioniz-api/internal/database/memory"
	"github.com/axioniz/axioniz-api/internal/database/postgres"
	"github.com/axioniz/axioniz-api/internal/database/sqlite"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"go.uber.org/zap"
)

// NewConsultationDataSource picks the storage backend:
// DATABASE_URL set selects PostgreSQL, development selects a local SQLite
// file, anything else falls back to process memory.
func NewConsultationDataSource(ctx context.Context, cfg *config.Config) (ConsultationDataSource, error) {
	switch {
	case cfg.Database.URL != "":
		client, err := postgres.NewClient(ctx, postgres.Config{
			URL:           cfg.Database.URL,
			MaxConns:      cfg.Database.MaxConns,
			MinConns:      cfg.Database.MinConns,
			CACertPath:    cfg.Database.CACertPath,
			TLSServerName: cfg.Database.TLSServerName,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Using PostgreSQL consultation storage")
		return client, nil

	case cfg.IsDevelopment():
		store, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using SQLite consultation storage", zap.String("path", cfg.Database.SQLitePath))
		return store, nil

	default:
		logger.Warn("DATABASE_URL not set, using in-memory consultation storage; data is lost on restart")
		return memory.NewConsultationStore(), nil
	}
}
