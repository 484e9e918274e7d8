package db

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// RunMigrations applies every pending migration found in migrationsFS.
// A database that is already up to date is not an error.
func RunMigrations(cfg PoolConfig, migrationsFS fs.FS) error {
	m, closeDB, err := newMigrator(cfg, migrationsFS)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// RollbackMigrations reverts the given number of applied migrations.
func RollbackMigrations(cfg PoolConfig, migrationsFS fs.FS, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}

	m, closeDB, err := newMigrator(cfg, migrationsFS)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	return nil
}

// MigrationVersion reports the currently applied schema version.
func MigrationVersion(cfg PoolConfig, migrationsFS fs.FS) (version uint, dirty bool, err error) {
	m, closeDB, err := newMigrator(cfg, migrationsFS)
	if err != nil {
		return 0, false, err
	}
	defer closeDB()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// migratorConnConfig parses the URL for the migration connection and applies
// the same CA bundle and server name the pool uses.
func migratorConnConfig(cfg PoolConfig) (*pgx.ConnConfig, error) {
	connConfig, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if err := applyTLS(&connConfig.Config, cfg); err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}
	return connConfig, nil
}

func newMigrator(cfg PoolConfig, migrationsFS fs.FS) (*migrate.Migrate, func(), error) {
	connConfig, err := migratorConnConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	db := stdlib.OpenDB(*connConfig)
	if pingErr := db.Ping(); pingErr != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, ".")
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, func() { _, _ = m.Close() }, nil
}
