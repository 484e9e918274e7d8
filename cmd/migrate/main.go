package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/axioniz/axioniz-api/config"
	"github.com/axioniz/axioniz-api/migrations"
	"github.com/axioniz/axioniz-api/pkg/db"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"go.uber.org/zap"
)

const usage = `usage: migrate [up | down [-steps N] | version]`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: "axioniz-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Database.URL == "" {
		logger.Error("DATABASE_URL is required for migrations")
		os.Exit(1)
	}

	command := "up"
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	logger.Info("Running database migrations",
		zap.String("command", command),
		zap.String("database", maskDatabaseURL(cfg.Database.URL)))

	target := db.PoolConfig{
		URL:           cfg.Database.URL,
		CACertPath:    cfg.Database.CACertPath,
		TLSServerName: cfg.Database.TLSServerName,
	}
	if err := run(command, args, target); err != nil {
		logger.Error("Migration failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

func run(command string, args []string, target db.PoolConfig) error {
	switch command {
	case "up":
		if err := db.RunMigrations(target, migrations.FS); err != nil {
			return err
		}
		logger.Info("Database migrations completed successfully")

	case "down":
		fs := flag.NewFlagSet("down", flag.ContinueOnError)
		steps := fs.Int("steps", 1, "number of migrations to roll back")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := db.RollbackMigrations(target, migrations.FS, *steps); err != nil {
			return err
		}
		logger.Info("Rolled back migrations", zap.Int("steps", *steps))

	case "version":
		version, dirty, err := db.MigrationVersion(target, migrations.FS)
		if err != nil {
			return err
		}
		logger.Info("Current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	default:
		return fmt.Errorf("unknown command %q; %s", command, usage)
	}
	return nil
}

// maskDatabaseURL hides credentials in the database URL for logging.
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	u.RawQuery = ""
	return u.String()
}
