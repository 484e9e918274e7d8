package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/axioniz/axioniz-api/migrations"
	"github.com/axioniz/axioniz-api/pkg/db"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const backendName = "postgres"

// Client is the PostgreSQL consultation backend.
type Client struct {
	pool    *pgxpool.Pool
	target  db.PoolConfig
	migrate func(target db.PoolConfig) error

	initMu      sync.Mutex
	initialized bool
}

// Config holds PostgreSQL connection configuration
type Config struct {
	URL           string
	MaxConns      int32
	MinConns      int32
	CACertPath    string
	TLSServerName string
}

// NewClient opens a connection pool. The schema is applied lazily by Initialize.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	target := db.PoolConfig{
		URL:           cfg.URL,
		MaxConns:      cfg.MaxConns,
		MinConns:      cfg.MinConns,
		CACertPath:    cfg.CACertPath,
		TLSServerName: cfg.TLSServerName,
	}
	pool, err := db.NewPool(ctx, target)
	if err != nil {
		return nil, err
	}

	stat := pool.Stat()
	logger.Info("PostgreSQL client initialized",
		zap.Int32("max_conns", stat.MaxConns()),
	)

	return newClient(pool, target, runEmbeddedMigrations), nil
}

func newClient(pool *pgxpool.Pool, target db.PoolConfig, migrate func(db.PoolConfig) error) *Client {
	return &Client{pool: pool, target: target, migrate: migrate}
}

// runEmbeddedMigrations connects with the same TLS settings as the pool.
func runEmbeddedMigrations(target db.PoolConfig) error {
	return db.RunMigrations(target, migrations.FS)
}

func (c *Client) Backend() string { return backendName }

// Initialize applies pending schema migrations once per process. A failed
// attempt is retried on the next call.
func (c *Client) Initialize(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}

	start := time.Now()
	if err := c.migrate(c.target); err != nil {
		recordMetrics("initialize", "error", metrics.MeasureDuration(start))
		return fmt.Errorf("failed to initialize postgres schema: %w", err)
	}
	recordMetrics("initialize", "success", metrics.MeasureDuration(start))

	c.initialized = true
	logger.Info("PostgreSQL schema ready")
	return nil
}

// Close closes the connection pool
func (c *Client) Close() error {
	if c.pool != nil {
		c.pool.Close()
		logger.Info("PostgreSQL connection pool closed")
	}
	return nil
}

// Ping checks if the database connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func recordMetrics(operation, status string, duration float64) {
	metrics.RecordDBOperation(backendName, operation, status, duration)
}
