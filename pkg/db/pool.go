package db

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	healthCheckPeriod = 30 * time.Second
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 30 * time.Minute
)

// PoolConfig contains database pool configuration parameters
type PoolConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
	// CACertPath is a PEM bundle trusted instead of the system roots when
	// the URL's sslmode enables TLS.
	CACertPath string
	// TLSServerName overrides the name verified on the server certificate.
	TLSServerName string
}

// NewPool creates a PostgreSQL connection pool and verifies it with a ping.
func NewPool(ctx context.Context, poolCfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(poolCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if err := applyTLS(&config.ConnConfig.Config, poolCfg); err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}

	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	config.HealthCheckPeriod = healthCheckPeriod
	config.MaxConnLifetime = maxConnLifetime
	config.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// applyTLS layers the custom CA bundle onto the TLS settings pgx derived from
// sslmode, including any per-host fallbacks. URLs that disable TLS are left
// untouched.
func applyTLS(config *pgconn.Config, poolCfg PoolConfig) error {
	if poolCfg.CACertPath == "" {
		return nil
	}

	targets := make([]*tls.Config, 0, 1+len(config.Fallbacks))
	if config.TLSConfig != nil {
		targets = append(targets, config.TLSConfig)
	}
	for _, fb := range config.Fallbacks {
		if fb.TLSConfig != nil {
			targets = append(targets, fb.TLSConfig)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	caPEM, err := os.ReadFile(poolCfg.CACertPath)
	if err != nil {
		return fmt.Errorf("failed to read CA certificate from %s: %w", poolCfg.CACertPath, err)
	}

	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(caPEM) {
		return fmt.Errorf("no certificates found in %s", poolCfg.CACertPath)
	}

	for _, tlsConfig := range targets {
		tlsConfig.RootCAs = roots
		if poolCfg.TLSServerName != "" {
			tlsConfig.ServerName = poolCfg.TLSServerName
		}
	}
	return nil
}

// Close gracefully closes the connection pool
func Close(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
