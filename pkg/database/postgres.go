package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundscope/pkg/config"
)

// DB wraps the pgxpool.Pool backing the results store.
// ⭐ SSOT: the only place a pool is created
type DB struct {
	Pool      *pgxpool.Pool
	closeOnce sync.Once
}

// ErrNotConfigured is returned when DATABASE_URL is empty
var ErrNotConfigured = errors.New("database: DATABASE_URL not set")

// New creates a connection pool and verifies it with a ping
func New(cfg *config.Config) (*DB, error) {
	if cfg.Database.URL == "" {
		return nil, ErrNotConfigured
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the pool. Safe to call more than once.
func (db *DB) Close() {
	db.closeOnce.Do(func() {
		if db.Pool != nil {
			db.Pool.Close()
		}
	})
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Health summarizes the results store for operators
type Health struct {
	Latency       time.Duration `json:"latency"`
	SchemaVersion int64         `json:"schema_version"`
	MaxConns      int32         `json:"max_conns"`
	TotalConns    int32         `json:"total_conns"`
	IdleConns     int32         `json:"idle_conns"`
}

// HealthCheck pings the pool and reads the applied migration version
func (db *DB) HealthCheck(ctx context.Context) (*Health, error) {
	start := time.Now()
	if err := db.Pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	h := &Health{Latency: time.Since(start)}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	h.SchemaVersion = version

	stat := db.Pool.Stat()
	h.MaxConns = stat.MaxConns()
	h.TotalConns = stat.TotalConns()
	h.IdleConns = stat.IdleConns()
	return h, nil
}
