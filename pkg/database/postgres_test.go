package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscope/pkg/config"
)

func integrationDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(&config.Config{})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             "invalid://url",
			MaxConns:        5,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	db := integrationDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, db.Migrate(ctx))
	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.NotZero(t, status.MaxConns)
	assert.GreaterOrEqual(t, status.SchemaVersion, int64(1))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))
}

func TestCloseTwice(t *testing.T) {
	db := integrationDB(t)
	db.Close()
	db.Close()
}
