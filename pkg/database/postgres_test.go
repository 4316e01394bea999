package database

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
)

func integrationDB(t *testing.T) *DB {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestHealthCheck(t *testing.T) {
	db := integrationDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.NotZero(t, status.Stats.MaxConns)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()

	require.NoError(t, db.EnsureSchema(ctx))
	require.NoError(t, db.EnsureSchema(ctx))
}

func TestSchemaDeclaresCurveTables(t *testing.T) {
	for _, table := range []string{"commodity_prices", "fx_rates", "forward_curves", "full_year_curves"} {
		assert.True(t, strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS "+table), table)
	}
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             "invalid://url",
			MaxConns:        25,
			MinConns:        5,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestCloseTwice(t *testing.T) {
	db := integrationDB(t)

	db.Close()
	db.Close()
}
