package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sitelore", cfg.Database.Database)

	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, 4, cfg.Search.OverFetchFactor)
	assert.Equal(t, 0.7, cfg.Search.Alpha)
	assert.Equal(t, 0.2, cfg.Search.Beta)
	assert.Equal(t, 0.4, cfg.Search.Gamma)
	assert.Equal(t, 0.7, cfg.Search.Lambda)
	assert.True(t, cfg.Search.ExcludeHardNegatives)

	assert.Equal(t, 500, cfg.Taste.EventWindow)
	assert.Equal(t, 120.0, cfg.Taste.DwellSaturationSeconds)
	assert.Equal(t, 0.5, cfg.Taste.PositiveThreshold)
	assert.Equal(t, -0.5, cfg.Taste.NegativeThreshold)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "25")
	t.Setenv("RANK_ALPHA", "0.9")
	t.Setenv("MMR_LAMBDA", "0.5")
	t.Setenv("RANK_EXCLUDE_HARD_NEGATIVES", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Search.TopK)
	assert.Equal(t, 0.9, cfg.Search.Alpha)
	assert.Equal(t, 0.5, cfg.Search.Lambda)
	assert.False(t, cfg.Search.ExcludeHardNegatives)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	cfg.Search.Lambda = 1.5
	assert.Error(t, cfg.Validate())
	cfg.Search.Lambda = 0.7

	cfg.Search.Gamma = -0.1
	assert.Error(t, cfg.Validate())
	cfg.Search.Gamma = 0.4

	cfg.Taste.PositiveThreshold = -1
	assert.Error(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Database: "sitelore",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=app password=secret dbname=sitelore sslmode=require",
		cfg.DatabaseDSN(),
	)
}
