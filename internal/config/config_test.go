package config

import (
	"testing"
	"time"

	"clinvarminer/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinvar?sslmode=disable")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, time.Duration(0), cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Disabled)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoadCacheTTL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinvar")

	t.Setenv("CACHE_TTL", "90")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)

	t.Setenv("CACHE_TTL", "-1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.Cache.Disabled)
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinvar")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
}
