package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_TTL", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SEED_ADMIN_EMAIL", "Root@Example.COM")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "root@example.com", cfg.SeedAdminEmail)
}

func TestLoadConfigFallsBackOnGarbage(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	t.Setenv("TOKEN_TTL", "forever")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
}
