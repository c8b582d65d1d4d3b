package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_NAME", "orders")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.IsProd)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "SQLITE")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("IS_PROD", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.IsProd)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "s", DBDriver: "mysql", DBName: "orders", CacheTTL: time.Second}
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badDriver := base
	badDriver.DBDriver = "oracle"
	assert.Error(t, badDriver.Validate())

	noName := base
	noName.DBName = ""
	assert.Error(t, noName.Validate())

	noTTL := base
	noTTL.CacheTTL = 0
	assert.Error(t, noTTL.Validate())
}
