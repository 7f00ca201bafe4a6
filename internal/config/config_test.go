package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SYNC_RETRIES", "")
	t.Setenv("IMAGE_STORAGE", "")
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1, cfg.SyncRetries)
	assert.Equal(t, "inline", cfg.Storage.Backend)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxBytes)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MIGRATIONS", "yes")
	t.Setenv("SYNC_RETRIES", "3")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("IMAGE_STORAGE", "S3")
	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Migrations)
	assert.Equal(t, 3, cfg.SyncRetries)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "s3", cfg.Storage.Backend)
}

func TestParseHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "nope")
	assert.True(t, ParseBool("X_BOOL", true))
	t.Setenv("X_INT", "abc")
	assert.Equal(t, 7, ParseInt("X_INT", 7))
	t.Setenv("X_INT", "12")
	assert.Equal(t, 12, ParseInt("X_INT", 7))
}
