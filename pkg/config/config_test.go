package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.ListTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.ExportTTL)
	assert.Equal(t, ArchiveNone, cfg.Archive.Driver)
	assert.Equal(t, 3, cfg.Rollover.Retries)
	assert.False(t, cfg.SMS.Enabled)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CACHE_EXPORT_TTL", "2m")
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ROLLOVER_RESUME_RETRIES", "0")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, 2*time.Minute, cfg.Cache.ExportTTL)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	require.Len(t, cfg.CORS.AllowedOrigins, 2)
	assert.Equal(t, "https://b.example", cfg.CORS.AllowedOrigins[1])
	assert.Equal(t, 3, cfg.Rollover.Retries)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}
