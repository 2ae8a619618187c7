package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	v.Set("CONFIG_DIR", t.TempDir())
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	v := newTestViper(t)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDBBaseURL)
	assert.Equal(t, 15*time.Second, cfg.TMDBFetchTimeout)
	assert.Equal(t, 5, cfg.SyncPages)
	assert.True(t, cfg.SyncOnStartup)
	assert.Equal(t, "0 */6 * * *", cfg.SyncSchedule)
	assert.Equal(t, uint64(3), cfg.SyncStartupRetries)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, filepath.Join(v.GetString("CONFIG_DIR"), "cinesync.db"), cfg.DatabaseDSN)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestFromViper_MissingCredentialsStillLoads(t *testing.T) {
	v := newTestViper(t)
	v.Set("TMDB_API_BASE_URL", "")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Empty(t, cfg.TMDBAccessToken)
	assert.Empty(t, cfg.TMDBAPIKey)
}

func TestFromViper_Overrides(t *testing.T) {
	v := newTestViper(t)
	v.Set("TMDB_API_TOKEN", "token")
	v.Set("TMDB_API_KEY", "key")
	v.Set("SYNC_PAGES", 2)
	v.Set("CACHE_TTL", "5m")
	v.Set("DB_DRIVER", "postgres")
	v.Set("DB_DSN", "postgres://localhost/cinesync")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.TMDBAccessToken)
	assert.Equal(t, "key", cfg.TMDBAPIKey)
	assert.Equal(t, 2, cfg.SyncPages)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "postgres://localhost/cinesync", cfg.DatabaseDSN)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"unknown cache", "CACHE_BACKEND", "memcached"},
		{"redis without url", "CACHE_BACKEND", "redis"},
		{"zero pages", "SYNC_PAGES", 0},
		{"zero ttl", "CACHE_TTL", "0s"},
		{"unknown log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper(t)
			v.Set(tt.key, tt.value)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestFromViper_PostgresRequiresDSN(t *testing.T) {
	v := newTestViper(t)
	v.Set("DB_DRIVER", "postgres")

	_, err := fromViper(v)
	assert.ErrorContains(t, err, "DB_DSN")
}

func TestRequireJWTSecret(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireJWTSecret())
	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.RequireJWTSecret())
}
