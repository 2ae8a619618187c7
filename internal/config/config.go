package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// TMDB
	TMDBBaseURL      string
	TMDBAccessToken  string
	TMDBAPIKey       string
	TMDBFetchTimeout time.Duration // Per page fetch (default: 15s)

	// Sync
	SyncPages          int    // Pages fetched per sync (default: 5)
	SyncOnStartup      bool   // Run a sync when the server starts (default: true)
	SyncSchedule       string // Cron expression, empty disables (default: every 6 hours)
	SyncStartupRetries uint64 // Retries of the startup sync (default: 3)

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // $CONFIG_DIR/cinesync.db for sqlite

	// Cache
	CacheBackend string // "memory" or "redis"
	RedisURL     string
	CacheTTL     time.Duration // Catalog page TTL (default: 60s)

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Server
	ServerPort string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	setDefaults(viper.GetViper())

	return fromViper(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("TMDB_API_BASE_URL", "https://api.themoviedb.org/3")
	v.SetDefault("TMDB_FETCH_TIMEOUT", "15s")
	v.SetDefault("SYNC_PAGES", 5)
	v.SetDefault("SYNC_ON_STARTUP", true)
	v.SetDefault("SYNC_SCHEDULE", "0 */6 * * *")
	v.SetDefault("SYNC_STARTUP_RETRIES", 3)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		// TMDB
		TMDBBaseURL:      v.GetString("TMDB_API_BASE_URL"),
		TMDBAccessToken:  v.GetString("TMDB_API_TOKEN"),
		TMDBAPIKey:       v.GetString("TMDB_API_KEY"),
		TMDBFetchTimeout: v.GetDuration("TMDB_FETCH_TIMEOUT"),

		// Sync
		SyncPages:          v.GetInt("SYNC_PAGES"),
		SyncOnStartup:      v.GetBool("SYNC_ON_STARTUP"),
		SyncSchedule:       v.GetString("SYNC_SCHEDULE"),
		SyncStartupRetries: v.GetUint64("SYNC_STARTUP_RETRIES"),

		// Database
		DatabaseDriver: v.GetString("DB_DRIVER"),
		DatabaseDSN:    v.GetString("DB_DSN"),

		// Cache
		CacheBackend: v.GetString("CACHE_BACKEND"),
		RedisURL:     v.GetString("REDIS_URL"),
		CacheTTL:     v.GetDuration("CACHE_TTL"),

		// Auth
		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		// Server
		ServerPort: v.GetString("SERVER_PORT"),

		// Logging
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}

	if config.DatabaseDriver == "sqlite" && config.DatabaseDSN == "" {
		configDir, err := resolveConfigDir(v.GetString("CONFIG_DIR"))
		if err != nil {
			return nil, err
		}
		config.DatabaseDSN = filepath.Join(configDir, "cinesync.db")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// resolveConfigDir returns an absolute, existing config directory
func resolveConfigDir(configDir string) (string, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "cinesync")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks settings the process cannot start without.
// TMDB credentials are checked at sync time instead.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DB_DSN is required for the %s driver", c.DatabaseDriver)
	}

	switch c.CacheBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	if c.SyncPages < 1 {
		return fmt.Errorf("SYNC_PAGES must be at least 1")
	}
	if c.TMDBFetchTimeout <= 0 {
		return fmt.Errorf("TMDB_FETCH_TIMEOUT must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	return nil
}

// RequireJWTSecret is checked by commands that serve authenticated routes
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}
