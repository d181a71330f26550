// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/gardenctl.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Store drivers
// --------------------------------------------------------------------------

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreS3       = "s3"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Preference store
	StoreDriver string
	SQLitePath  string

	// Database (postgres store + feed listener)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// S3 store
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
	S3Prefix    string

	// Feeds
	FeedListenerEnabled bool

	// Static catalogs (empty = embedded defaults)
	CatalogItemsFile   string
	CatalogWeatherFile string

	// Audio subsystem defaults
	AudioSounds         []string
	AudioDefaultSound   string
	AudioStopMode       string
	AudioLoopIntervalMS int

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool
	LogLevel    slog.Level

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool

	// Maintenance tickers (zero disables)
	CleanupInterval time.Duration
	DigestInterval  time.Duration
	CatchUpInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		StoreDriver: strings.ToLower(envOr("STORE_DRIVER", StoreSQLite)),
		SQLitePath:  envOr("SQLITE_PATH", "gardenwatch.db"),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		S3Bucket:    envOr("S3_BUCKET", ""),
		S3Region:    envOr("S3_REGION", "us-east-1"),
		S3Endpoint:  envOr("S3_ENDPOINT", ""),
		S3PathStyle: envBool("S3_PATH_STYLE", false),
		S3Prefix:    envOr("S3_PREFIX", "gardenwatch/"),

		FeedListenerEnabled: envBool("FEED_LISTENER_ENABLED", true),

		CatalogItemsFile:   envOr("CATALOG_ITEMS_FILE", ""),
		CatalogWeatherFile: envOr("CATALOG_WEATHER_FILE", ""),

		AudioSounds:         envList("AUDIO_SOUNDS", []string{"chime", "bell", "harp", "alarm"}),
		AudioDefaultSound:   envOr("AUDIO_DEFAULT_SOUND", "chime"),
		AudioStopMode:       envOr("AUDIO_STOP_MODE", "manual"),
		AudioLoopIntervalMS: envInt("AUDIO_LOOP_INTERVAL_MS", 1500),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
		LogLevel:    envLevel("LOG_LEVEL", slog.LevelInfo),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),

		CleanupInterval: time.Duration(envInt("CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute,
		DigestInterval:  time.Duration(envInt("DIGEST_INTERVAL_MINUTES", 60)) * time.Minute,
		CatchUpInterval: time.Duration(envInt("CATCHUP_INTERVAL_MINUTES", 15)) * time.Minute,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when STORE_DRIVER=postgres")
		}
	case StoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when STORE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ListenerEnabled reports whether the LISTEN/NOTIFY feed can run.
func (c *Config) ListenerEnabled() bool {
	return c.FeedListenerEnabled && c.DatabaseURL != ""
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
