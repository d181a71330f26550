package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.StoreDriver != StoreSQLite {
		t.Errorf("StoreDriver = %q, want sqlite", cfg.StoreDriver)
	}
	if cfg.APIPort != 8000 {
		t.Errorf("APIPort = %d, want 8000", cfg.APIPort)
	}
	if cfg.ListenerEnabled() {
		t.Error("listener should be disabled without DATABASE_URL")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/garden")
	t.Setenv("AUDIO_SOUNDS", " bell , ,harp")
	t.Setenv("RATE_LIMIT_WINDOW", "30")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DIGEST_INTERVAL_MINUTES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.StoreDriver != StorePostgres {
		t.Errorf("StoreDriver = %q", cfg.StoreDriver)
	}
	if len(cfg.AudioSounds) != 2 || cfg.AudioSounds[0] != "bell" || cfg.AudioSounds[1] != "harp" {
		t.Errorf("AudioSounds = %v", cfg.AudioSounds)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %v", cfg.RateLimitWindow)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.DigestInterval != 0 {
		t.Errorf("DigestInterval = %v", cfg.DigestInterval)
	}
	if !cfg.ListenerEnabled() {
		t.Error("listener should be enabled with DATABASE_URL")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "redis"}},
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"s3 without bucket", map[string]string{"STORE_DRIVER": "s3", "S3_BUCKET": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
