package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")

	cfg := Load()
	if cfg.API.Addr != ":8080" {
		t.Fatalf("expected default api addr, got %q", cfg.API.Addr)
	}
	if cfg.Database.DSN != "" {
		t.Fatalf("expected empty dsn, got %q", cfg.Database.DSN)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Fatalf("expected 1m window, got %s", cfg.RateLimit.Window)
	}
	if cfg.Worker.MaxActiveJobs < 1 {
		t.Fatalf("expected at least one active job slot, got %d", cfg.Worker.MaxActiveJobs)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "90s")
	t.Setenv("PIXELEDIT_TRACE_SAMPLE_RATIO", "0.25")
	t.Setenv("WEBHOOK_MAX_ATTEMPTS", "not-a-number")

	cfg := Load()
	if cfg.Queue.RedisDB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.Queue.RedisDB)
	}
	if !cfg.Storage.UseSSL {
		t.Fatal("expected ssl enabled")
	}
	if cfg.RateLimit.Window != 90*time.Second {
		t.Fatalf("expected 90s window, got %s", cfg.RateLimit.Window)
	}
	if cfg.Telemetry.SampleRatio != 0.25 {
		t.Fatalf("expected sample ratio 0.25, got %v", cfg.Telemetry.SampleRatio)
	}
	if cfg.Webhook.MaxAttempts != 4 {
		t.Fatalf("expected fallback attempts 4, got %d", cfg.Webhook.MaxAttempts)
	}
}
