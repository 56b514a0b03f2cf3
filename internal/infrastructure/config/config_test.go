package config_test

import (
	"testing"
	"time"

	"github.com/iho/txledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEDGER_DATA_DIR", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DataDir != "./data" {
		t.Fatalf("expected default data dir, got %q", cfg.DataDir)
	}

	if cfg.Dialect != "standard" {
		t.Fatalf("expected standard dialect, got %q", cfg.Dialect)
	}

	if cfg.TransferPolicy != "different-bank" {
		t.Fatalf("expected different-bank policy, got %q", cfg.TransferPolicy)
	}

	if cfg.RedisURL != "" {
		t.Fatalf("expected redis to be disabled by default, got %q", cfg.RedisURL)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.RateLimitRPS != 50 || cfg.RateLimitBurst != 100 {
		t.Fatalf("unexpected rate limit defaults: rps=%v burst=%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	if !cfg.MetricsEnabled {
		t.Fatalf("expected metrics to be enabled by default")
	}

	if cfg.PasswordHashCost != 10 {
		t.Fatalf("expected default password cost 10, got %d", cfg.PasswordHashCost)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEDGER_DATA_DIR", "/var/lib/ledger")
	t.Setenv("LEDGER_DIALECT", "excel")
	t.Setenv("LEDGER_TRANSFER_POLICY", "different-owner")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_READ_TIMEOUT", "45s")
	t.Setenv("HTTP_RATE_LIMIT_RPS", "0")
	t.Setenv("REDIS_CONNECT_TIMEOUT", "2s")
	t.Setenv("LEDGER_PASSWORD_COST", "4")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DataDir != "/var/lib/ledger" {
		t.Fatalf("expected custom data dir, got %s", cfg.DataDir)
	}

	if cfg.Dialect != "excel" || cfg.TransferPolicy != "different-owner" {
		t.Fatalf("expected ledger overrides, got dialect=%s policy=%s", cfg.Dialect, cfg.TransferPolicy)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.HTTPReadTimeout != 45*time.Second {
		t.Fatalf("expected read timeout override, got %s", cfg.HTTPReadTimeout)
	}

	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limiting disabled, got %v", cfg.RateLimitRPS)
	}

	if cfg.RedisConnectTimeout != 2*time.Second {
		t.Fatalf("expected redis connect timeout override, got %s", cfg.RedisConnectTimeout)
	}

	if cfg.PasswordHashCost != 4 {
		t.Fatalf("expected password cost override, got %d", cfg.PasswordHashCost)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
