package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("JWT_TTL_MINUTES", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("JWT_SECRET", "")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTPAddr)
	}
	if cfg.JWTTTL != 30*time.Minute {
		t.Fatalf("expected 30m jwt ttl, got %s", cfg.JWTTTL)
	}
	if cfg.Kafka.Enabled() || cfg.Redis.Enabled() {
		t.Fatalf("expected kafka and redis disabled by default")
	}
	if cfg.JWTSecret != "" {
		t.Fatalf("expected no default jwt secret, got %q", cfg.JWTSecret)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation to fail without JWT_SECRET")
	}
}

func TestValidateJWTSecret(t *testing.T) {
	cfg := Config{JWTSecret: "short"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected short secret rejected")
	}
	cfg.JWTSecret = strings.Repeat("k", MinJWTSecretLen)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected secret accepted, got %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GATEWAY_TIMEOUT_SECONDS", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("CURRENCY", "usd")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example.com/")

	cfg := FromEnv()
	if cfg.GatewayTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.GatewayTimeout)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Currency != "USD" {
		t.Fatalf("expected upper-cased currency, got %q", cfg.Currency)
	}
	if cfg.PublicBaseURL != "https://shop.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.PublicBaseURL)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SMTP_HOST=smtp.example.com\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("SMTP_HOST", "")
	os.Unsetenv("SMTP_HOST")

	cfg := Load(path)
	if !cfg.SMTP.Enabled() || cfg.SMTP.Host != "smtp.example.com" {
		t.Fatalf("expected smtp host from .env, got %q", cfg.SMTP.Host)
	}
}
