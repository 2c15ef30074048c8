package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Fatalf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.DatabaseURL != "sqlite:///./users.db" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.SessionTTLHours != 24 {
		t.Fatalf("SessionTTLHours = %d, want 24", cfg.SessionTTLHours)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_URL", "redis://redis:6379/1")
	t.Setenv("SESSION_TTL_HOURS", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.RedisURL != "redis://redis:6379/1" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.SessionTTLHours != 2 {
		t.Fatalf("SessionTTLHours = %d, want 2", cfg.SessionTTLHours)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero session TTL")
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SessionTTLHours != 24 {
		t.Fatalf("SessionTTLHours = %d, want default 24", cfg.SessionTTLHours)
	}
}
