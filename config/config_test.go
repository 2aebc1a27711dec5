package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "CASINO_PORT", "PROFILE_BACKEND", "TOKEN_TTL", "STARTING_BALANCE", "CRASH_TICK_MS", "CASINO_DATA_DIR"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.ProfileBackend != BackendFile {
		t.Errorf("backend = %q, want file", cfg.ProfileBackend)
	}
	if cfg.StartingBalance.StringFixed(2) != "1000.00" || cfg.GuestBalance.StringFixed(2) != "500.00" {
		t.Errorf("balances = %s / %s", cfg.StartingBalance, cfg.GuestBalance)
	}
	if cfg.CrashTick != 300*time.Millisecond || cfg.TokenTTL != 24*time.Hour {
		t.Errorf("durations = %v / %v", cfg.CrashTick, cfg.TokenTTL)
	}
	if cfg.SQLitePath != "data/casino.db" {
		t.Errorf("sqlite path = %q", cfg.SQLitePath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CASINO_PORT", "9090")
	t.Setenv("PROFILE_BACKEND", "Redis")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("STARTING_BALANCE", "250.555")
	t.Setenv("CRASH_TICK_MS", "50")
	t.Setenv("CRASH_MAX_MULTIPLIER", "-1")
	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.ProfileBackend != BackendRedis {
		t.Errorf("backend = %q, want redis", cfg.ProfileBackend)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("ttl = %v", cfg.TokenTTL)
	}
	if cfg.StartingBalance.StringFixed(2) != "250.56" {
		t.Errorf("starting balance = %s", cfg.StartingBalance.StringFixed(2))
	}
	if cfg.CrashTick != 50*time.Millisecond {
		t.Errorf("tick = %v", cfg.CrashTick)
	}
	if cfg.CrashMax != 50 {
		t.Errorf("negative crash max not ignored: %v", cfg.CrashMax)
	}
}

func TestLoad_UnknownBackendFallsBackToFile(t *testing.T) {
	t.Setenv("PROFILE_BACKEND", "mongo")
	if got := Load().ProfileBackend; got != BackendFile {
		t.Errorf("backend = %q, want file", got)
	}
}

func TestLoad_JWTSecretDefaultOnlyInDevelopment(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	t.Setenv("APP_ENV", "development")
	cfg := Load()
	if cfg.JWTSecret != DevJWTSecret || cfg.Validate() != nil {
		t.Errorf("development secret = %q, validate = %v", cfg.JWTSecret, cfg.Validate())
	}

	for _, env := range []string{"", "production", "staging"} {
		t.Setenv("APP_ENV", env)
		cfg := Load()
		if cfg.JWTSecret != "" {
			t.Errorf("APP_ENV=%q: secret defaulted to %q", env, cfg.JWTSecret)
		}
		if err := cfg.Validate(); !errors.Is(err, ErrMissingJWTSecret) {
			t.Errorf("APP_ENV=%q: validate = %v, want ErrMissingJWTSecret", env, err)
		}
	}

	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "  s3cret ")
	cfg = Load()
	if cfg.JWTSecret != "s3cret" || cfg.Validate() != nil {
		t.Errorf("explicit secret = %q, validate = %v", cfg.JWTSecret, cfg.Validate())
	}
}
