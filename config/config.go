package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// DevJWTSecret signs tokens when APP_ENV is development and JWT_SECRET is unset.
const DevJWTSecret = "dev-secret-change-me"

var ErrMissingJWTSecret = errors.New("config: JWT_SECRET is required outside development")

type Config struct {
	Port            int
	Env             string // "development" switches to the console logger
	DataDir         string
	ProfileBackend  string // file, sqlite, postgres or redis
	DatabaseURL     string
	SQLitePath      string
	RedisAddr       string
	NATSURL         string // empty disables event publishing
	JWTSecret       string
	TokenTTL        time.Duration
	StartingBalance decimal.Decimal // profile opened for an unknown player id
	GuestBalance    decimal.Decimal // registered and guest profiles
	CrashMax        float64
	CrashSkew       float64
	CrashTick       time.Duration
}

func Load() *Config {
	port := 8080
	// Prefer PORT (Render, Fly.io, Railway, etc.) then CASINO_PORT
	if v, ok := intEnv("PORT"); ok && v > 0 {
		port = v
	} else if v, ok := intEnv("CASINO_PORT"); ok && v > 0 {
		port = v
	}
	dataDir := stringEnv("CASINO_DATA_DIR", "data")
	backend := strings.ToLower(stringEnv("PROFILE_BACKEND", BackendFile))
	switch backend {
	case BackendFile, BackendSQLite, BackendPostgres, BackendRedis:
	default:
		backend = BackendFile
	}
	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(os.Getenv("TOKEN_TTL")); err == nil && d > 0 {
		ttl = d
	}
	tick := 300 * time.Millisecond
	if v, ok := intEnv("CRASH_TICK_MS"); ok && v > 0 {
		tick = time.Duration(v) * time.Millisecond
	}
	env := stringEnv("APP_ENV", "production")
	secret := stringEnv("JWT_SECRET", "")
	if secret == "" && IsDevelopment(env) {
		secret = DevJWTSecret
	}
	return &Config{
		Port:            port,
		Env:             env,
		DataDir:         dataDir,
		ProfileBackend:  backend,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      stringEnv("SQLITE_PATH", dataDir+"/casino.db"),
		RedisAddr:       stringEnv("REDIS_ADDR", "localhost:6379"),
		NATSURL:         os.Getenv("NATS_URL"),
		JWTSecret:       secret,
		TokenTTL:        ttl,
		StartingBalance: decimalEnv("STARTING_BALANCE", "1000"),
		GuestBalance:    decimalEnv("GUEST_BALANCE", "500"),
		CrashMax:        floatEnv("CRASH_MAX_MULTIPLIER", 50),
		CrashSkew:       floatEnv("CRASH_SKEW", 4),
		CrashTick:       tick,
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// IsDevelopment matches the env names that enable development defaults.
func IsDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "development", "dev":
		return true
	}
	return false
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string) (int, bool) {
	v, err := strconv.Atoi(os.Getenv(key))
	return v, err == nil
}

func floatEnv(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return def
}

func decimalEnv(key, def string) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil && !v.IsNegative() {
		return v.Round(2)
	}
	return decimal.RequireFromString(def)
}
