package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	LogMode     string

	ClerkSecretKey     string
	ClerkWebhookSecret string
	MetricsUser        string
	MetricsPass        string

	FCMServiceAccountPath string
	CatalogPath           string

	RateLimitRPS   float64
	RateLimitBurst int

	// Calendar days for streaks and the weekly points reset are evaluated here.
	Location *time.Location

	DBMaxConns int32
	DBMinConns int32
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  String("PORT", "3333"),
		DatabaseURL:           String("DATABASE_URL", ""),
		LogMode:               String("LOG_MODE", "dev"),
		ClerkSecretKey:        String("CLERK_SECRET_KEY", ""),
		ClerkWebhookSecret:    String("CLERK_WEBHOOK_SECRET", ""),
		MetricsUser:           String("METRICS_USER", ""),
		MetricsPass:           String("METRICS_PASS", ""),
		FCMServiceAccountPath: String("FCM_SERVICE_ACCOUNT_PATH", "./serviceAccountKey.json"),
		CatalogPath:           String("CATALOG_PATH", ""),
		RateLimitRPS:          Float("RATE_LIMIT_RPS", 5),
		RateLimitBurst:        Int("RATE_LIMIT_BURST", 30),
		DBMaxConns:            int32(Int("DB_MAX_CONNS", 25)),
		DBMinConns:            int32(Int("DB_MIN_CONNS", 5)),
	}

	tz := String("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.ClerkSecretKey == "" {
		return fmt.Errorf("CLERK_SECRET_KEY environment variable is not set")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Float(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
