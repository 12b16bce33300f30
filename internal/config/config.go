package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort             = 5000
	defaultTrackingInterval = 10 * time.Second
)

type Config struct {
	Port     int
	Env      string
	LogLevel string

	DatabaseURL string
	RedisAddr   string

	JWTSecret          string
	AuthProvider       string
	AuthProviderURL    string
	AuthProviderAPIKey string
	AuthEventsSecret   string

	CORSAllowedOrigins string
	TrackingInterval   time.Duration

	// Warnings collects values that were rejected and replaced by defaults,
	// logged once the logger is up.
	Warnings []string
}

// Load reads configuration from environment variables. Invalid values fall
// back to defaults and are reported in Warnings rather than failing startup.
func Load() Config {
	cfg := Config{
		Port:               defaultPort,
		Env:                getEnv("NODE_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AuthProvider:       strings.ToLower(getEnv("AUTH_PROVIDER", "local")),
		AuthProviderURL:    os.Getenv("AUTH_PROVIDER_URL"),
		AuthProviderAPIKey: os.Getenv("AUTH_PROVIDER_API_KEY"),
		AuthEventsSecret:   os.Getenv("AUTH_EVENTS_SECRET"),
		CORSAllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),
		TrackingInterval:   defaultTrackingInterval,
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid PORT %q, using %d", raw, defaultPort))
		} else {
			cfg.Port = port
		}
	}

	if raw := os.Getenv("TRACKING_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid TRACKING_INTERVAL %q, using %s", raw, defaultTrackingInterval))
		} else {
			cfg.TrackingInterval = d
		}
	}

	if cfg.AuthProvider != "local" && cfg.AuthProvider != "delegated" {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown AUTH_PROVIDER %q, using local", cfg.AuthProvider))
		cfg.AuthProvider = "local"
	}

	return cfg
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// AllowOrigins returns the CORS origin list: everything outside production,
// the configured allowlist in production.
func (c Config) AllowOrigins() string {
	if !c.IsProduction() {
		return "*"
	}
	if c.CORSAllowedOrigins == "" {
		return "https://luxebite.app"
	}
	return c.CORSAllowedOrigins
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
