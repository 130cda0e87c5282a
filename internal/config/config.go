package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// SMTP holds the outbound mail transport settings. Delivery is attempted
// only when every field is present.
type SMTP struct {
	Host   string
	Port   int
	Secure bool
	User   string
	Pass   string
	From   string
}

// Complete reports whether the transport is fully configured.
func (s SMTP) Complete() bool {
	return s.Host != "" && s.Port != 0 && s.User != "" && s.Pass != "" && s.From != ""
}

// Auth holds the single configured credential pair and session settings.
type Auth struct {
	Username      string
	Password      string
	SessionSecret string
	SessionMaxAge time.Duration
}

// Config keeps runtime settings for the tracker.
type Config struct {
	Env             string
	Port            int
	BaseURL         string
	DBPath          string
	Timezone        string
	SMTP            SMTP
	ScheduledEmails bool
	Auth            Auth
	RateLimitRPS    float64
	RateLimitBurst  int
}

// Production reports whether the app runs with production hardening
// (secure cookies).
func (c Config) Production() bool {
	return c.Env == "production"
}

// Location resolves the configured timezone, falling back to UTC on a
// name the host does not know.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables with defaults
// suitable for local development only.
func Load() (Config, error) {
	cfg := Config{
		Env:      getenv("APP_ENV", "development"),
		Port:     parseInt(os.Getenv("PORT"), 3000),
		BaseURL:  getenv("BASE_URL", "http://localhost:3000"),
		DBPath:   getenv("DB_PATH", filepath.Join("data", "todos.sqlite")),
		Timezone: getenv("TIMEZONE", "UTC"),
		SMTP: SMTP{
			Host:   strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:   parseInt(os.Getenv("SMTP_PORT"), 587),
			Secure: parseBool(os.Getenv("SMTP_SECURE"), false),
			User:   strings.TrimSpace(os.Getenv("SMTP_USER")),
			Pass:   os.Getenv("SMTP_PASS"),
			From:   strings.TrimSpace(os.Getenv("SMTP_FROM")),
		},
		ScheduledEmails: parseBool(os.Getenv("ENABLE_SCHEDULED_EMAILS"), true),
		Auth: Auth{
			Username:      getenv("AUTH_USERNAME", "admin"),
			Password:      loadPassword(),
			SessionSecret: getenv("AUTH_SESSION_SECRET", "change-this-session-secret"),
			SessionMaxAge: time.Duration(parseInt(os.Getenv("AUTH_SESSION_MAX_AGE_HOURS"), 12)) * time.Hour,
		},
		RateLimitRPS:   parseFloat(os.Getenv("RATE_LIMIT_RPS"), 0),
		RateLimitBurst: parseInt(os.Getenv("RATE_LIMIT_BURST"), 10),
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.Auth.SessionMaxAge <= 0 {
		return cfg, fmt.Errorf("AUTH_SESSION_MAX_AGE_HOURS must be positive")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// loadPassword prefers the base64-encoded variant so shells with awkward
// quoting can still carry special characters.
func loadPassword() string {
	if b64 := strings.TrimSpace(os.Getenv("AUTH_PASSWORD_B64")); b64 != "" {
		if raw, err := base64.StdEncoding.DecodeString(b64); err == nil {
			return string(raw)
		}
	}
	if pass := os.Getenv("AUTH_PASSWORD"); pass != "" {
		return pass
	}
	return "change-me"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(raw string, fallback float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(raw string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}
