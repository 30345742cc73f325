package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port            string
	APIBaseURL      string
	PublicBaseURL   string
	SessionSecret   string
	SessionIssuer   string
	SessionTTL      time.Duration
	CookieSecure    bool
	DatabaseURL     string
	CORSOrigins     []string
	CatalogCacheTTL time.Duration
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		APIBaseURL:    strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/"),
		PublicBaseURL: strings.TrimRight(fallback(os.Getenv("PUBLIC_BASE_URL"), "http://localhost:8080"), "/"),
		SessionSecret: strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionIssuer: fallback(os.Getenv("SESSION_ISSUER"), "all-in-store"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	cfg.SessionTTL = time.Duration(positiveInt(os.Getenv("SESSION_TTL_MINUTES"), 7*24*60)) * time.Minute
	cfg.CookieSecure, _ = strconv.ParseBool(fallback(os.Getenv("COOKIE_SECURE"), "false"))

	seconds, err := strconv.Atoi(fallback(os.Getenv("CATALOG_CACHE_TTL_SECONDS"), "60"))
	if err != nil || seconds < 0 {
		return Config{}, errors.New("CATALOG_CACHE_TTL_SECONDS must be a non-negative integer")
	}
	cfg.CatalogCacheTTL = time.Duration(seconds) * time.Second

	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("API_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return Config{}, fmt.Errorf("API_BASE_URL is invalid: %w", err)
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return Config{}, errors.New("SESSION_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PublicURL joins path onto the externally visible base URL.
func (c Config) PublicURL(path string) string {
	return c.PublicBaseURL + "/" + strings.TrimLeft(path, "/")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
