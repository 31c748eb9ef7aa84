package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database: postgres://… for PostgreSQL, sqlite://path for SQLite
	DatabaseURL   string
	RunMigrations bool

	// Region table (YAML)
	RegionsFile string

	// Redis backs the rate limiter and the cause catalog cache when set
	RedisURL string

	// Cause catalog
	CatalogCacheTTL        time.Duration
	CatalogRefreshInterval time.Duration // 0 disables the background warmer

	// TLS/mTLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // CA for verifying client certs (mTLS)

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Rate limiting, requests per minute per IP
	RateLimitMax int

	// Request limits
	MaxCauses    int
	QueryTimeout time.Duration // 0 disables the per-request deadline

	// Site Branding
	SiteTitle string // env: SITE_TITLE, default: "WHO Mortality Explorer"
	ViewsDir  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                    getEnv("ENV", "development"),
		ServerAddr:             getEnv("SERVER_ADDR", ":3000"),
		BaseURL:                getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:            getEnv("DATABASE_URL", "postgres://localhost:5432/whomortality?sslmode=disable"),
		RunMigrations:          getEnv("RUN_MIGRATIONS", "true") == "true",
		RegionsFile:            getEnv("REGIONS_FILE", "regions.yaml"),
		RedisURL:               getEnv("REDIS_URL", ""),
		CatalogCacheTTL:        getDuration("CATALOG_CACHE_TTL", time.Hour),
		CatalogRefreshInterval: getDuration("CATALOG_REFRESH_INTERVAL", 0),
		TLSEnabled:             getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:            getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:             getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:              getEnv("TLS_CA_FILE", ""),
		CORSOrigins:            getEnv("CORS_ORIGINS", ""),
		RateLimitMax:           getInt("RATE_LIMIT_MAX", 100),
		MaxCauses:              getInt("MAX_CAUSES", 200),
		QueryTimeout:           getDuration("QUERY_TIMEOUT", 30*time.Second),

		SiteTitle: getEnv("SITE_TITLE", "WHO Mortality Explorer"),
		ViewsDir:  getEnv("VIEWS_DIR", "./views"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d >= 0 {
		return d
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsMTLSEnabled returns true if mTLS is configured with a CA file.
func (c *Config) IsMTLSEnabled() bool {
	return c.TLSEnabled && c.TLSCAFile != ""
}

// IsSQLite reports whether DatabaseURL points at a SQLite file.
func (c *Config) IsSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite://") || strings.HasPrefix(c.DatabaseURL, "sqlite3://")
}
