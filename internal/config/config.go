package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the unionhome server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Tenant   TenantConfig
	Gateway  GatewayConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type RedisConfig struct {
	URL string
}

type TenantConfig struct {
	CacheTTL time.Duration
	// LookupRateLimit is the per-client requests-per-minute budget of the
	// public lookup endpoint.
	LookupRateLimit int
}

type GatewayConfig struct {
	ReservedPaths []string
	// UpstreamURL, when set, is the page renderer that resolved tenant
	// pages are proxied to.
	UpstreamURL string
}

// DefaultReservedPaths are top-level segments that never name a union.
var DefaultReservedPaths = []string{
	"_next", "api", "static", "assets",
	"favicon.ico", "robots.txt", "sitemap.xml",
	"health", "metrics",
	"admin", "login", "signup", "auth",
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("UNIONHOME_PORT", 8080),
			Env:  envString("UNIONHOME_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsDir:   envString("MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Tenant: TenantConfig{
			CacheTTL:        envDuration("TENANT_CACHE_TTL", 30*time.Minute),
			LookupRateLimit: envInt("LOOKUP_RATE_LIMIT", 120),
		},
		Gateway: GatewayConfig{
			ReservedPaths: envList("GATEWAY_RESERVED_PATHS", DefaultReservedPaths),
			UpstreamURL:   os.Getenv("UPSTREAM_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Tenant.CacheTTL <= 0 {
		return fmt.Errorf("TENANT_CACHE_TTL must be positive, got %s", c.Tenant.CacheTTL)
	}

	if c.Tenant.LookupRateLimit <= 0 {
		return fmt.Errorf("LOOKUP_RATE_LIMIT must be positive, got %d", c.Tenant.LookupRateLimit)
	}

	if c.Gateway.UpstreamURL != "" &&
		!strings.HasPrefix(c.Gateway.UpstreamURL, "http://") &&
		!strings.HasPrefix(c.Gateway.UpstreamURL, "https://") {
		return fmt.Errorf("UPSTREAM_URL must start with http:// or https://, got %q", c.Gateway.UpstreamURL)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// envList reads a comma-separated list, dropping blanks.
func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultVal...)
	}
	return out
}
