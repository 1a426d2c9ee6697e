// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used by the server and
// the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pagestore/internal/ident"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendLocal    = "local"
	BackendAzurite  = "azurite"
	BackendCosmos   = "cosmos"
	BackendPostgres = "postgres"
)

const defaultDBPassword = "changeme"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json

	// Template storage
	StorageBackend string
	IDStrategy     string
	LocalStorePath string

	// S3-compatible blob storage (STORAGE_BACKEND=azurite)
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3Prefix     string
	S3MaxRetries int
	S3RetryDelay time.Duration
	S3Workers    int

	// PostgreSQL connection (STORAGE_BACKEND=postgres)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey read-through cache
	CacheEnabled   bool
	CacheTTL       time.Duration
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// API protection
	APITokenHash    string // bcrypt hash; empty disables token checks
	RateLimitWrites int    // mutating requests per minute per IP, 0 disables
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value cannot be
// parsed or is unsafe in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),

		StorageBackend: strings.ToLower(envOrDefault("STORAGE_BACKEND", BackendLocal)),
		IDStrategy:     envOrDefault("TEMPLATE_ID_STRATEGY", ident.StrategyTimestamp),
		LocalStorePath: envOrDefault("LOCAL_STORE_PATH", "./data/templates"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "page-templates"),
		S3Prefix:    envOrDefault("S3_PREFIX", "templates/"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "pagestore"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "pagestore"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		APITokenHash: os.Getenv("API_TOKEN_HASH"),
	}

	var err error
	if cfg.S3MaxRetries, err = envInt("S3_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.S3RetryDelay, err = envDuration("S3_RETRY_DELAY", 200*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.S3Workers, err = envInt("S3_WORKERS", 8); err != nil {
		return nil, err
	}
	if cfg.CacheEnabled, err = envBool("CACHE_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitWrites, err = envInt("RATE_LIMIT_WRITES", 60); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend is known and fully configured,
// and that production deployments do not run with development secrets.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendLocal:
		if c.LocalStorePath == "" {
			return errors.New("LOCAL_STORE_PATH must not be empty")
		}
	case BackendAzurite:
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return errors.New("S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY are required for the azurite backend")
		}
	case BackendCosmos, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if _, err := ident.ForStrategy(c.IDStrategy); err != nil {
		return fmt.Errorf("TEMPLATE_ID_STRATEGY: %w", err)
	}

	if c.Env == "production" {
		if c.StorageBackend == BackendPostgres && c.DBPassword == defaultDBPassword {
			return errors.New("POSTGRES_PASSWORD must be set in production")
		}
		if c.APITokenHash == "" {
			return errors.New("API_TOKEN_HASH must be set in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the cache address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration, got %q", key, v)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}
