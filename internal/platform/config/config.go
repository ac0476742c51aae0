// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (hasher, codec, stores) via constructors.
  - Zero Hidden State: No global variables are used to store config.

The signing secret has no default: a missing TOKEN_SECRET fails startup.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/authgate/internal/platform/constants"
)

// # Storage Drivers

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the Authgate API server.
type Config struct {

	// Server settings
	ServerPort     string        `env:"SERVER_PORT"     envDefault:"8080"`
	Environment    string        `env:"ENVIRONMENT"     envDefault:"development"`
	Debug          bool          `env:"DEBUG"           envDefault:"false"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Token signing
	TokenSecret string        `env:"TOKEN_SECRET,required"`
	TokenIssuer string        `env:"TOKEN_ISSUER" envDefault:"authgate"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"    envDefault:"24h"`

	// Credential hashing
	HashAlgorithm     string `env:"HASH_ALGORITHM"     envDefault:"bcrypt"`
	HashCost          int    `env:"HASH_COST"          envDefault:"12"`
	Argon2MemoryKiB   uint32 `env:"ARGON2_MEMORY_KIB"  envDefault:"65536"`
	Argon2Iterations  uint32 `env:"ARGON2_ITERATIONS"  envDefault:"3"`
	Argon2Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"2"`

	// Password policy
	PasswordMinLength        int  `env:"PASSWORD_MIN_LENGTH"         envDefault:"8"`
	PasswordRequireMixedCase bool `env:"PASSWORD_REQUIRE_MIXED_CASE" envDefault:"false"`
	PasswordRequireDigit     bool `env:"PASSWORD_REQUIRE_DIGIT"      envDefault:"false"`
	PasswordRequireSymbol    bool `env:"PASSWORD_REQUIRE_SYMBOL"     envDefault:"false"`

	// Storage backend selection
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Embedded Database (SQLite)
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/authgate.db"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the cross-field rules env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.TokenSecret) == "" {
		errs = append(errs, errors.New("TOKEN_SECRET must not be empty"))
	}
	if c.IsProduction() && len(c.TokenSecret) < constants.MinProductionSecretLength {
		errs = append(errs, fmt.Errorf("TOKEN_SECRET must be at least %d bytes in production", constants.MinProductionSecretLength))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, errors.New("TOKEN_TTL must not be negative"))
	}
	if c.PasswordMinLength < 8 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be at least 8"))
	}

	switch c.HashAlgorithm {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("HASH_ALGORITHM %q is not supported", c.HashAlgorithm))
	}

	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case DriverRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not supported", c.StoreDriver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the trimmed, non-empty entries of EXTRA_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// String renders the configuration for logs with the signing secret redacted.
func (c Config) String() string {
	return fmt.Sprintf(
		"env=%s port=%s store=%s hash=%s token_ttl=%s token_secret=[REDACTED]",
		c.Environment, c.ServerPort, c.StoreDriver, c.HashAlgorithm, c.TokenTTL,
	)
}
