// Package config loads and validates app config from env and an optional .env
// file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"identity-service/internal/security"
)

// Expiry fallbacks when the configured strings are unparsable. Documented
// policy: a bad expiry value degrades to the default, it never fails a flow.
const (
	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// AccessSecret signs access tokens; min 32 chars. Disjoint from RefreshSecret.
	AccessSecret string `mapstructure:"JWT_ACCESS_SECRET"`
	// RefreshSecret signs refresh tokens; min 32 chars.
	RefreshSecret string `mapstructure:"JWT_REFRESH_SECRET"`
	// AccessExpiry is the access token lifetime in N<s|m|h|d> form (default 60m).
	AccessExpiry string `mapstructure:"JWT_ACCESS_EXPIRY"`
	// RefreshExpiry is the refresh token lifetime in N<s|m|h|d> form (default 30d).
	RefreshExpiry string `mapstructure:"JWT_REFRESH_EXPIRY"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SessionCap is the max live sessions retained per user; default 5.
	SessionCap int `mapstructure:"SESSION_CAP"`
	// CORSOrigin is the comma-separated list of allowed origins, or "*".
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables telemetry.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ACCESS_SECRET", "")
	v.SetDefault("JWT_REFRESH_SECRET", "")
	v.SetDefault("JWT_ACCESS_EXPIRY", "60m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "30d")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_CAP", 5)
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if len(cfg.AccessSecret) < 32 {
		return nil, errors.New("config: JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(cfg.RefreshSecret) < 32 {
		return nil, errors.New("config: JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.SessionCap < 1 {
		return nil, errors.New("config: SESSION_CAP must be at least 1")
	}

	return &cfg, nil
}

// AccessTTL parses AccessExpiry; unparsable values fall back to 60m.
func (c *Config) AccessTTL() time.Duration {
	return security.ParseExpiry(c.AccessExpiry, DefaultAccessTTL)
}

// RefreshTTL parses RefreshExpiry; unparsable values fall back to 30d.
func (c *Config) RefreshTTL() time.Duration {
	return security.ParseExpiry(c.RefreshExpiry, DefaultRefreshTTL)
}
