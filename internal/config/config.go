// Package config provides application configuration with multi-source priority.
//
// Sources, highest priority first:
//  1. Environment variables (SELLERSCOPE_* prefix)
//  2. Config file (~/.sellerscope/config.yaml, overridable with --config)
//  3. Built-in defaults
//
// Sensitive values (JWT secret, database password) are never logged.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation. Check with errors.Is().
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidUpstreamURL indicates the upstream base URL cannot be parsed.
	ErrInvalidUpstreamURL = errors.New("invalid upstream URL")

	// ErrMissingModel indicates no model name is configured.
	ErrMissingModel = errors.New("missing model name")

	// ErrMissingJWTSecret indicates the JWT signing secret is not set.
	ErrMissingJWTSecret = errors.New("missing JWT secret")

	// ErrWeakJWTSecret indicates the JWT signing secret is too short.
	ErrWeakJWTSecret = errors.New("JWT secret must be at least 32 bytes")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidSessionMaxAge indicates a non-positive session retention.
	ErrInvalidSessionMaxAge = errors.New("session max age must be positive")
)

// Defaults applied before file and environment lookup.
const (
	DefaultListenAddr      = ":8080"
	DefaultUpstreamBaseURL = "http://localhost:11434"
	DefaultModel           = "qwen2.5:32b-instruct"
	DefaultUpstreamTimeout = 120 * time.Second
	DefaultSessionMaxAge   = 30 * 24 * time.Hour
	DefaultCleanupInterval = time.Hour
	DefaultRateBurst       = 60
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "prefer"
)

// Config holds all runtime configuration.
type Config struct {
	// Server.
	ListenAddr  string        `mapstructure:"listen_addr"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
	RateBurst   int           `mapstructure:"rate_burst"`
	TrustProxy  bool          `mapstructure:"trust_proxy"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	Debug       bool          `mapstructure:"debug"`

	// Upstream inference service.
	UpstreamBaseURL string        `mapstructure:"upstream_base_url"`
	Model           string        `mapstructure:"model"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`

	// Tenant databases (one PostgreSQL server, database per tenant).
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// Session retention.
	SessionMaxAge   time.Duration `mapstructure:"session_max_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Load reads configuration from defaults, an optional config file and the
// environment. An empty path means only defaults and environment apply when no
// file exists at the standard location.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("rate_burst", DefaultRateBurst)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("debug", false)
	v.SetDefault("upstream_base_url", DefaultUpstreamBaseURL)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("upstream_timeout", DefaultUpstreamTimeout)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", DefaultPostgresPort)
	v.SetDefault("postgres_user", "sellerscope")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_sslmode", DefaultPostgresSSLMode)
	v.SetDefault("session_max_age", DefaultSessionMaxAge)
	v.SetDefault("cleanup_interval", DefaultCleanupInterval)

	v.SetEnvPrefix("SELLERSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.sellerscope")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidUpstreamURL, c.UpstreamBaseURL)
	}

	if strings.TrimSpace(c.Model) == "" {
		return ErrMissingModel
	}

	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if len(c.JWTSecret) < 32 {
		return ErrWeakJWTSecret
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.SessionMaxAge <= 0 {
		return ErrInvalidSessionMaxAge
	}

	return nil
}

// TenantDSN returns the pgx DSN for one tenant database. The database name is
// supplied per request from the authenticated caller's claims.
func (c *Config) TenantDSN(database string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresUser,
		quoteDSNValue(c.PostgresPassword),
		quoteDSNValue(database),
		c.PostgresSSLMode,
	)
}

// quoteDSNValue quotes a value for the key=value DSN format so spaces and
// special characters survive parsing.
func quoteDSNValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
