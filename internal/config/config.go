// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Environments accepted in ENVIRONMENT.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends accepted in SESSION_STORE.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Default planning service locations per environment.
const (
	DevelopmentBackendURL = "http://localhost:8000"
	ProductionBackendURL  = "https://trip-planner-production-61bd.up.railway.app"
)

// Config holds all configuration values for the web server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// Environment selects the deployment profile: development or production.
	// Production marks the session cookie Secure and changes the default BackendURL.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// BackendURL is the base URL of the planning service. When unset it
	// defaults to DevelopmentBackendURL or ProductionBackendURL.
	BackendURL string `env:"BACKEND_URL"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// PlannerTimeout bounds one planning call. 0 disables the timeout.
	PlannerTimeout time.Duration `env:"PLANNER_TIMEOUT" envDefault:"60s"`

	// PlannerMaxResponseBytes caps the planning response body.
	PlannerMaxResponseBytes int64 `env:"PLANNER_MAX_RESPONSE_BYTES" envDefault:"1048576"`

	// PlannerStrictSchema rejects planning responses that lack the itinerary shape.
	PlannerStrictSchema bool `env:"PLANNER_STRICT_SCHEMA" envDefault:"true"`

	// HangOnFailure keeps a failed request loading forever instead of
	// reporting the failure.
	HangOnFailure bool `env:"HANG_ON_FAILURE" envDefault:"false"`

	// SessionStore selects where page sessions live: memory or redis.
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`

	// SessionTTL is how long an idle session is kept.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"trip"`

	// MaxBodyBytes limits incoming request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"65536"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error describing every invalid value.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if cfg.BackendURL == "" {
		cfg.BackendURL = DevelopmentBackendURL
		if cfg.Environment == EnvProduction {
			cfg.BackendURL = ProductionBackendURL
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the server runs with the production profile.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c Config) validate() error {
	var errs []error

	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		errs = append(errs, fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Environment))
	}
	if c.SessionStore != StoreMemory && c.SessionStore != StoreRedis {
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.SessionStore))
	}
	if u, err := url.Parse(c.BackendURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("BACKEND_URL must be an absolute http(s) URL, got %q", c.BackendURL))
	}
	if c.PlannerTimeout < 0 {
		errs = append(errs, errors.New("PLANNER_TIMEOUT must not be negative"))
	}
	if c.PlannerMaxResponseBytes <= 0 {
		errs = append(errs, errors.New("PLANNER_MAX_RESPONSE_BYTES must be positive"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}
	if c.SessionStore == StoreRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when SESSION_STORE=redis"))
	}

	return errors.Join(errs...)
}

// trimAll trims every entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
