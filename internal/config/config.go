// Package config provides centralized configuration for the viewer. It
// loads settings from environment variables with sensible defaults and
// validates everything on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	NHTSA   NHTSAConfig
	Session SessionConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response.
	// Generous because PDF bytes are proxied through handlers (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// NHTSAConfig holds settings for the upstream vPIC API client.
type NHTSAConfig struct {
	// BaseURL is the vPIC API root (default: production endpoint)
	BaseURL string `env:"NHTSA_BASE_URL" default:"https://vpic.nhtsa.dot.gov/api/vehicles"`

	// RecordType is the GetParts record type to browse (default: 565)
	RecordType int `env:"NHTSA_RECORD_TYPE" default:"565"`

	// MaxPages caps pagination so a misbehaving endpoint cannot loop
	// forever; 0 disables the cap (default: 500)
	MaxPages int `env:"NHTSA_MAX_PAGES" default:"500"`

	// RequestTimeout is the per-request timeout (default: 30s)
	RequestTimeout time.Duration `env:"NHTSA_REQUEST_TIMEOUT" default:"30s"`

	// RequestsPerSecond limits outbound request rate (default: 4)
	RequestsPerSecond float64 `env:"NHTSA_REQUESTS_PER_SECOND" default:"4"`

	// Burst is the outbound limiter burst size (default: 2)
	Burst int `env:"NHTSA_BURST" default:"2"`

	// UserAgent identifies the viewer to the API
	UserAgent string `env:"NHTSA_USER_AGENT" default:"Vin-Decode/1.0 (+local)"`
}

// SessionConfig holds viewer session settings.
type SessionConfig struct {
	// TTL is how long an idle session is kept; 0 disables expiry (default: 30m)
	TTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// SweepInterval is how often expired sessions are removed (default: 5m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"5m"`

	// CookieName is the session cookie name
	CookieName string `env:"SESSION_COOKIE_NAME" default:"vdv_session"`
}

// RateLimitConfig holds inbound rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether per-IP rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP limit (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the loaded configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if _, err := url.ParseRequestURI(c.NHTSA.BaseURL); err != nil {
		return fmt.Errorf("NHTSA base URL: %w", err)
	}
	if c.NHTSA.RecordType <= 0 {
		return fmt.Errorf("NHTSA record type must be positive, got %d", c.NHTSA.RecordType)
	}
	if c.NHTSA.MaxPages < 0 {
		return fmt.Errorf("NHTSA max pages must not be negative, got %d", c.NHTSA.MaxPages)
	}
	if c.NHTSA.RequestsPerSecond <= 0 {
		return fmt.Errorf("NHTSA requests per second must be positive, got %v", c.NHTSA.RequestsPerSecond)
	}
	if c.Session.TTL > 0 && c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive when TTL is set")
	}
	if c.Rate.Enabled && c.Rate.RequestsPerMinute < 1 {
		return fmt.Errorf("rate limit requests per minute must be positive, got %d", c.Rate.RequestsPerMinute)
	}
	return nil
}
