// Package config provides configuration for the gridcalc server, loaded
// from environment variables with defaults and validated on startup so
// misconfiguration fails fast.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	// Host is the interface to bind to (GRIDCALC_HOST, default 0.0.0.0)
	Host string

	// Port is the port to listen on (GRIDCALC_PORT, default 8080)
	Port int

	// ReadTimeout bounds reading a request body (GRIDCALC_READ_TIMEOUT)
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response (GRIDCALC_WRITE_TIMEOUT)
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (GRIDCALC_SHUTDOWN_TIMEOUT)
	ShutdownTimeout time.Duration

	// RequestTimeout is the per-request middleware timeout
	// (GRIDCALC_REQUEST_TIMEOUT)
	RequestTimeout time.Duration
}

// UploadConfig holds workbook upload settings
type UploadConfig struct {
	// MaxFileSize is the largest accepted workbook in bytes
	// (GRIDCALC_MAX_FILE_SIZE, default 10MB)
	MaxFileSize int64
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	// (GRIDCALC_LOG_LEVEL, default info)
	Level string

	// Format is the log format: text or json (GRIDCALC_LOG_FORMAT)
	Format string
}

// Load reads configuration from environment variables, applying defaults
// for unset values and validating the result.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            envString("GRIDCALC_HOST", "0.0.0.0"),
			Port:            envInt("GRIDCALC_PORT", 8080),
			ReadTimeout:     envDuration("GRIDCALC_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    envDuration("GRIDCALC_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: envDuration("GRIDCALC_SHUTDOWN_TIMEOUT", 30*time.Second),
			RequestTimeout:  envDuration("GRIDCALC_REQUEST_TIMEOUT", 60*time.Second),
		},
		Upload: UploadConfig{
			MaxFileSize: envInt64("GRIDCALC_MAX_FILE_SIZE", 10<<20),
		},
		Logging: LoggingConfig{
			Level:  envString("GRIDCALC_LOG_LEVEL", "info"),
			Format: envString("GRIDCALC_LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at an awkward time
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.Upload.MaxFileSize)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the host:port address to listen on
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
