// Package config provides the immutable application configuration value.
// Configuration is constructed once at startup and handed to the dispatcher
// and serializer; nothing mutates it afterwards.
package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration structure.
type Config struct {
	Server ServerConfig `yaml:"server" env:"SERVER"`
	Logger LoggerConfig `yaml:"logger" env:"LOGGER"`
	API    APIConfig    `yaml:"api" env:"API"`
}

// ServerConfig holds HTTP server configuration for the transport adapter.
type ServerConfig struct {
	Address      string        `yaml:"address" env:"ADDRESS" default:":8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" default:"120s"`
	Recovery     bool          `yaml:"recovery" env:"RECOVERY" default:"true"`
	RateLimit    int           `yaml:"rate_limit" env:"RATE_LIMIT" default:"0"`
	RateBurst    int           `yaml:"rate_burst" env:"RATE_BURST" default:"0"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level            string   `yaml:"level" env:"LEVEL" default:"info"`
	Encoding         string   `yaml:"encoding" env:"ENCODING" default:"json"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS" default:"stdout"`
	ErrorOutputPaths []string `yaml:"error_output_paths" env:"ERROR_OUTPUT_PATHS" default:"stderr"`
}

// APIConfig tunes the wire behavior of the dispatcher and serializer.
type APIConfig struct {
	// ErrorKey is the single key of the JSON error envelope.
	ErrorKey string `yaml:"error_key" env:"ERROR_KEY" default:"error"`

	// PlainResultKey, when set, wraps non-object handler results under
	// this key. Empty disables wrapping.
	PlainResultKey string `yaml:"plain_result_key" env:"PLAIN_RESULT_KEY"`

	// ServerErrorMessage is the fixed message sent for internal failures.
	// The real cause is logged, never exposed.
	ServerErrorMessage string `yaml:"server_error_message" env:"SERVER_ERROR_MESSAGE" default:"An internal error occurred"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
			Recovery:     true,
		},
		Logger: LoggerConfig{
			Level:            "info",
			Encoding:         "json",
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		},
		API: APIConfig{
			ErrorKey:           "error",
			ServerErrorMessage: "An internal error occurred",
		},
	}
}

// Validate checks the configuration for impossible values.
func (c *Config) Validate() error {
	if c.API.ErrorKey == "" {
		return fmt.Errorf("api error key must not be empty")
	}
	if c.API.ServerErrorMessage == "" {
		return fmt.Errorf("server error message must not be empty")
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	return nil
}

// Loader interface for configuration loading.
type Loader interface {
	Load(cfg *Config) error
}
