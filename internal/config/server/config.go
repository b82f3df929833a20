// Package server provides configuration for the schedule daemon's HTTP surface.
package server

import (
	"fmt"
	"time"
)

// Default configuration values
const (
	DefaultAddress      = ":8080"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// Config represents the health/status server configuration.
type Config struct {
	// Address is the listen address, e.g. ":8080".
	Address string `yaml:"address" mapstructure:"address"`
	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	// IdleTimeout is the maximum idle time between requests.
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// New returns a server configuration populated with defaults.
func New() *Config {
	return &Config{
		Address:      DefaultAddress,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("server address is required")
	}
	return nil
}
