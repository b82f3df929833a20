// Package config provides configuration management for the flightwatch
// application. It handles loading, validation, and access to configuration
// values from YAML files and environment variables via Viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/flightwatch/internal/config/elasticsearch"
	"github.com/jonesrussell/flightwatch/internal/config/scraper"
	"github.com/jonesrussell/flightwatch/internal/config/seenset"
	"github.com/jonesrussell/flightwatch/internal/config/server"
	"github.com/jonesrussell/flightwatch/internal/logger"
)

// DefaultCronSpec runs the scraper every 30 minutes in daemon mode.
const DefaultCronSpec = "@every 30m"

// Interface defines the interface for configuration management.
type Interface interface {
	// GetScraperConfig returns the scraper configuration.
	GetScraperConfig() *scraper.Config
	// GetElasticsearchConfig returns the Elasticsearch configuration.
	GetElasticsearchConfig() *elasticsearch.Config
	// GetSeenSetConfig returns the seen-set store configuration.
	GetSeenSetConfig() *seenset.Config
	// GetServerConfig returns the health server configuration.
	GetServerConfig() *server.Config
	// GetLoggerConfig returns the logger configuration.
	GetLoggerConfig() *logger.Config
	// GetCronSpec returns the cron spec used in daemon mode.
	GetCronSpec() string
	// Validate validates the configuration.
	Validate() error
}

// Ensure Config implements Interface
var _ Interface = (*Config)(nil)

// ScheduleConfig holds scheduling settings for daemon mode.
type ScheduleConfig struct {
	// Cron is a robfig/cron spec, e.g. "@every 30m" or "*/30 * * * *".
	Cron string `yaml:"cron" mapstructure:"cron"`
}

// Config represents the application configuration.
type Config struct {
	// Scraper holds the fetch/parse pipeline configuration.
	Scraper *scraper.Config `yaml:"scraper" mapstructure:"scraper"`
	// Elasticsearch holds the flight sink configuration.
	Elasticsearch *elasticsearch.Config `yaml:"elasticsearch" mapstructure:"elasticsearch"`
	// SeenSet holds the seen-set store configuration.
	SeenSet *seenset.Config `yaml:"seenset" mapstructure:"seenset"`
	// Server holds the schedule daemon's health server configuration.
	Server *server.Config `yaml:"server" mapstructure:"server"`
	// Logging holds the logger configuration.
	Logging *logger.Config `yaml:"logging" mapstructure:"logging"`
	// Schedule holds the daemon scheduling configuration.
	Schedule *ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
}

// GetScraperConfig returns the scraper configuration.
func (c *Config) GetScraperConfig() *scraper.Config { return c.Scraper }

// GetElasticsearchConfig returns the Elasticsearch configuration.
func (c *Config) GetElasticsearchConfig() *elasticsearch.Config { return c.Elasticsearch }

// GetSeenSetConfig returns the seen-set store configuration.
func (c *Config) GetSeenSetConfig() *seenset.Config { return c.SeenSet }

// GetServerConfig returns the health server configuration.
func (c *Config) GetServerConfig() *server.Config { return c.Server }

// GetLoggerConfig returns the logger configuration.
func (c *Config) GetLoggerConfig() *logger.Config { return c.Logging }

// GetCronSpec returns the cron spec used in daemon mode.
func (c *Config) GetCronSpec() string {
	if c.Schedule == nil || c.Schedule.Cron == "" {
		return DefaultCronSpec
	}
	return c.Schedule.Cron
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Scraper.Validate(); err != nil {
		return fmt.Errorf("scraper: %w", err)
	}
	if err := c.Elasticsearch.Validate(); err != nil {
		return fmt.Errorf("elasticsearch: %w", err)
	}
	if err := c.SeenSet.Validate(); err != nil {
		return fmt.Errorf("seenset: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Load builds the configuration from Viper's merged file and environment
// state. InitializeViper must have been called first.
func Load() (*Config, error) {
	cfg := &Config{
		Scraper:       scraper.New(),
		Elasticsearch: elasticsearch.New(),
		SeenSet:       seenset.New(),
		Server:        server.New(),
		Logging:       &logger.Config{},
		Schedule:      &ScheduleConfig{Cron: DefaultCronSpec},
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
