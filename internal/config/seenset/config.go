// Package seenset provides configuration for the seen-set store backends.
package seenset

import (
	"errors"
	"fmt"
)

// Backend selects the seen-set store implementation.
type Backend string

const (
	// BackendRedis keeps seen flight IDs in a Redis set.
	BackendRedis Backend = "redis"
	// BackendPostgres keeps seen flight IDs in a Postgres table.
	BackendPostgres Backend = "postgres"
)

// Default configuration values
const (
	DefaultBackend      = BackendRedis
	DefaultRedisAddress = "localhost:6379"
	DefaultRedisKey     = "flightwatch:seen"
	DefaultPostgresPort = "5432"
	DefaultSSLMode      = "disable"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address" mapstructure:"address"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	// Key is the Redis set holding seen flight IDs.
	Key string `yaml:"key" mapstructure:"key"`
}

// PostgresConfig holds Postgres connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	SSLMode  string `yaml:"sslmode" mapstructure:"sslmode"`
}

// DSN builds the lib/pq connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Config represents the seen-set store configuration.
type Config struct {
	// Backend selects redis or postgres.
	Backend  Backend        `yaml:"backend" mapstructure:"backend"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// New returns a seen-set configuration populated with defaults.
func New() *Config {
	return &Config{
		Backend: DefaultBackend,
		Redis: RedisConfig{
			Address: DefaultRedisAddress,
			Key:     DefaultRedisKey,
		},
		Postgres: PostgresConfig{
			Port:    DefaultPostgresPort,
			SSLMode: DefaultSSLMode,
		},
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRedis:
		if c.Redis.Address == "" {
			return errors.New("seenset redis address is required")
		}
		if c.Redis.Key == "" {
			return errors.New("seenset redis key is required")
		}
	case BackendPostgres:
		if c.Postgres.Host == "" {
			return errors.New("seenset postgres host is required")
		}
		if c.Postgres.DBName == "" {
			return errors.New("seenset postgres dbname is required")
		}
	default:
		return fmt.Errorf("unknown seenset backend %q", c.Backend)
	}
	return nil
}
