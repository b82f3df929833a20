// Package elasticsearch provides Elasticsearch configuration management.
package elasticsearch

import (
	"errors"
	"strings"
)

// Default configuration values
const (
	DefaultAddresses = "http://127.0.0.1:9200"
	DefaultIndexName = "flights"
)

// Config represents Elasticsearch connection settings for the flight sink.
type Config struct {
	// Addresses is a list of Elasticsearch node addresses.
	Addresses []string `yaml:"addresses" mapstructure:"addresses"`
	// APIKey is the base64 encoded API key for authentication.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Username is the username for basic authentication.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the password for basic authentication.
	Password string `yaml:"password" mapstructure:"password"`
	// IndexName is the index flights are written to.
	IndexName string `yaml:"index_name" mapstructure:"index_name"`
}

// New returns an Elasticsearch configuration populated with defaults.
func New() *Config {
	return &Config{
		Addresses: ParseAddressesFromString(DefaultAddresses),
		IndexName: DefaultIndexName,
	}
}

// ParseAddressesFromString splits a comma-separated address list.
func ParseAddressesFromString(raw string) []string {
	parts := strings.Split(raw, ",")
	addresses := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}
	return addresses
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if len(c.Addresses) == 0 {
		return errors.New("elasticsearch addresses are required")
	}
	if c.IndexName == "" {
		return errors.New("elasticsearch index_name is required")
	}
	return nil
}
