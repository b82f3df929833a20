// Package scraper provides configuration for the flight-board scraping
// pipeline: target URL, selectors, timeouts and retry bounds.
package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Default configuration values
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultRunTimeout     = 5 * time.Minute
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 1 * time.Second
	DefaultMaxRetryDelay  = 30 * time.Second
	DefaultMaxBodySize    = 10 * 1024 * 1024 // 10MB
	DefaultUserAgent      = "flightwatch/1.0"
	// DefaultTimezone is the board's local timezone. Board times are
	// published wall-clock local and converted to UTC during parsing.
	DefaultTimezone = "America/Vancouver"
)

// Default selector values matching the YYJ flight-board markup.
const (
	DefaultTableToday     = "table#flightsToday"
	DefaultTableYesterday = "table#flightsYesterday"
	DefaultRowSelector    = "tr.arrival, tr.departure"
	DefaultGateSelector   = "td.ft-gate"
	DefaultBubbleSelector = "div.bubble"
)

// Selectors describes where flight data lives in the board markup.
// Page-specific by nature, so it is configuration rather than code.
type Selectors struct {
	// TableToday matches the current-day flight table. Its absence is
	// a structural parse failure.
	TableToday string `yaml:"table_today" mapstructure:"table_today"`
	// TableYesterday matches the previous-day table carrying delayed
	// flights. Optional; absence only disables delay updates.
	TableYesterday string `yaml:"table_yesterday" mapstructure:"table_yesterday"`
	// Row matches flight rows within a table.
	Row string `yaml:"row" mapstructure:"row"`
	// Gate matches the gate cell within a row.
	Gate string `yaml:"gate" mapstructure:"gate"`
	// Bubble matches the delay bubble carrying the actual time.
	Bubble string `yaml:"bubble" mapstructure:"bubble"`
}

// Config represents the scraper configuration.
type Config struct {
	// BoardURL is the flight-board page to fetch.
	BoardURL string `yaml:"board_url" mapstructure:"board_url"`
	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	// RunTimeout bounds one whole pipeline invocation.
	RunTimeout time.Duration `yaml:"run_timeout" mapstructure:"run_timeout"`
	// MaxRetries is the retry bound for transient fetch and sink failures.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// RetryDelay is the initial backoff delay between retries.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	// MaxBodySize caps the fetched response body.
	MaxBodySize int64 `yaml:"max_body_size" mapstructure:"max_body_size"`
	// Timezone is the IANA name of the board's local timezone.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	// SnapshotDir, when set, receives a raw HTML dump per run.
	SnapshotDir string `yaml:"snapshot_dir" mapstructure:"snapshot_dir"`
	// Selectors locate flight data in the page markup.
	Selectors Selectors `yaml:"selectors" mapstructure:"selectors"`
}

// ErrMissingBoardURL is returned when no board URL is configured.
var ErrMissingBoardURL = errors.New("scraper board_url is required")

// New returns a scraper configuration populated with defaults.
func New() *Config {
	return &Config{
		UserAgent:      DefaultUserAgent,
		RequestTimeout: DefaultRequestTimeout,
		RunTimeout:     DefaultRunTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
		MaxBodySize:    DefaultMaxBodySize,
		Timezone:       DefaultTimezone,
		Selectors: Selectors{
			TableToday:     DefaultTableToday,
			TableYesterday: DefaultTableYesterday,
			Row:            DefaultRowSelector,
			Gate:           DefaultGateSelector,
			Bubble:         DefaultBubbleSelector,
		},
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.BoardURL == "" {
		return ErrMissingBoardURL
	}
	parsed, err := url.Parse(c.BoardURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid board_url %q", c.BoardURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RunTimeout < c.RequestTimeout {
		return fmt.Errorf("run_timeout %s must not be shorter than request_timeout %s",
			c.RunTimeout, c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.Selectors.TableToday == "" {
		return errors.New("selectors.table_today is required")
	}
	if c.Selectors.Row == "" {
		return errors.New("selectors.row is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Validate must have passed.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
