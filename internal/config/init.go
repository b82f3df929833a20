package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonesrussell/flightwatch/internal/config/elasticsearch"
	"github.com/jonesrussell/flightwatch/internal/config/scraper"
	"github.com/jonesrussell/flightwatch/internal/config/seenset"
	"github.com/jonesrussell/flightwatch/internal/config/server"
)

// InitializeViper initializes Viper from environment variables and config
// files. This must be called before Load().
func InitializeViper(cfgFile string) error {
	loadEnvFile()
	setupViper(cfgFile)
	setDefaults()
	readConfigFile()

	if err := bindEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}
	return nil
}

// loadEnvFile loads .env (ignores error if the file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures Viper for environment and config file reading.
func setupViper(cfgFile string) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/flightwatch")
}

// readConfigFile reads the config file (ignores error if it doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// setDefaults registers defaults so partial config files still resolve.
func setDefaults() {
	viper.SetDefault("scraper.user_agent", scraper.DefaultUserAgent)
	viper.SetDefault("scraper.request_timeout", scraper.DefaultRequestTimeout)
	viper.SetDefault("scraper.run_timeout", scraper.DefaultRunTimeout)
	viper.SetDefault("scraper.max_retries", scraper.DefaultMaxRetries)
	viper.SetDefault("scraper.retry_delay", scraper.DefaultRetryDelay)
	viper.SetDefault("scraper.max_body_size", scraper.DefaultMaxBodySize)
	viper.SetDefault("scraper.timezone", scraper.DefaultTimezone)
	viper.SetDefault("scraper.selectors.table_today", scraper.DefaultTableToday)
	viper.SetDefault("scraper.selectors.table_yesterday", scraper.DefaultTableYesterday)
	viper.SetDefault("scraper.selectors.row", scraper.DefaultRowSelector)
	viper.SetDefault("scraper.selectors.gate", scraper.DefaultGateSelector)
	viper.SetDefault("scraper.selectors.bubble", scraper.DefaultBubbleSelector)

	viper.SetDefault("elasticsearch.addresses", elasticsearch.ParseAddressesFromString(elasticsearch.DefaultAddresses))
	viper.SetDefault("elasticsearch.index_name", elasticsearch.DefaultIndexName)

	viper.SetDefault("seenset.backend", string(seenset.DefaultBackend))
	viper.SetDefault("seenset.redis.address", seenset.DefaultRedisAddress)
	viper.SetDefault("seenset.redis.key", seenset.DefaultRedisKey)
	viper.SetDefault("seenset.postgres.port", seenset.DefaultPostgresPort)
	viper.SetDefault("seenset.postgres.sslmode", seenset.DefaultSSLMode)

	viper.SetDefault("server.address", server.DefaultAddress)
	viper.SetDefault("server.read_timeout", server.DefaultReadTimeout)
	viper.SetDefault("server.write_timeout", server.DefaultWriteTimeout)
	viper.SetDefault("server.idle_timeout", server.DefaultIdleTimeout)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.encoding", "console")

	viper.SetDefault("schedule.cron", DefaultCronSpec)
}

// bindEnvironmentVariables binds environment variables to config keys.
// Bindings cover the values that differ between deployments.
func bindEnvironmentVariables() error {
	bindings := map[string]string{
		"scraper.board_url":         "SCRAPER_BOARD_URL",
		"scraper.snapshot_dir":      "SCRAPER_SNAPSHOT_DIR",
		"elasticsearch.addresses":   "ELASTICSEARCH_ADDRESSES",
		"elasticsearch.api_key":     "ELASTICSEARCH_API_KEY",
		"elasticsearch.username":    "ELASTICSEARCH_USERNAME",
		"elasticsearch.password":    "ELASTICSEARCH_PASSWORD",
		"elasticsearch.index_name":  "ELASTICSEARCH_INDEX_NAME",
		"seenset.backend":           "SEENSET_BACKEND",
		"seenset.redis.address":     "SEENSET_REDIS_ADDRESS",
		"seenset.redis.password":    "SEENSET_REDIS_PASSWORD",
		"seenset.postgres.host":     "SEENSET_POSTGRES_HOST",
		"seenset.postgres.user":     "SEENSET_POSTGRES_USER",
		"seenset.postgres.password": "SEENSET_POSTGRES_PASSWORD",
		"seenset.postgres.dbname":   "SEENSET_POSTGRES_DBNAME",
		"server.address":            "SERVER_ADDRESS",
		"logging.level":             "LOG_LEVEL",
		"schedule.cron":             "SCHEDULE_CRON",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}
