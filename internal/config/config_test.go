package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/flightwatch/internal/config"
	"github.com/jonesrussell/flightwatch/internal/config/seenset"
)

const testConfigYAML = `
scraper:
  board_url: https://www.victoriaairport.com/flights
  request_timeout: 10s
  run_timeout: 2m
  max_retries: 5
seenset:
  backend: postgres
  postgres:
    host: db.internal
    user: flightwatch
    dbname: flights
elasticsearch:
  addresses:
    - http://es.internal:9200
  index_name: yyj-flights
schedule:
  cron: "@every 15m"
`

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, testConfigYAML)
	require.NoError(t, config.InitializeViper(path))

	cfg, err := config.Load()
	require.NoError(t, err)

	sc := cfg.GetScraperConfig()
	assert.Equal(t, "https://www.victoriaairport.com/flights", sc.BoardURL)
	assert.Equal(t, 10*time.Second, sc.RequestTimeout)
	assert.Equal(t, 2*time.Minute, sc.RunTimeout)
	assert.Equal(t, 5, sc.MaxRetries)

	// Defaults fill in what the file leaves out.
	assert.Equal(t, "table#flightsToday", sc.Selectors.TableToday)
	assert.Equal(t, "tr.arrival, tr.departure", sc.Selectors.Row)
	assert.Equal(t, "America/Vancouver", sc.Timezone)

	ss := cfg.GetSeenSetConfig()
	assert.Equal(t, seenset.BackendPostgres, ss.Backend)
	assert.Equal(t, "db.internal", ss.Postgres.Host)
	assert.Contains(t, ss.Postgres.DSN(), "dbname=flights")

	es := cfg.GetElasticsearchConfig()
	assert.Equal(t, []string{"http://es.internal:9200"}, es.Addresses)
	assert.Equal(t, "yyj-flights", es.IndexName)

	assert.Equal(t, "@every 15m", cfg.GetCronSpec())
}

func TestLoadMissingBoardURL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, "scraper:\n  user_agent: test\n")
	require.NoError(t, config.InitializeViper(path))

	_, err := config.Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "board_url")
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SCRAPER_BOARD_URL", "https://example.com/board")
	t.Setenv("ELASTICSEARCH_INDEX_NAME", "env-flights")

	path := writeConfigFile(t, testConfigYAML)
	require.NoError(t, config.InitializeViper(path))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/board", cfg.GetScraperConfig().BoardURL)
	assert.Equal(t, "env-flights", cfg.GetElasticsearchConfig().IndexName)
}

func TestScraperValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{
			name:    "bad timezone",
			mutate:  func(c *config.Config) { c.Scraper.Timezone = "Mars/Olympus" },
			wantErr: "timezone",
		},
		{
			name:    "run timeout shorter than request timeout",
			mutate:  func(c *config.Config) { c.Scraper.RunTimeout = time.Second },
			wantErr: "run_timeout",
		},
		{
			name:    "unknown seenset backend",
			mutate:  func(c *config.Config) { c.SeenSet.Backend = "etcd" },
			wantErr: "backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			path := writeConfigFile(t, testConfigYAML)
			require.NoError(t, config.InitializeViper(path))

			cfg, err := config.Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
