package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "data/company_tickers.json", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/var/lib/data/companyfacts", cfg.Data.FactsDir)
	assert.Equal(t, 10, cfg.Data.LoadTimeoutSecs)
	assert.Equal(t, "https://www.sec.gov/files/company_tickers.json", cfg.SEC.TickersURL)
	assert.Equal(t, "https://data.sec.gov/api/xbrl/companyfacts", cfg.SEC.FactsURL)
	assert.NotEmpty(t, cfg.SEC.UserAgent)
	assert.Equal(t, 5, cfg.SEC.BreakerThreshold)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.Equal(t, 30, cfg.SEC.BreakerCooldownSecs)
	assert.Equal(t, 3, cfg.Trend.ShortTermWindow)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Empty(t, cfg.Metrics.ListsFile)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  path: /tmp/factsboard.db
log:
  level: debug
  format: console
server:
  port: 9090
trend:
  short_term_window: 5
data:
  facts_dir: /srv/companyfacts
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/factsboard.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Trend.ShortTermWindow)
	assert.Equal(t, "/srv/companyfacts", cfg.Data.FactsDir)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Data.LoadTimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
trend:
  short_term_window: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("FACTSBOARD_LOG_LEVEL", "warn")
	t.Setenv("FACTSBOARD_TREND_SHORT_TERM_WINDOW", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Trend.ShortTermWindow)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FACTSBOARD_SERVER_PORT=3000\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("FACTSBOARD_SERVER_PORT") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdirTemp(t)
	t.Setenv("FACTSBOARD_STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store.driver")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Store.Driver = DriverFile
	cfg.Store.Path = "tickers.json"
	cfg.Trend.ShortTermWindow = 3
	cfg.Batch.Concurrency = 4
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "sqlite without path", mutate: func(c *Config) {
			c.Store.Driver = DriverSQLite
			c.Store.Path = ""
		}, wantErr: "store.path is required"},
		{name: "postgres without url", mutate: func(c *Config) { c.Store.Driver = DriverPostgres }, wantErr: "store.database_url is required"},
		{name: "postgres with url", mutate: func(c *Config) {
			c.Store.Driver = DriverPostgres
			c.Store.DatabaseURL = "postgres://localhost/factsboard"
		}},
		{name: "window too small", mutate: func(c *Config) { c.Trend.ShortTermWindow = 0 }, wantErr: "short_term_window"},
		{name: "window too large", mutate: func(c *Config) { c.Trend.ShortTermWindow = 7 }, wantErr: "short_term_window"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Batch.Concurrency = 0 }, wantErr: "batch.concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
