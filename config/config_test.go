package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD_JPY", cfg.Agent.Instrument)
	assert.Equal(t, 10000.0, cfg.Agent.Units)
	assert.Equal(t, "test", cfg.Agent.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"missing instrument", func(c *Config) { c.Agent.Instrument = "" }, "agent.instrument is required"},
		{"zero units", func(c *Config) { c.Agent.Units = 0 }, "agent.units must be positive"},
		{"unknown mode", func(c *Config) { c.Agent.Mode = "predict" }, "agent.mode must be one of [collect test trade]"},
		{"unknown entry", func(c *Config) { c.Agent.Entry = "random" }, "agent.entry must be one of"},
		{"empty entry allowed", func(c *Config) { c.Agent.Entry = "" }, ""},
		{"bad timezone", func(c *Config) { c.Agent.Timezone = "Mars/Olympus" }, "agent.timezone"},
		{"bad lookback", func(c *Config) { c.Agent.Lookback = "sixty days" }, "agent.lookback"},
		{"bad predict timeout", func(c *Config) { c.Predict.Timeout = "-1s" }, "predict.timeout"},
		{"unknown broker", func(c *Config) { c.Broker.Type = "ib" }, "broker.type must be one of"},
		{"paper broker without balance", func(c *Config) { c.Broker.Balance = 0 }, "broker.balance must be positive"},
		{"trade mode without url", func(c *Config) {
			c.Agent.Mode = "trade"
			c.Predict.URL = ""
		}, "predict.url required"},
		{"oanda without account", func(c *Config) { c.Broker.Type = "oanda" }, "oanda.account_id required"},
		{"oanda without token", func(c *Config) {
			c.Feed.Type = "oanda"
			c.OANDA.AccountID = "001-001-1234567-001"
		}, "OANDA_TOKEN must be set"},
		{"oanda complete", func(c *Config) {
			c.Broker.Type = "oanda"
			c.Bars.Type = "oanda"
			c.OANDA.AccountID = "001-001-1234567-001"
			c.OANDA.Token = "secret"
		}, ""},
		{"csv feed without file", func(c *Config) { c.Feed.File = "" }, "feed.file required"},
		{"websocket feed without url", func(c *Config) { c.Feed.Type = "websocket" }, "feed.url required"},
		{"csv bars without file", func(c *Config) { c.Bars.File = "" }, "bars.file required"},
		{"no bars", func(c *Config) { c.Bars = BarsConfig{Type: "none"} }, ""},
		{"unknown journal", func(c *Config) { c.Journal.Type = "mongo" }, "journal.type must be one of"},
		{"sqlite without path", func(c *Config) { c.Journal.DBPath = "" }, "journal db_path required"},
		{"csv journal without file", func(c *Config) {
			c.Journal.Type = "csv"
			c.Journal.TradesFile = ""
		}, "journal trades_file required"},
		{"redis journal without addr", func(c *Config) { c.Journal.Type = "redis" }, "journal redis_addr required"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.OANDA.Token = "must-not-be-saved"
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "must-not-be-saved")

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Agent, loaded.Agent)
			assert.Equal(t, cfg.Broker, loaded.Broker)
			assert.Equal(t, cfg.Journal, loaded.Journal)
			assert.Equal(t, cfg.Predict, loaded.Predict)
		})
	}
}

func TestLoadAppliesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	cfg := Default()
	cfg.Broker.Type = "oanda"
	require.NoError(t, cfg.SaveToFile(path))

	_, err := LoadFromFile(path)
	require.Error(t, err)

	t.Setenv("OANDA_TOKEN", "secret")
	t.Setenv("OANDA_ACCOUNT_ID", "001-001-1234567-001")

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.OANDA.Token)
	assert.Equal(t, "001-001-1234567-001", loaded.OANDA.AccountID)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TRADER_TEST_ENV_VALUE=from-file\n"), 0o600))

	t.Setenv("TRADER_TEST_ENV_VALUE", "")
	require.NoError(t, os.Unsetenv("TRADER_TEST_ENV_VALUE"))

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), envPath))
	assert.Equal(t, "from-file", os.Getenv("TRADER_TEST_ENV_VALUE"))

	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent: [unterminated"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestDurations(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60*24*time.Hour, cfg.LookbackDuration())
	assert.Equal(t, 10*time.Second, cfg.PredictTimeout())

	cfg.Agent.Lookback = ""
	cfg.Predict.Timeout = ""
	assert.Equal(t, time.Duration(0), cfg.LookbackDuration())
	assert.Equal(t, time.Duration(0), cfg.PredictTimeout())
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Agent.Timezone = "Asia/Tokyo"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}
