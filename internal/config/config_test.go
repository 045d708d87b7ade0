package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://financialmodelingprep.com/api/v3", cfg.DataSource.BaseURL)
	assert.Equal(t, model.Assumptions{GrowthRatePercent: 10, DiscountRatePercent: 12, IndustryPE: 20}, cfg.Assumptions())
	assert.Equal(t, "averaged", cfg.Valuation.VerdictPolicy)
	assert.Equal(t, 5, cfg.DataSource.HistoryYears)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 6*time.Hour, cfg.CacheTTL())
	assert.Equal(t, "data/watchlist.json", cfg.Watchlist.StateFile)
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data_source:
  api_key: from-file
  rate_limit: 2
  timeout: 5s
valuation:
  growth_rate: 0
  discount_rate: 9.5
  industry_pe: 25
  verdict_policy: Conjunctive
watchlist:
  symbols: [TCS.NS, INFY.NS]
database:
  cache_ttl: 1h
`)
	t.Setenv("FMP_API_KEY", "from-env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, 2, cfg.DataSource.RateLimit)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 0.0, cfg.Valuation.GrowthRate)
	assert.Equal(t, 9.5, cfg.Valuation.DiscountRate)
	assert.Equal(t, 25.0, cfg.Valuation.IndustryPE)
	assert.Equal(t, "conjunctive", cfg.Valuation.VerdictPolicy)
	assert.Equal(t, []string{"TCS.NS", "INFY.NS"}, cfg.Watchlist.Symbols)
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.ValidateBot())
}

func TestLoad_WatchlistEnv(t *testing.T) {
	t.Setenv("WATCHLIST_SYMBOLS", " reliance.ns, ,tcs.ns ")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"RELIANCE.NS", "TCS.NS"}, cfg.Watchlist.Symbols)
}

func TestLoad_ExplicitZeroIsKept(t *testing.T) {
	path := writeConfig(t, `
data_source:
  api_key: key
  max_retries: 0
  history_years: 0
valuation:
  industry_pe: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.DataSource.MaxRetries)
	assert.Equal(t, 0, cfg.DataSource.HistoryYears)
	assert.Equal(t, 0.0, cfg.Valuation.IndustryPE)
	assert.Equal(t, 5, cfg.DataSource.RateLimit)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IndustryPE")
}

func TestLoad_IndustryPEEnv(t *testing.T) {
	absent := filepath.Join(t.TempDir(), "absent.yaml")

	t.Setenv("INDUSTRY_PE", "0")
	cfg, err := Load(absent)
	require.NoError(t, err)
	cfg.DataSource.APIKey = "key"
	assert.Equal(t, 0.0, cfg.Valuation.IndustryPE)
	assert.Error(t, cfg.Validate())

	t.Setenv("INDUSTRY_PE", "twenty")
	_, err = Load(absent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INDUSTRY_PE")

	t.Setenv("INDUSTRY_PE", " 32.5 ")
	cfg, err = Load(absent)
	require.NoError(t, err)
	assert.Equal(t, 32.5, cfg.Valuation.IndustryPE)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "valuation: [not, a, map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		cfg.DataSource.APIKey = "key"
		return cfg
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.DataSource.APIKey = "" }},
		{"bad base url", func(c *Config) { c.DataSource.BaseURL = "not a url" }},
		{"zero industry pe", func(c *Config) { c.Valuation.IndustryPE = -1 }},
		{"discount -100", func(c *Config) { c.Valuation.DiscountRate = -100 }},
		{"unknown policy", func(c *Config) { c.Valuation.VerdictPolicy = "majority" }},
		{"history too long", func(c *Config) { c.DataSource.HistoryYears = 9 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad timeout", func(c *Config) { c.DataSource.Timeout = "soon" }},
		{"bad cache ttl", func(c *Config) { c.Database.CacheTTL = "later" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateBot_RequiresTelegram(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	cfg.DataSource.APIKey = "key"
	require.NoError(t, cfg.Validate())
	assert.ErrorContains(t, cfg.ValidateBot(), "telegram.bot_token")

	cfg.Telegram.BotToken = "t"
	assert.ErrorContains(t, cfg.ValidateBot(), "telegram.chat_id")
}
