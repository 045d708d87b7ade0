package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ValueSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL      string `yaml:"base_url" validate:"required,url"`
		APIKey       string `yaml:"api_key" validate:"required"`
		RateLimit    int    `yaml:"rate_limit" validate:"gte=1"`
		Timeout      string `yaml:"timeout"`
		MaxRetries   int    `yaml:"max_retries" validate:"gte=0,lte=10"`
		HistoryYears int    `yaml:"history_years" validate:"gte=0,lte=5"`
	} `yaml:"data_source"`
	Valuation struct {
		GrowthRate    float64 `yaml:"growth_rate"`
		DiscountRate  float64 `yaml:"discount_rate" validate:"gt=-100"`
		IndustryPE    float64 `yaml:"industry_pe" validate:"gt=0"`
		VerdictPolicy string  `yaml:"verdict_policy" validate:"oneof=averaged conjunctive"`
	} `yaml:"valuation"`
	Watchlist struct {
		StateFile string   `yaml:"state_file" validate:"required"`
		Symbols   []string `yaml:"symbols"`
	} `yaml:"watchlist"`
	Schedule struct {
		WatchlistCron string `yaml:"watchlist_cron" validate:"required"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
		CacheTTL   string `yaml:"cache_ttl"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level" validate:"oneof=debug info warn error"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Numeric defaults are seeded before parsing so an explicit zero in the
	// file reaches Validate instead of being replaced.
	cfg.Valuation.GrowthRate = 10
	cfg.Valuation.DiscountRate = 12
	cfg.Valuation.IndustryPE = 20
	cfg.DataSource.RateLimit = 5
	cfg.DataSource.MaxRetries = 3
	cfg.DataSource.HistoryYears = 5

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("FMP_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_WATCHLIST"); v != "" {
		cfg.Schedule.WatchlistCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WATCHLIST_SYMBOLS"); v != "" {
		cfg.Watchlist.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("INDUSTRY_PE"); v != "" {
		pe, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("parse INDUSTRY_PE: %w", err)
		}
		cfg.Valuation.IndustryPE = pe
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://financialmodelingprep.com/api/v3"
	}
	if cfg.DataSource.Timeout == "" {
		cfg.DataSource.Timeout = "30s"
	}
	if cfg.Valuation.VerdictPolicy == "" {
		cfg.Valuation.VerdictPolicy = "averaged"
	}
	if cfg.Watchlist.StateFile == "" {
		cfg.Watchlist.StateFile = "data/watchlist.json"
	}
	if cfg.Schedule.WatchlistCron == "" {
		cfg.Schedule.WatchlistCron = "0 30 16 * * 1-5"
	}
	if cfg.Database.CacheTTL == "" {
		cfg.Database.CacheTTL = "6h"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Valuation.VerdictPolicy = strings.ToLower(cfg.Valuation.VerdictPolicy)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	return cfg, nil
}

// Validate checks field constraints shared by every entry point.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config %s: failed %q constraint (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if _, err := time.ParseDuration(c.DataSource.Timeout); err != nil {
		return fmt.Errorf("data_source.timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Database.CacheTTL); err != nil {
		return fmt.Errorf("database.cache_ttl: %w", err)
	}
	return nil
}

// ValidateBot additionally requires the Telegram credentials.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Assumptions returns the default valuation assumptions.
func (c *Config) Assumptions() model.Assumptions {
	return model.Assumptions{
		GrowthRatePercent:   c.Valuation.GrowthRate,
		DiscountRatePercent: c.Valuation.DiscountRate,
		IndustryPE:          c.Valuation.IndustryPE,
	}
}

// RequestTimeout returns the parsed data source timeout, 30s if unparsable.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.DataSource.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// CacheTTL returns the parsed snapshot cache TTL, 6h if unparsable.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Database.CacheTTL)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
