package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"ValueSentinel/internal/collector"
	"ValueSentinel/internal/config"
	"ValueSentinel/internal/logging"
	"ValueSentinel/internal/notifier"
	"ValueSentinel/internal/scheduler"
	"ValueSentinel/internal/store"
	"ValueSentinel/internal/strategy"
	"ValueSentinel/internal/watchlist"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.New("info").Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Logging.Level)
	logger.Info().Str("config", cfgPath).Msg("ValueSentinel starting...")

	if err := cfg.ValidateBot(); err != nil {
		logger.Fatal().Err(err).Msg("config validation")
	}
	policy, err := strategy.ParsePolicy(cfg.Valuation.VerdictPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("verdict policy")
	}

	// Init fetcher
	fetcher := collector.NewFMPFetcher(cfg.DataSource.APIKey,
		collector.WithBaseURL(cfg.DataSource.BaseURL),
		collector.WithRateLimit(cfg.DataSource.RateLimit),
		collector.WithTimeout(cfg.RequestTimeout()),
		collector.WithMaxRetries(cfg.DataSource.MaxRetries),
		collector.WithProxy(cfg.Proxy),
		collector.WithLogger(logger.WithField("component", "fmp")),
	)
	logger.Info().Str("source", fetcher.Name()).Msg("data source ready")

	// Init snapshot store
	var st store.SnapshotStore = store.NewNoopStore()
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			logger.Warn().Err(err).Msg("create sqlite dir")
		}
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite store failed, using noop")
		} else {
			st = ss
		}
	}
	defer st.Close()

	col := collector.NewCollector(fetcher, st, cfg.CacheTTL(), cfg.DataSource.HistoryYears, logger.WithField("component", "collector"))

	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile, cfg.Watchlist.Symbols)
	if err != nil {
		logger.Fatal().Err(err).Msg("init watchlist")
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.WithField("component", "telegram"))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, wl, tn, cfg.Assumptions(), policy, logger.WithField("component", "scheduler"))
	if err := sched.RegisterAll(cfg.Schedule.WatchlistCron); err != nil {
		logger.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info().Msg("Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info().Msg("RUN_ON_START enabled, valuing watchlist now")
		go sched.RunWatchlistNow()
	}

	logger.Info().Str("cron", cfg.Schedule.WatchlistCron).Int("watched", len(wl.List())).
		Msg("ValueSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping...")
	cancel()
}
