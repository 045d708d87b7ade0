package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"ValueSentinel/internal/chart"
	"ValueSentinel/internal/collector"
	"ValueSentinel/internal/logging"
	"ValueSentinel/internal/model"
	"ValueSentinel/internal/notifier"
	"ValueSentinel/internal/strategy"
	"ValueSentinel/internal/watchlist"
)

// sendRetries is the number of retries for each outgoing message.
const sendRetries = 3

// Notifier delivers reports to the chat.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhoto(ctx context.Context, png []byte, filename, caption string) error
}

// Scheduler manages the cron task and chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Watchlist *watchlist.Manager
	Notifier  Notifier
	Defaults  model.Assumptions
	Policy    strategy.Policy
	Logger    *logging.Logger
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, wl *watchlist.Manager, n Notifier,
	defaults model.Assumptions, policy strategy.Policy, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Watchlist: wl,
		Notifier:  n,
		Defaults:  defaults,
		Policy:    policy,
		Logger:    logger,
		Ctx:       ctx,
	}
}

// RegisterAll registers the watchlist valuation task.
func (s *Scheduler) RegisterAll(watchlistCron string) error {
	if _, err := s.Cron.AddFunc(watchlistCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

// RunWatchlistNow executes the watchlist task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunWatchlistNow() {
	s.watchlistTask()
}

// watchlistTask values every watched symbol and reports each one on its own.
func (s *Scheduler) watchlistTask() {
	logger := s.Logger.WithField("run_id", uuid.NewString())
	entries := s.Watchlist.List()
	logger.Info().Int("symbols", len(entries)).Msg("running watchlist task")

	failed := 0
	for _, e := range entries {
		if s.Ctx.Err() != nil {
			logger.Warn().Msg("watchlist task cancelled")
			return
		}
		if err := s.valueAndSend(s.Ctx, logger, e.Symbol, e.Effective(s.Defaults)); err != nil {
			failed++
		}
	}
	logger.Info().Int("symbols", len(entries)).Int("failed", failed).Msg("watchlist task done")
}

// valueAndSend collects, evaluates and delivers one report. A diagnostic is
// sent in place of the report when the valuation cannot be produced.
func (s *Scheduler) valueAndSend(ctx context.Context, logger *logging.Logger, symbol string, a model.Assumptions) error {
	report, f, err := s.valuate(ctx, symbol, a)
	if err != nil {
		logger.Error().Err(err).Str("symbol", symbol).Msg("valuation failed")
		s.trySend(ctx, logger, report)
		return err
	}
	s.trySend(ctx, logger, report)
	s.trySendChart(ctx, logger, f)
	return nil
}

// valuate returns the formatted report, or a diagnostic alongside the error.
func (s *Scheduler) valuate(ctx context.Context, symbol string, a model.Assumptions) (string, *model.Fundamentals, error) {
	f, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		return notifier.FormatUnavailable(strings.ToUpper(symbol), err, notifier.StyleHTML), nil, err
	}
	result, err := strategy.EvaluateFundamentals(f, a, s.Policy)
	if err != nil {
		return "❌ " + escapeHTML(err.Error()), nil, fmt.Errorf("evaluate %s: %w", f.Symbol, err)
	}
	s.Logger.Debug().Str("symbol", f.Symbol).Str("verdict", string(result.Verdict)).
		Float64("mos_pe", result.MOSPEPercent).Float64("mos_dcf", result.MOSDCFPercent).Msg("valuation computed")
	return notifier.FormatValuationReport(f, a, result, notifier.StyleHTML), f, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	switch cmd {
	case "/value":
		if len(args) == 0 {
			return "Usage: /value SYMBOL [growth discount pe]"
		}
		a, _, err := parseAssumptions(args[1:], s.Watchlist.AssumptionsFor(args[0], s.Defaults))
		if err == nil {
			err = strategy.ValidateAssumptions(a)
		}
		if err != nil {
			return "❌ " + escapeHTML(err.Error())
		}
		logger := s.Logger.WithField("run_id", uuid.NewString())
		report, f, err := s.valuate(ctx, args[0], a)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", args[0]).Msg("valuation failed")
			return report
		}
		s.trySend(ctx, logger, report)
		s.trySendChart(ctx, logger, f)
		return ""
	case "/watch":
		if len(args) == 0 {
			return "Usage: /watch SYMBOL [growth discount pe]"
		}
		a, custom, err := parseAssumptions(args[1:], s.Defaults)
		if err != nil {
			return "❌ " + escapeHTML(err.Error())
		}
		var override *model.Assumptions
		if custom {
			override = &a
		}
		if err := s.Watchlist.Add(args[0], override); err != nil {
			return "❌ " + escapeHTML(err.Error())
		}
		return fmt.Sprintf("👀 Watching %s", escapeHTML(strings.ToUpper(args[0])))
	case "/unwatch":
		if len(args) == 0 {
			return "Usage: /unwatch SYMBOL"
		}
		removed, err := s.Watchlist.Remove(args[0])
		if err != nil {
			return "❌ " + escapeHTML(err.Error())
		}
		if !removed {
			return fmt.Sprintf("%s is not on the watchlist", escapeHTML(strings.ToUpper(args[0])))
		}
		return fmt.Sprintf("Removed %s", escapeHTML(strings.ToUpper(args[0])))
	case "/list":
		return notifier.FormatWatchlist(s.Watchlist.List(), s.Defaults, notifier.StyleHTML)
	case "/assumptions":
		return notifier.FormatAssumptions(s.Defaults, string(s.Policy), notifier.StyleHTML)
	default:
		return helpText
	}
}

const helpText = `Available commands:
• /value SYMBOL [growth discount pe] - value a stock now
• /watch SYMBOL [growth discount pe] - add to the scheduled watchlist
• /unwatch SYMBOL - remove from the watchlist
• /list - show the watchlist
• /assumptions - show default assumptions`

func (s *Scheduler) trySend(ctx context.Context, logger *logging.Logger, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		logger.Error().Err(err).Msg("send notification")
	}
}

func (s *Scheduler) trySendChart(ctx context.Context, logger *logging.Logger, f *model.Fundamentals) {
	if f == nil || len(f.History) == 0 {
		return
	}
	png, err := chart.RenderFinancialHistory(f.Symbol, f.History)
	if err != nil {
		logger.Warn().Err(err).Str("symbol", f.Symbol).Msg("render chart")
		return
	}
	caption := fmt.Sprintf("%s revenue and net income", escapeHTML(f.Symbol))
	if err := s.Notifier.SendPhoto(ctx, png, strings.ToLower(f.Symbol)+".png", caption); err != nil {
		logger.Error().Err(err).Str("symbol", f.Symbol).Msg("send chart")
	}
}
