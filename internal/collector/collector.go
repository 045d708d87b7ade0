package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ValueSentinel/internal/logging"
	"ValueSentinel/internal/model"
	"ValueSentinel/internal/store"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Profile    *model.Profile
	Ratios     *model.RatiosTTM
	History    []model.FinancialYear
	ProfileErr error
	RatiosErr  error
	HistoryErr error

	mu    sync.Mutex
	calls int
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many profile requests were made.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockFetcher) FetchProfile(_ context.Context, symbol string) (*model.Profile, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	if m.Profile == nil {
		return nil, fmt.Errorf("profile %s: %w", symbol, ErrSymbolNotFound)
	}
	p := *m.Profile
	if p.Symbol == "" {
		p.Symbol = symbol
	}
	return &p, nil
}

func (m *MockFetcher) FetchRatiosTTM(_ context.Context, symbol string) (*model.RatiosTTM, error) {
	if m.RatiosErr != nil {
		return nil, m.RatiosErr
	}
	if m.Ratios == nil {
		return nil, fmt.Errorf("ratios-ttm %s: %w", symbol, ErrSymbolNotFound)
	}
	r := *m.Ratios
	return &r, nil
}

func (m *MockFetcher) FetchIncomeHistory(_ context.Context, _ string, limit int) ([]model.FinancialYear, error) {
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	if len(m.History) > limit {
		return append([]model.FinancialYear(nil), m.History[:limit]...), nil
	}
	return append([]model.FinancialYear(nil), m.History...), nil
}

// Collector turns provider answers into validated Fundamentals.
type Collector struct {
	Fetcher      Fetcher
	Store        store.SnapshotStore
	CacheTTL     time.Duration
	HistoryYears int
	Logger       *logging.Logger
	now          func() time.Time
}

// NewCollector creates a new Collector. A nil store disables caching.
func NewCollector(fetcher Fetcher, st store.SnapshotStore, cacheTTL time.Duration, historyYears int, logger *logging.Logger) *Collector {
	if st == nil {
		st = store.NewNoopStore()
	}
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Collector{
		Fetcher:      fetcher,
		Store:        st,
		CacheTTL:     cacheTTL,
		HistoryYears: historyYears,
		Logger:       logger,
		now:          time.Now,
	}
}

// Collect returns the fundamentals for symbol. Any failure to obtain a price
// or trailing EPS yields an error wrapping ErrDataUnavailable; no partial
// record is ever returned. Missing optional fields stay nil.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrDataUnavailable)
	}

	if c.CacheTTL > 0 {
		if f, ok, err := c.Store.GetFundamentals(symbol, c.CacheTTL); err != nil {
			c.Logger.Warn().Err(err).Str("symbol", symbol).Msg("snapshot cache read failed")
		} else if ok {
			c.Logger.Debug().Str("symbol", symbol).Msg("snapshot cache hit")
			return f, nil
		}
	}

	profile, err := c.Fetcher.FetchProfile(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch profile: %w", ErrDataUnavailable, err)
	}
	if profile.Price == nil {
		return nil, fmt.Errorf("%w: %s has no price", ErrDataUnavailable, symbol)
	}

	ratios, err := c.Fetcher.FetchRatiosTTM(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch ratios: %w", ErrDataUnavailable, err)
	}
	if ratios.EPS == nil {
		return nil, fmt.Errorf("%w: %s has no trailing EPS", ErrDataUnavailable, symbol)
	}

	f := &model.Fundamentals{
		Symbol:      symbol,
		CompanyName: profile.CompanyName,
		Sector:      profile.Sector,
		Currency:    profile.Currency,
		Price:       *profile.Price,
		EPSTTM:      *ratios.EPS,
		PERatioTTM:  ratios.PERatio,
		MarketCap:   profile.MarketCap,
		Source:      c.Fetcher.Name(),
		FetchedAt:   c.now(),
	}
	if ratios.ROE != nil {
		roe := *ratios.ROE * 100
		f.ROETTM = &roe
	}

	// History is display-only; its absence does not block a valuation.
	if c.HistoryYears > 0 {
		history, err := c.Fetcher.FetchIncomeHistory(ctx, symbol, c.HistoryYears)
		if err != nil {
			c.Logger.Warn().Err(err).Str("symbol", symbol).Msg("income history unavailable")
		} else {
			f.History = history
		}
	}

	if err := c.Store.PutFundamentals(f); err != nil {
		c.Logger.Warn().Err(err).Str("symbol", symbol).Msg("snapshot cache write failed")
	}

	c.Logger.Info().Str("symbol", symbol).Float64("price", f.Price).Float64("eps_ttm", f.EPSTTM).
		Int("history_years", len(f.History)).Msg("fundamentals collected")
	return f, nil
}
