package collector

import (
	"context"
	"errors"

	"ValueSentinel/internal/model"
)

var (
	// ErrDataUnavailable means no valid fundamentals could be assembled for a symbol.
	// Callers must not run a valuation when they see it.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrSymbolNotFound is returned by fetchers when the provider knows nothing about a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Fetcher defines the interface for fetching company fundamentals.
type Fetcher interface {
	FetchProfile(ctx context.Context, symbol string) (*model.Profile, error)
	FetchRatiosTTM(ctx context.Context, symbol string) (*model.RatiosTTM, error)
	// FetchIncomeHistory returns up to limit annual records, most recent first.
	FetchIncomeHistory(ctx context.Context, symbol string, limit int) ([]model.FinancialYear, error)
	Name() string
}
