// Package store caches fetched fundamentals between provider calls.
// Valuation results are never stored.
package store

import (
	"time"

	"ValueSentinel/internal/model"
)

// SnapshotStore persists the most recent fundamentals per symbol.
type SnapshotStore interface {
	// GetFundamentals returns the cached record for symbol if it is younger than maxAge.
	GetFundamentals(symbol string, maxAge time.Duration) (*model.Fundamentals, bool, error)
	PutFundamentals(f *model.Fundamentals) error
	Close() error
}
