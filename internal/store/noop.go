package store

import (
	"time"

	"ValueSentinel/internal/model"
)

// NoopStore is used when SQLite is not configured. It never hits.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) GetFundamentals(_ string, _ time.Duration) (*model.Fundamentals, bool, error) {
	return nil, false, nil
}
func (n *NoopStore) PutFundamentals(_ *model.Fundamentals) error { return nil }
func (n *NoopStore) Close() error                                { return nil }
