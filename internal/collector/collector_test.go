package collector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueSentinel/internal/model"
	"ValueSentinel/internal/store"
)

func f64(v float64) *float64 { return &v }

func newMock() *MockFetcher {
	return &MockFetcher{
		Profile: &model.Profile{CompanyName: "Reliance Industries", Sector: "Energy", Currency: "INR", Price: f64(2500)},
		Ratios:  &model.RatiosTTM{EPS: f64(100), PERatio: f64(25), ROE: f64(0.09)},
		History: []model.FinancialYear{
			{Year: 2024, Revenue: 9e12, NetIncome: 7e11},
			{Year: 2023, Revenue: 8.8e12, NetIncome: 6.7e11},
		},
	}
}

func TestCollect_AssemblesFundamentals(t *testing.T) {
	c := NewCollector(newMock(), nil, 0, 5, nil)
	f, err := c.Collect(context.Background(), " reliance.ns ")
	require.NoError(t, err)

	assert.Equal(t, "RELIANCE.NS", f.Symbol)
	assert.Equal(t, 2500.0, f.Price)
	assert.Equal(t, 100.0, f.EPSTTM)
	require.NotNil(t, f.ROETTM)
	assert.InDelta(t, 9.0, *f.ROETTM, 1e-12)
	assert.Equal(t, 25.0, *f.PERatioTTM)
	assert.Nil(t, f.MarketCap)
	assert.Len(t, f.History, 2)
	assert.Equal(t, "mock", f.Source)
	assert.False(t, f.FetchedAt.IsZero())
}

func TestCollect_DataUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MockFetcher)
	}{
		{"unknown symbol", func(m *MockFetcher) { m.Profile = nil }},
		{"profile error", func(m *MockFetcher) { m.ProfileErr = errors.New("boom") }},
		{"missing price", func(m *MockFetcher) { m.Profile.Price = nil }},
		{"ratios error", func(m *MockFetcher) { m.RatiosErr = &APIError{StatusCode: 500} }},
		{"missing eps", func(m *MockFetcher) { m.Ratios.EPS = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMock()
			tt.mutate(m)
			f, err := NewCollector(m, nil, 0, 5, nil).Collect(context.Background(), "RELIANCE.NS")
			assert.Nil(t, f)
			assert.ErrorIs(t, err, ErrDataUnavailable)
		})
	}

	_, err := NewCollector(newMock(), nil, 0, 5, nil).Collect(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestCollect_ZeroEPSIsPresent(t *testing.T) {
	m := newMock()
	m.Ratios.EPS = f64(0)
	m.Profile.Price = f64(0)
	f, err := NewCollector(m, nil, 0, 5, nil).Collect(context.Background(), "LOSSCO")
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.EPSTTM)
	assert.Equal(t, 0.0, f.Price)
}

func TestCollect_HistoryFailureIsTolerated(t *testing.T) {
	m := newMock()
	m.HistoryErr = errors.New("timeout")
	f, err := NewCollector(m, nil, 0, 5, nil).Collect(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)
	assert.Nil(t, f.History)
}

func TestCollect_HistoryDisabled(t *testing.T) {
	f, err := NewCollector(newMock(), nil, 0, 0, nil).Collect(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)
	assert.Nil(t, f.History)
}

func TestCollect_UsesSnapshotCache(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	m := newMock()
	c := NewCollector(m, st, time.Hour, 5, nil)

	first, err := c.Collect(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)
	second, err := c.Collect(context.Background(), "reliance.ns")
	require.NoError(t, err)

	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, first.EPSTTM, second.EPSTTM)
	assert.Equal(t, first.History, second.History)

	// A zero TTL bypasses the cache.
	c.CacheTTL = 0
	_, err = c.Collect(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Calls())
}
