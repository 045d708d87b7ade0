package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueSentinel/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_PutGet(t *testing.T) {
	s := newTestStore(t)
	pe := 24.5
	f := &model.Fundamentals{
		Symbol:      "TCS.NS",
		CompanyName: "Tata Consultancy Services",
		Price:       3900,
		EPSTTM:      125.4,
		PERatioTTM:  &pe,
		History:     []model.FinancialYear{{Year: 2024, Revenue: 2.4e12, NetIncome: 4.6e11}},
		Source:      "fmp",
		FetchedAt:   time.Now().Truncate(time.Second),
	}
	require.NoError(t, s.PutFundamentals(f))

	got, ok, err := s.GetFundamentals("tcs.ns", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f.CompanyName, got.CompanyName)
	assert.Equal(t, f.EPSTTM, got.EPSTTM)
	require.NotNil(t, got.PERatioTTM)
	assert.Equal(t, pe, *got.PERatioTTM)
	assert.Nil(t, got.ROETTM)
	assert.Equal(t, f.History, got.History)
}

func TestSQLiteStore_Expiry(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.PutFundamentals(&model.Fundamentals{Symbol: "INFY.NS", Price: 1500, EPSTTM: 60, FetchedAt: now.Add(-2 * time.Hour)}))

	_, ok, err := s.GetFundamentals("INFY.NS", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.GetFundamentals("INFY.NS", 3*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteStore_UpsertAndMiss(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutFundamentals(&model.Fundamentals{Symbol: "ITC.NS", Price: 400, EPSTTM: 16}))
	require.NoError(t, s.PutFundamentals(&model.Fundamentals{Symbol: "ITC.NS", Price: 420, EPSTTM: 17}))

	got, ok, err := s.GetFundamentals("ITC.NS", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 420.0, got.Price)

	_, ok, err = s.GetFundamentals("UNKNOWN", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoopStore(t *testing.T) {
	var s SnapshotStore = NewNoopStore()
	require.NoError(t, s.PutFundamentals(&model.Fundamentals{Symbol: "X"}))
	_, ok, err := s.GetFundamentals("X", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}
