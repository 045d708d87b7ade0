package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueSentinel/internal/collector"
	"ValueSentinel/internal/model"
	"ValueSentinel/internal/strategy"
)

func f64(v float64) *float64 { return &v }

var defaults = model.Assumptions{GrowthRatePercent: 10, DiscountRatePercent: 12, IndustryPE: 20}

func mockCollector(withProfile bool) *collector.Collector {
	m := &collector.MockFetcher{
		Ratios:  &model.RatiosTTM{EPS: f64(100)},
		History: []model.FinancialYear{{Year: 2024, Revenue: 1e9, NetIncome: 1e8}},
	}
	if withProfile {
		m.Profile = &model.Profile{CompanyName: "Reliance Industries", Currency: "INR", Price: f64(2500)}
	}
	return collector.NewCollector(m, nil, 0, 5, nil)
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-symbol", "TCS.NS", "-pe", "30", "-growth", "0"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", o.symbol)

	a := o.assumptions(defaults)
	assert.Equal(t, model.Assumptions{GrowthRatePercent: 0, DiscountRatePercent: 12, IndustryPE: 30}, a)

	o, err = parseFlags([]string{"INFY.NS"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "INFY.NS", o.symbol)
	assert.Equal(t, defaults, o.assumptions(defaults))

	_, err = parseFlags(nil, &stderr)
	assert.EqualError(t, err, "-symbol is required")
}

func TestValuate_PrintsReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	chartPath := filepath.Join(t.TempDir(), "history.png")
	opts := &options{symbol: "reliance.ns", chartPath: chartPath}

	code := valuate(context.Background(), mockCollector(true), opts, defaults, strategy.PolicyAveraged, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Reliance Industries (RELIANCE.NS)")
	assert.Contains(t, out, "PE Fair Value: ₹ 2,000.00")
	assert.Contains(t, out, "🔴 OVERVALUED")
	assert.Contains(t, out, "Data Source: mock")

	png, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestValuate_DataUnavailableWithholdsPanel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := &options{symbol: "NOPE"}

	code := valuate(context.Background(), mockCollector(false), opts, defaults, strategy.PolicyAveraged, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "No valuation for NOPE")
}

func TestValuate_InvalidAssumption(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := &options{symbol: "RELIANCE.NS"}
	bad := model.Assumptions{GrowthRatePercent: 10, DiscountRatePercent: 12, IndustryPE: 0}

	code := valuate(context.Background(), mockCollector(true), opts, bad, strategy.PolicyAveraged, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "industry_pe")
}
