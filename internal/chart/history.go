// Package chart renders PNG charts for reports.
package chart

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ValueSentinel/internal/model"
)

var (
	revenueColor   = drawing.ColorFromHex("2563eb") // blue-600
	netIncomeColor = drawing.ColorFromHex("16a34a") // green-600
	lossColor      = drawing.ColorFromHex("dc2626") // red-600
)

// RenderFinancialHistory renders revenue and net income per year as a bar chart.
// Years are drawn oldest first. Returns raw PNG bytes.
func RenderFinancialHistory(symbol string, history []model.FinancialYear) ([]byte, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("no financial history for %s", symbol)
	}

	bars := make([]chart.Value, 0, 2*len(history))
	for i := len(history) - 1; i >= 0; i-- {
		y := history[i]
		year := strconv.Itoa(y.Year)
		niColor := netIncomeColor
		if y.NetIncome < 0 {
			niColor = lossColor
		}
		bars = append(bars,
			chart.Value{
				Label: year + " Rev",
				Value: y.Revenue,
				Style: chart.Style{FillColor: revenueColor, StrokeColor: revenueColor},
			},
			chart.Value{
				Label: year + " NI",
				Value: y.NetIncome,
				Style: chart.Style{FillColor: niColor, StrokeColor: niColor},
			},
		)
	}

	graph := chart.BarChart{
		Title:  symbol + " Revenue & Net Income",
		Width:  900,
		Height: 420,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth:     48,
		BarSpacing:   16,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return humanize.SIWithDigits(f, 1, "")
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
