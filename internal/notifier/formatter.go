package notifier

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"ValueSentinel/internal/model"
)

// Style selects the markup of formatted reports.
type Style int

const (
	StyleHTML Style = iota // Telegram HTML parse mode
	StylePlain
)

func (s Style) bold(text string) string {
	if s == StyleHTML {
		return "<b>" + text + "</b>"
	}
	return text
}

func (s Style) escape(text string) string {
	if s == StyleHTML {
		return html.EscapeString(text)
	}
	return text
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

func currencyPrefix(code string) string {
	if sym, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return sym + " "
	}
	if code == "" {
		return ""
	}
	return strings.ToUpper(code) + " "
}

// formatNumber rounds v half away from zero to places decimals and groups thousands.
// Rounding happens here and nowhere else.
// Non-finite values print as "n/a".
func formatNumber(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Round(places)
	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(places), ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	out := intPart
	if err == nil {
		out = humanize.Comma(n)
	}
	if frac != "" {
		out += "." + frac
	}
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

func formatMoney(currency string, v float64) string {
	return currencyPrefix(currency) + formatNumber(v, 2)
}

func formatPercent(v float64) string {
	return formatNumber(v, 2) + "%"
}

func formatOptional(v *float64, suffix string) string {
	if v == nil {
		return "n/a"
	}
	return formatNumber(*v, 2) + suffix
}

// FormatValuationReport formats fundamentals and the valuation outcome for display.
func FormatValuationReport(f *model.Fundamentals, a model.Assumptions, r *model.ValuationResult, style Style) string {
	var b strings.Builder

	name := f.CompanyName
	if name == "" {
		name = f.Symbol
	}
	b.WriteString(fmt.Sprintf("🏢 %s (%s)\n", style.bold(style.escape(name)), style.escape(f.Symbol)))
	if f.Sector != "" {
		b.WriteString(fmt.Sprintf("Sector: %s\n", style.escape(f.Sector)))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Live Price: %s\n", formatMoney(f.Currency, f.Price)))
	b.WriteString(fmt.Sprintf("EPS (TTM): %s | PE (TTM): %s | ROE: %s\n",
		formatNumber(f.EPSTTM, 2), formatOptional(f.PERatioTTM, ""), formatOptional(f.ROETTM, "%")))
	if f.MarketCap != nil {
		b.WriteString(fmt.Sprintf("Market Cap: %s\n", formatMoney(f.Currency, *f.MarketCap)))
	}
	b.WriteString("\n")

	b.WriteString(style.bold("🔧 Assumptions") + "\n")
	b.WriteString(fmt.Sprintf("  Growth %s | Discount %s | Industry PE %s\n\n",
		formatPercent(a.GrowthRatePercent), formatPercent(a.DiscountRatePercent), formatNumber(a.IndustryPE, 2)))

	b.WriteString(style.bold("📈 Valuation Results") + "\n")
	if f.EPSTTM > 0 {
		b.WriteString(fmt.Sprintf("  PE Fair Value: %s\n", formatMoney(f.Currency, r.FairValuePE)))
	} else {
		b.WriteString("  PE Fair Value: n/a (no positive earnings)\n")
	}
	b.WriteString(fmt.Sprintf("  DCF Value (5Y): %s\n", formatMoney(f.Currency, r.DCFValue)))
	b.WriteString(fmt.Sprintf("  MOS (PE): %s | MOS (DCF): %s\n", formatPercent(r.MOSPEPercent), formatPercent(r.MOSDCFPercent)))
	b.WriteString("\n")

	b.WriteString(style.bold("Discounted EPS") + "\n")
	for _, p := range r.Projections {
		b.WriteString(fmt.Sprintf("  Y%d: EPS %s → PV %s\n", p.Year, formatNumber(p.ProjectedEPS, 2), formatNumber(p.PresentValue, 2)))
	}
	b.WriteString("\n")

	b.WriteString(style.bold(r.Verdict.Label()) + "\n")
	if r.Policy != "" {
		b.WriteString(fmt.Sprintf("  (%s policy, average MOS %s)\n", r.Policy, formatPercent(r.AverageMOSPercent)))
	}

	if len(f.History) > 0 {
		b.WriteString("\n" + FormatFinancialHistory(f.History, style))
	}

	if f.Source != "" {
		b.WriteString(fmt.Sprintf("\nData Source: %s", style.escape(f.Source)))
	}
	return b.String()
}

// FormatFinancialHistory formats the annual revenue and net income summary.
func FormatFinancialHistory(history []model.FinancialYear, style Style) string {
	var b strings.Builder
	b.WriteString(style.bold(fmt.Sprintf("📋 Financial Summary (Last %d Years)", len(history))) + "\n")
	for _, y := range history {
		b.WriteString(fmt.Sprintf("  %d  Revenue %s  Net Income %s\n",
			y.Year, formatNumber(y.Revenue, 0), formatNumber(y.NetIncome, 0)))
	}
	return b.String()
}

// FormatUnavailable is shown instead of the valuation panel when data cannot be fetched.
func FormatUnavailable(symbol string, err error, style Style) string {
	return fmt.Sprintf("❌ %s\n%s",
		style.bold("No valuation for "+style.escape(symbol)),
		style.escape("Market data unavailable (invalid symbol or API limit exceeded): "+err.Error()))
}

// FormatWatchlist lists watched symbols with their effective assumptions.
func FormatWatchlist(entries []model.WatchEntry, defaults model.Assumptions, style Style) string {
	if len(entries) == 0 {
		return "Watchlist is empty. Add a symbol with /watch SYMBOL"
	}
	var b strings.Builder
	b.WriteString(style.bold("👀 Watchlist") + "\n")
	for _, e := range entries {
		a := e.Effective(defaults)
		marker := ""
		if e.Assumptions != nil {
			marker = " *"
		}
		b.WriteString(fmt.Sprintf("  %s  g=%s d=%s pe=%s%s\n", style.escape(e.Symbol),
			formatPercent(a.GrowthRatePercent), formatPercent(a.DiscountRatePercent), formatNumber(a.IndustryPE, 2), marker))
	}
	return b.String()
}

// FormatAssumptions shows the default assumptions and verdict policy.
func FormatAssumptions(a model.Assumptions, policy string, style Style) string {
	var b strings.Builder
	b.WriteString(style.bold("🔧 Default Assumptions") + "\n")
	b.WriteString(fmt.Sprintf("Expected Growth Rate: %s\n", formatPercent(a.GrowthRatePercent)))
	b.WriteString(fmt.Sprintf("Discount Rate: %s\n", formatPercent(a.DiscountRatePercent)))
	b.WriteString(fmt.Sprintf("Assumed Industry PE: %s\n", formatNumber(a.IndustryPE, 2)))
	b.WriteString(fmt.Sprintf("Verdict policy: %s", policy))
	return b.String()
}
