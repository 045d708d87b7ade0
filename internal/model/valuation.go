package model

// Assumptions are the user-supplied inputs of a valuation run.
type Assumptions struct {
	GrowthRatePercent   float64 `json:"growth_rate_percent" yaml:"growth_rate"`
	DiscountRatePercent float64 `json:"discount_rate_percent" yaml:"discount_rate"`
	IndustryPE          float64 `json:"industry_pe" yaml:"industry_pe"`
}

// Verdict is the categorical margin-of-safety outcome.
type Verdict string

const (
	VerdictStronglyUndervalued   Verdict = "STRONGLY_UNDERVALUED"
	VerdictModeratelyUndervalued Verdict = "MODERATELY_UNDERVALUED"
	VerdictFairlyValued          Verdict = "FAIRLY_VALUED"
	VerdictOvervalued            Verdict = "OVERVALUED"
)

// Label returns the human readable form of the verdict.
func (v Verdict) Label() string {
	switch v {
	case VerdictStronglyUndervalued:
		return "🟢 STRONGLY UNDERVALUED"
	case VerdictModeratelyUndervalued:
		return "🟡 MODERATELY UNDERVALUED"
	case VerdictFairlyValued:
		return "⚖️ FAIRLY VALUED"
	case VerdictOvervalued:
		return "🔴 OVERVALUED"
	default:
		return string(v)
	}
}

// YearProjection is one step of the discounted EPS series.
type YearProjection struct {
	Year         int
	ProjectedEPS float64
	PresentValue float64
}

// ValuationResult is the output of the valuation engine.
type ValuationResult struct {
	FairValuePE       float64
	DCFValue          float64
	MOSPEPercent      float64
	MOSDCFPercent     float64
	AverageMOSPercent float64
	Verdict           Verdict
	Policy            string
	Projections       []YearProjection
}
