package strategy

import (
	"errors"
	"fmt"
	"math"

	"ValueSentinel/internal/calculator"
	"ValueSentinel/internal/model"
)

// Evaluate computes the PE and discounted EPS fair values for one share,
// their margins of safety over price, and the verdict.
//
// industryPE must be positive and the discount rate above -100%. Any other
// finite input yields a result: non-positive eps gives a zero PE fair value
// and non-positive price gives zero margins.
func Evaluate(price, eps float64, a model.Assumptions, policy Policy) (*model.ValuationResult, error) {
	if err := validate(price, eps, a); err != nil {
		return nil, err
	}

	projections, err := calculator.ProjectDiscountedEPS(eps, a.GrowthRatePercent, a.DiscountRatePercent, calculator.DefaultProjectionYears)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidDiscountRate) {
			return nil, &InvalidAssumptionError{Field: "discount_rate", Value: a.DiscountRatePercent, Reason: err.Error()}
		}
		return nil, err
	}

	fairValuePE := calculator.FairValuePE(eps, a.IndustryPE)
	dcfValue := calculator.SumPresentValues(projections)
	mosPE := calculator.MarginOfSafety(fairValuePE, price)
	mosDCF := calculator.MarginOfSafety(dcfValue, price)

	if err := checkFinite(price, eps, a, fairValuePE, dcfValue, mosPE, mosDCF, projections); err != nil {
		return nil, err
	}

	if policy == "" {
		policy = PolicyAveraged
	}

	return &model.ValuationResult{
		FairValuePE:       fairValuePE,
		DCFValue:          dcfValue,
		MOSPEPercent:      mosPE,
		MOSDCFPercent:     mosDCF,
		AverageMOSPercent: (mosPE + mosDCF) / 2,
		Verdict:           Classify(mosPE, mosDCF, policy),
		Policy:            string(policy),
		Projections:       projections,
	}, nil
}

// EvaluateFundamentals runs Evaluate on the price and EPS of f.
func EvaluateFundamentals(f *model.Fundamentals, a model.Assumptions, policy Policy) (*model.ValuationResult, error) {
	return Evaluate(f.Price, f.EPSTTM, a, policy)
}

func validate(price, eps float64, a model.Assumptions) error {
	finite := []struct {
		field string
		v     float64
	}{
		{"price", price},
		{"eps_ttm", eps},
		{"growth_rate", a.GrowthRatePercent},
		{"discount_rate", a.DiscountRatePercent},
		{"industry_pe", a.IndustryPE},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InvalidAssumptionError{Field: f.field, Value: f.v, Reason: "must be finite"}
		}
	}
	if a.IndustryPE <= 0 {
		return &InvalidAssumptionError{Field: "industry_pe", Value: a.IndustryPE, Reason: "must be positive"}
	}
	if a.DiscountRatePercent <= -100 {
		return &InvalidAssumptionError{Field: "discount_rate", Value: a.DiscountRatePercent, Reason: "must be greater than -100%"}
	}
	return nil
}

// checkFinite rejects finite inputs whose valuation overflows, naming the
// input that drove each output out of range.
func checkFinite(price, eps float64, a model.Assumptions, fairValuePE, dcfValue, mosPE, mosDCF float64, projections []model.YearProjection) error {
	overflow := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

	if overflow(fairValuePE) {
		return &InvalidAssumptionError{Field: "eps_ttm", Value: eps, Reason: "PE fair value overflows"}
	}
	for _, p := range projections {
		if overflow(p.ProjectedEPS) || overflow(p.PresentValue) {
			field, value := "growth_rate", a.GrowthRatePercent
			if !overflow(p.ProjectedEPS) {
				field, value = "discount_rate", a.DiscountRatePercent
			}
			return &InvalidAssumptionError{Field: field, Value: value, Reason: fmt.Sprintf("discounted EPS overflows in year %d", p.Year)}
		}
	}
	if overflow(dcfValue) {
		return &InvalidAssumptionError{Field: "growth_rate", Value: a.GrowthRatePercent, Reason: "discounted EPS value overflows"}
	}
	if overflow(mosPE) || overflow(mosDCF) {
		return &InvalidAssumptionError{Field: "price", Value: price, Reason: "margin of safety overflows"}
	}
	return nil
}

// ValidateAssumptions checks a without needing market data.
func ValidateAssumptions(a model.Assumptions) error {
	return validate(0, 0, a)
}
