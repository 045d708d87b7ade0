package calculator

import (
	"errors"
	"math"

	"ValueSentinel/internal/model"
)

// DefaultProjectionYears is the horizon of the discounted EPS valuation.
const DefaultProjectionYears = 5

var (
	ErrInvalidDiscountRate = errors.New("discount rate must be greater than -100%")
	ErrInvalidYears        = errors.New("projection years must be positive")
)

// ProjectDiscountedEPS compounds eps forward at growthPct per year and discounts
// each year back at discountPct. Year y depends on year y-1, so the series is
// built strictly in order. Negative eps is carried through unchanged.
func ProjectDiscountedEPS(eps, growthPct, discountPct float64, years int) ([]model.YearProjection, error) {
	if years <= 0 {
		return nil, ErrInvalidYears
	}
	if discountPct <= -100 {
		return nil, ErrInvalidDiscountRate
	}

	growth := 1 + growthPct/100
	discount := 1 + discountPct/100

	projections := make([]model.YearProjection, 0, years)
	projected := eps
	for year := 1; year <= years; year++ {
		projected *= growth
		projections = append(projections, model.YearProjection{
			Year:         year,
			ProjectedEPS: projected,
			PresentValue: projected / math.Pow(discount, float64(year)),
		})
	}
	return projections, nil
}

// SumPresentValues adds the present values in year order.
func SumPresentValues(projections []model.YearProjection) float64 {
	sum := 0.0
	for _, p := range projections {
		sum += p.PresentValue
	}
	return sum
}

// DiscountedEPSValue is ProjectDiscountedEPS followed by SumPresentValues.
func DiscountedEPSValue(eps, growthPct, discountPct float64, years int) (float64, error) {
	projections, err := ProjectDiscountedEPS(eps, growthPct, discountPct, years)
	if err != nil {
		return 0, err
	}
	return SumPresentValues(projections), nil
}
