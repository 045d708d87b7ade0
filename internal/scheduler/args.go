package scheduler

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"ValueSentinel/internal/model"
)

var errTooManyArgs = errors.New("expected at most: growth discount pe")

// parseAssumptions overrides base with up to three positional numbers:
// growth %, discount %, industry PE. custom reports whether any were given.
func parseAssumptions(args []string, base model.Assumptions) (a model.Assumptions, custom bool, err error) {
	a = base
	if len(args) > 3 {
		return a, false, errTooManyArgs
	}
	fields := []*float64{&a.GrowthRatePercent, &a.DiscountRatePercent, &a.IndustryPE}
	names := []string{"growth", "discount", "pe"}
	for i, arg := range args {
		v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
		if err != nil {
			return base, false, fmt.Errorf("%s %q is not a number", names[i], arg)
		}
		*fields[i] = v
	}
	return a, len(args) > 0, nil
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
