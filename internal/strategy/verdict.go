package strategy

import (
	"fmt"
	"strings"

	"ValueSentinel/internal/model"
)

// Policy selects how the two margins of safety are combined into a verdict.
type Policy string

const (
	// PolicyAveraged thresholds the mean of both margins. Total and symmetric.
	PolicyAveraged Policy = "averaged"
	// PolicyConjunctive requires agreement for the extreme verdicts.
	// Mixed signals are not symmetric: (5, -40) is FAIRLY_VALUED.
	PolicyConjunctive Policy = "conjunctive"
)

// ParsePolicy maps a config value to a Policy. Empty means PolicyAveraged.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAveraged:
		return PolicyAveraged, nil
	case PolicyConjunctive:
		return PolicyConjunctive, nil
	default:
		return "", fmt.Errorf("unknown verdict policy %q", s)
	}
}

// Thresholds maps the average margin of safety to a verdict.
// The undervalued bounds are strict, so an average of exactly 30 is
// MODERATELY_UNDERVALUED. The fair band includes its floor: exactly -10
// is FAIRLY_VALUED.
var Thresholds = []struct {
	Above     float64
	Inclusive bool
	Verdict   model.Verdict
}{
	{30, false, model.VerdictStronglyUndervalued},
	{10, false, model.VerdictModeratelyUndervalued},
	{-10, true, model.VerdictFairlyValued},
}

// DefaultVerdict applies when the average is below the last threshold.
const DefaultVerdict = model.VerdictOvervalued

// mapVerdict maps an average margin of safety to a verdict.
func mapVerdict(avg float64) model.Verdict {
	for _, t := range Thresholds {
		if avg > t.Above || (t.Inclusive && avg == t.Above) {
			return t.Verdict
		}
	}
	return DefaultVerdict
}

// Classify returns the verdict for the two margins under the given policy.
// Unknown policies fall back to PolicyAveraged.
func Classify(mosPE, mosDCF float64, policy Policy) model.Verdict {
	if policy == PolicyConjunctive {
		return classifyConjunctive(mosPE, mosDCF)
	}
	return mapVerdict((mosPE + mosDCF) / 2)
}

func classifyConjunctive(mosPE, mosDCF float64) model.Verdict {
	switch {
	case mosPE > 30 && mosDCF > 30:
		return model.VerdictStronglyUndervalued
	case mosPE > 10 || mosDCF > 10:
		return model.VerdictModeratelyUndervalued
	case mosPE < -10 && mosDCF < -10:
		return model.VerdictOvervalued
	default:
		return model.VerdictFairlyValued
	}
}
