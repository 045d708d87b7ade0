package calculator

// FairValuePE returns eps multiplied by the industry PE.
// A company without positive trailing earnings has no PE-based fair value, so 0 is returned.
func FairValuePE(eps, industryPE float64) float64 {
	if eps <= 0 {
		return 0
	}
	return eps * industryPE
}

// MarginOfSafety returns the percentage by which fairValue exceeds price.
// Returns 0 when price is not positive.
func MarginOfSafety(fairValue, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return (fairValue - price) / price * 100
}
