package drawdown

import "math"

// annuityPayment computes the fixed real annuity payment on principal P at
// rate r over n years: A = P*r / (1-(1+r)^-n) when r > 0, else P/n.
func annuityPayment(principal, rate float64, years int) float64 {
	if years <= 0 {
		return 0
	}
	if rate <= 0 {
		return principal / float64(years)
	}
	factor := math.Pow(1+rate, float64(years))
	return principal * (rate * factor) / (factor - 1)
}
