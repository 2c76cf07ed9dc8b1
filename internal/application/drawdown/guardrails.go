package drawdown

// flexFractions computes the pre- and post-Social-Security flex fractions
// from the scenario's baseline calibration constants, each clipped to
// [0, 1].
func flexFractions(c *ScenarioConfig) (fPre, fPost float64) {
	fPre = clip01(safeDiv(c.BaselineFlexPre, c.BaselineEForFlex))
	fPost = clip01(safeDiv(c.BaselineFlexPost, c.BaselineNetPostSS))
	return fPre, fPost
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// cutFraction returns the guardrails cut fraction for a given drawdown
// level: cut2 if dd >= dd2, else cut1 if dd >= dd1, else 0.
func cutFraction(dd, dd1, dd2, cut1, cut2 float64) float64 {
	switch {
	case dd >= dd2:
		return cut2
	case dd >= dd1:
		return cut1
	default:
		return 0
	}
}
