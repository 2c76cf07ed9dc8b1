package drawdown

// Validate checks the scenario's fields against their ranges: fractions in
// [0,1], start_age and ss_start_age in [0,120], non-negative dollars,
// non-empty sweep grids. rm_open_age is only required to be non-negative,
// so an age past the horizon leaves the reverse mortgage unopened; the
// earned-income ages are checked only for their order. Engine.Run calls it
// before any simulation work starts; nothing below this layer raises a
// ValidationError.
func (c *ScenarioConfig) Validate() error {
	if c.NSims <= 0 {
		return newValidationError("n_sims", "must be positive")
	}
	if c.StartAge < 0 || c.StartAge > 120 {
		return newValidationError("start_age", "must be between 0 and 120")
	}
	if c.PartialYearFraction < 0 || c.PartialYearFraction > 1 {
		return newValidationError("partial_year_fraction", "must be between 0 and 1")
	}
	if c.ReturnVolReal < 0 {
		return newValidationError("return_vol_real", "cannot be negative")
	}

	switch c.Mode {
	case ModeOptimize, ModeSingle:
	default:
		return newValidationError("mode", "must be one of: optimize, single")
	}
	if c.Mode == ModeOptimize {
		if c.ELo < 0 || c.EHi < 0 {
			return newValidationError("e_lo/e_hi", "cannot be negative")
		}
		if c.EHi < c.ELo {
			return newValidationError("e_hi", "must be >= e_lo")
		}
		if c.ESearchIters <= 0 {
			return newValidationError("e_search_iters", "must be positive")
		}
		if c.TargetSuccessDeathWeighted < 0 || c.TargetSuccessDeathWeighted > 1 {
			return newValidationError("target_success_death_weighted", "must be between 0 and 1")
		}
		switch c.OptimizeSuccessMetric {
		case MetricDeathWeighted, MetricAge99, MetricBothMin, MetricBothWeighted:
		default:
			return newValidationError("optimize_success_metric", "must be one of: death_weighted, age_99, both_min, both_weighted")
		}
		if c.OptimizeSuccessMetric == MetricBothWeighted && (c.BothWeight < 0 || c.BothWeight > 1) {
			return newValidationError("both_weight", "must be between 0 and 1")
		}
	} else {
		if c.EFixed < 0 {
			return newValidationError("e_fixed", "cannot be negative")
		}
	}

	if c.SSAnnualReal < 0 {
		return newValidationError("ss_annual_real", "cannot be negative")
	}
	if c.SSStartAge < 0 || c.SSStartAge > 120 {
		return newValidationError("ss_start_age", "must be between 0 and 120")
	}
	if c.EarnedIncomeAnnualReal < 0 {
		return newValidationError("earned_income_annual_real", "cannot be negative")
	}
	if c.EarnedIncomeEndAge < c.EarnedIncomeStartAge && c.EarnedIncomeAnnualReal > 0 {
		return newValidationError("earned_income_end_age", "must be >= earned_income_start_age")
	}
	if c.AllowSurplusSavings || c.IncomeAppliesToActualSpend {
		switch c.SurplusAllocation {
		case SurplusReserveFirst, SurplusRiskyFirst:
		default:
			return newValidationError("surplus_allocation", "must be one of: reserve_first, risky_first")
		}
	}

	if c.FloorAnnualReal < 0 {
		return newValidationError("floor_annual_real", "cannot be negative")
	}
	if c.ReserveCashFraction < 0 || c.ReserveCashFraction > 1 {
		return newValidationError("reserve_cash_fraction", "must be between 0 and 1")
	}

	if c.DD1 < 0 || c.DD1 > 1 || c.DD2 < 0 || c.DD2 > 1 {
		return newValidationError("dd1/dd2", "must be between 0 and 1")
	}
	if c.Cut1 < 0 || c.Cut1 > 1 || c.Cut2 < 0 || c.Cut2 > 1 {
		return newValidationError("cut1/cut2", "must be between 0 and 1")
	}

	if c.RMOpenAge < 0 {
		return newValidationError("rm_open_age", "cannot be negative")
	}
	if c.HomeValueReal < 0 {
		return newValidationError("home_value_real", "cannot be negative")
	}
	if c.RMPLFAtOpen < 0 || c.RMPLFAtOpen > 1 {
		return newValidationError("rm_plf_at_open", "must be between 0 and 1")
	}
	if c.RMPartialCover < 0 || c.RMPartialCover > 1 {
		return newValidationError("rm_partial_cover", "must be between 0 and 1")
	}
	if c.RMRepayRate < 0 || c.RMRepayRate > 1 {
		return newValidationError("rm_repay_rate", "must be between 0 and 1")
	}
	if c.PayoffDDThreshold < 0 || c.PayoffDDThreshold > 1 {
		return newValidationError("payoff_dd_threshold", "must be between 0 and 1")
	}

	if c.LoanTermYears < 0 {
		return newValidationError("loan_term_years", "cannot be negative")
	}
	if c.LoanBucketUseDD < 0 || c.LoanBucketUseDD > 1 {
		return newValidationError("loan_bucket_use_dd", "must be between 0 and 1")
	}
	if c.LoanBucketPartialCover < 0 || c.LoanBucketPartialCover > 1 {
		return newValidationError("loan_bucket_partial_cover", "must be between 0 and 1")
	}

	if len(c.StartPortfolios) == 0 {
		return newValidationError("start_portfolios", "must be non-empty")
	}
	if len(c.ReserveYearsList) == 0 {
		return newValidationError("reserve_years_list", "must be non-empty")
	}
	if len(c.LoanAmounts) == 0 {
		return newValidationError("loan_amounts", "must be non-empty")
	}
	for _, v := range c.StartPortfolios {
		if v < 0 {
			return newValidationError("start_portfolios", "cannot contain negative values")
		}
	}
	for _, v := range c.ReserveYearsList {
		if v < 0 {
			return newValidationError("reserve_years_list", "cannot contain negative values")
		}
	}
	for _, v := range c.LoanAmounts {
		if v < 0 {
			return newValidationError("loan_amounts", "cannot contain negative values")
		}
	}

	return nil
}
