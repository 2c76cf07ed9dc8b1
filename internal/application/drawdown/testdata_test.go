package drawdown

// baseScenario returns a scenario with sane, mid-range defaults for every
// field, meant to be mutated per-test rather than used verbatim. Reverse
// mortgage and equity loan are disabled by default (rm_open_age beyond the
// horizon, loan_term_years 0).
func baseScenario() ScenarioConfig {
	return ScenarioConfig{
		Seed:                1,
		NSims:               200,
		StartAge:            53,
		PartialYearFraction: 1.0,

		ReturnMuReal:  0.04,
		ReturnVolReal: 0.12,

		Mode:                       ModeSingle,
		EFixed:                     60000,
		TargetSuccessDeathWeighted: 0.90,
		ELo:                        40000,
		EHi:                        220000,
		ESearchIters:               20,
		OptimizeSuccessMetric:      MetricDeathWeighted,
		BothWeight:                 0.5,

		SSAnnualReal: 30000,
		SSStartAge:   67,

		FloorAnnualReal: 20000,

		ReserveCashFraction: 0.5,
		SafeRealReturn:      0.01,

		DD1:               0.10,
		DD2:               0.25,
		Cut1:              0.10,
		Cut2:              0.25,
		BaselineFlexPre:   20000,
		BaselineEForFlex:  60000,
		BaselineFlexPost:  10000,
		BaselineNetPostSS: 30000,

		RMOpenAge:         999,
		HomeValueReal:     500000,
		RMPLFAtOpen:       0.5,
		RMLimitRealGrowth: 0.02,
		RMBalRealRate:     0.03,
		RMPartialCover:    0.5,
		RMRepayRate:       0.2,
		PayoffDDThreshold: 0.15,

		LoanRealRate:           0.03,
		LoanTermYears:          0,
		LoanBucketRealReturn:   0.02,
		LoanBucketUseDD:        0.2,
		LoanBucketPartialCover: 0.5,

		StartPortfolios:  []float64{1000000},
		ReserveYearsList: []int{2},
		LoanAmounts:      []float64{0},
	}
}
