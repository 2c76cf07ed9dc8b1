package drawdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsBaseScenario(t *testing.T) {
	cfg := baseScenario()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ScenarioConfig)
		field  string
	}{
		{"zero sims", func(c *ScenarioConfig) { c.NSims = 0 }, "n_sims"},
		{"start age out of range", func(c *ScenarioConfig) { c.StartAge = 150 }, "start_age"},
		{"partial year fraction above one", func(c *ScenarioConfig) { c.PartialYearFraction = 1.5 }, "partial_year_fraction"},
		{"negative volatility", func(c *ScenarioConfig) { c.ReturnVolReal = -0.1 }, "return_vol_real"},
		{"unknown mode", func(c *ScenarioConfig) { c.Mode = "sweep" }, "mode"},
		{"inverted search bounds", func(c *ScenarioConfig) {
			c.Mode = ModeOptimize
			c.ELo, c.EHi = 100, 50
		}, "e_hi"},
		{"zero search iters", func(c *ScenarioConfig) {
			c.Mode = ModeOptimize
			c.ESearchIters = 0
		}, "e_search_iters"},
		{"target above one", func(c *ScenarioConfig) {
			c.Mode = ModeOptimize
			c.TargetSuccessDeathWeighted = 1.5
		}, "target_success_death_weighted"},
		{"unknown success metric", func(c *ScenarioConfig) {
			c.Mode = ModeOptimize
			c.OptimizeSuccessMetric = "median"
		}, "optimize_success_metric"},
		{"negative e_fixed", func(c *ScenarioConfig) { c.EFixed = -1 }, "e_fixed"},
		{"negative social security", func(c *ScenarioConfig) { c.SSAnnualReal = -1 }, "ss_annual_real"},
		{"negative floor", func(c *ScenarioConfig) { c.FloorAnnualReal = -1 }, "floor_annual_real"},
		{"cash fraction above one", func(c *ScenarioConfig) { c.ReserveCashFraction = 2 }, "reserve_cash_fraction"},
		{"cut above one", func(c *ScenarioConfig) { c.Cut2 = 1.5 }, "cut1/cut2"},
		{"plf above one", func(c *ScenarioConfig) { c.RMPLFAtOpen = 1.2 }, "rm_plf_at_open"},
		{"negative loan term", func(c *ScenarioConfig) { c.LoanTermYears = -1 }, "loan_term_years"},
		{"empty portfolios", func(c *ScenarioConfig) { c.StartPortfolios = nil }, "start_portfolios"},
		{"empty reserve years", func(c *ScenarioConfig) { c.ReserveYearsList = nil }, "reserve_years_list"},
		{"empty loan amounts", func(c *ScenarioConfig) { c.LoanAmounts = nil }, "loan_amounts"},
		{"negative portfolio entry", func(c *ScenarioConfig) { c.StartPortfolios = []float64{-1} }, "start_portfolios"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseScenario()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateSurplusAllocationOnlyWhenConsulted(t *testing.T) {
	cfg := baseScenario()
	cfg.AllowSurplusSavings = true
	cfg.SurplusAllocation = "mattress"
	require.Error(t, cfg.Validate())

	cfg.SurplusAllocation = SurplusRiskyFirst
	require.NoError(t, cfg.Validate())
}
