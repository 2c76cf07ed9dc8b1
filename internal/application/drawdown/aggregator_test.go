package drawdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianOddLength(t *testing.T) {
	assert.Equal(t, 3.0, median([]float64{5, 1, 3, 2, 4}))
}

func TestMedianEvenLengthAverages(t *testing.T) {
	assert.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
}

func TestMedianEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestClampProbabilityBounds(t *testing.T) {
	assert.Equal(t, 1.0, clampProbability(1.0000001))
	assert.Equal(t, 0.0, clampProbability(-0.0000001))
	assert.Equal(t, 0.5, clampProbability(0.5))
}

func TestFailureBreakdownOnlyCountsFailedPaths(t *testing.T) {
	ens := newEnsemble(3)
	ens.fail(0, 60, failFloorNotFundable)
	ens.fail(1, 61, failFloorNotFundable)
	// path 2 left alive (failAge == -1)

	breakdown := failureBreakdown(ens)
	assert.Equal(t, 2, breakdown[failFloorNotFundable])
	assert.Len(t, breakdown, 1)
}

func TestAggregateAllPathsSucceedGivesPerfectScores(t *testing.T) {
	cfg := baseScenario()
	ens := newEnsemble(4)
	for i := range ens.risky {
		ens.risky[i] = 1000
		ens.hwmRisky[i] = 1000
		ens.homeEquityRemaining[i] = cfg.HomeValueReal
	}

	result := aggregate(ens, cfg.StartAge)
	assert.Equal(t, 1.0, result.PSuccessToAge99)
	assert.Equal(t, 0.0, result.PAnyRMDraw)
	assert.Empty(t, result.FailureBreakdown)
}

func TestAggregateAllPathsFailGivesZeroScores(t *testing.T) {
	cfg := baseScenario()
	ens := newEnsemble(4)
	for i := range ens.risky {
		ens.fail(i, cfg.StartAge, failFloorNotFundable)
	}

	result := aggregate(ens, cfg.StartAge)
	assert.Equal(t, 0.0, result.PSuccessToAge99)
	assert.Equal(t, 0.0, result.PSuccessDeathWeighted)
	assert.Equal(t, 4, result.FailureBreakdown[failFloorNotFundable])
}
