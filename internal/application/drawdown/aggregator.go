package drawdown

import (
	"math"
	"sort"
)

// aggregate reduces one ensemble's per-path outcomes to the per-grid-point
// summary: success probabilities, terminal medians, reverse-mortgage draw
// fraction, and the internal failure-reason tally.
func aggregate(ens *ensemble, startAge int) GridPointResult {
	n := len(ens.risky)

	survivalFrac := func(age int) float64 {
		alive := 0
		for i := 0; i < n; i++ {
			if ens.failAge[i] == -1 || ens.failAge[i] > age {
				alive++
			}
		}
		return float64(alive) / float64(n)
	}

	pSuccessDW := clampProbability(deathWeightedSuccess(startAge, 99, survivalFrac))

	neverFailed := 0
	for i := 0; i < n; i++ {
		if ens.failAge[i] == -1 {
			neverFailed++
		}
	}
	pSuccess99 := clampProbability(float64(neverFailed) / float64(n))

	riskyEnd := make([]float64, n)
	totalNetEnd := make([]float64, n)
	netWorthEnd := make([]float64, n)
	rmBalanceEnd := make([]float64, n)
	homeEquity := make([]float64, n)
	anyRMDraw := 0

	for i := 0; i < n; i++ {
		riskyEnd[i] = ens.risky[i]
		totalNetEnd[i] = ens.cash[i] + ens.baseTreas[i] + ens.risky[i] + ens.loanBucket[i] - ens.loanBalance[i]
		homeEquity[i] = ens.homeEquityRemaining[i]
		netWorthEnd[i] = totalNetEnd[i] + homeEquity[i]
		rmBalanceEnd[i] = ens.rmBalance[i]
		if ens.anyRMDraw[i] {
			anyRMDraw++
		}
	}

	result := GridPointResult{
		PSuccessDeathWeighted:     pSuccessDW,
		PSuccessToAge99:           pSuccess99,
		MedianMaxDDRisky:          median(ens.maxDDRisky),
		MedianMaxDDTotal:          median(ens.maxDDTotal),
		HomeEquityRemainingMedian: median(homeEquity),
		PAnyRMDraw:                float64(anyRMDraw) / float64(n),
		RMBalanceEndMedian:        median(rmBalanceEnd),
		RiskyEndMedian:            median(riskyEnd),
		TotalNetEndMedian:         median(totalNetEnd),
		NetWorthEndMedian:         median(netWorthEnd),
		FailureBreakdown:          failureBreakdown(ens),
	}
	if result.FailureBreakdown[failInfeasibleInit] == n {
		result.OptimizerNotes = append(result.OptimizerNotes, "infeasible_initialization")
	}
	return result
}

func failureBreakdown(ens *ensemble) map[string]int {
	breakdown := make(map[string]int)
	for i := range ens.failReason {
		if ens.failAge[i] == -1 {
			continue
		}
		breakdown[ens.failReason[i]]++
	}
	return breakdown
}

// median computes the 50th percentile over a sorted copy, averaging the
// two middle elements for even-length input.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// clampProbability guards against floating noise pushing a probability
// fractionally outside [0,1].
func clampProbability(p float64) float64 {
	return math.Min(1, math.Max(0, p))
}
