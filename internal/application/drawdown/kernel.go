package drawdown

import "math"

// rmRepayEpsilon: reverse-mortgage repayment triggers when risky is within
// this fraction of its high-water mark, not only on an exact float64
// dd == 0, so accumulated rounding across decades of compounding can't
// suppress the trigger.
const rmRepayEpsilon = 1e-9

const (
	failFloorNotFundable     = "floor-not-fundable"
	failLoanPaymentNotFund   = "loan-payment-not-fundable"
	failLienPayoffIncomplete = "lien-payoff-incomplete"
	failInfeasibleInit       = "infeasible-initialization"
)

// ensemble is the per-path state for one grid-point/spending-level
// invocation, laid out as parallel arrays so the annual loop is a map over
// every path rather than a path-major object graph.
type ensemble struct {
	risky       []float64
	cash        []float64
	baseTreas   []float64
	loanBucket  []float64
	loanBalance []float64
	rmLimit     []float64
	rmBalance   []float64

	hwmRisky    []float64
	hwmTotalNet []float64
	maxDDRisky  []float64
	maxDDTotal  []float64

	aliveAndOK []bool
	failAge    []int // -1 while the path hasn't failed
	failReason []string

	anyRMDraw []bool

	// terminal, filled in once the loop over ages finishes
	homeEquityRemaining []float64
}

func drawdownFrac(value, hwm float64) float64 {
	if hwm <= 0 {
		return 0
	}
	dd := 1 - value/hwm
	if dd < 0 {
		return 0
	}
	return dd
}

// runKernel executes the year-by-year state machine for one grid point and
// spending level, over a pre-generated returns matrix. It never returns an
// error: an infeasible grid point degrades to an all-failed ensemble
// rather than propagating a failure.
func runKernel(cfg *ScenarioConfig, startPortfolio float64, reserveYears int, loanAmount float64, e int, returns [][]float64) *ensemble {
	n := cfg.NSims
	years := 99 - cfg.StartAge + 1
	if years < 1 {
		years = 1
	}

	ens := newEnsemble(n)

	eFloat := float64(e)
	nextYearWithdrawal0 := eFloat * cfg.PartialYearFraction
	reserveTotal := float64(reserveYears) * nextYearWithdrawal0
	cashTarget0 := cfg.ReserveCashFraction * reserveTotal
	treasTarget0 := reserveTotal - cashTarget0
	riskyInit := startPortfolio - reserveTotal - loanAmount

	if riskyInit < 0 {
		for i := 0; i < n; i++ {
			ens.aliveAndOK[i] = false
			ens.failAge[i] = cfg.StartAge
			ens.failReason[i] = failInfeasibleInit
		}
		return ens
	}

	annualLoanPayment := annuityPayment(loanAmount, cfg.LoanRealRate, cfg.LoanTermYears)
	fPre, fPost := flexFractions(cfg)

	// An open age before the simulation horizon means the line is open from
	// the first simulated year.
	rmOpenAge := cfg.RMOpenAge
	if rmOpenAge < cfg.StartAge {
		rmOpenAge = cfg.StartAge
	}

	for i := 0; i < n; i++ {
		ens.risky[i] = riskyInit
		ens.cash[i] = cashTarget0
		ens.baseTreas[i] = treasTarget0
		ens.loanBucket[i] = loanAmount
		ens.loanBalance[i] = loanAmount
		ens.hwmRisky[i] = riskyInit
		ens.hwmTotalNet[i] = riskyInit + cashTarget0 + treasTarget0
	}

	for yearIdx := 0; yearIdx < years; yearIdx++ {
		age := cfg.StartAge + yearIdx
		isFirstYear := yearIdx == 0
		partialFrac := 1.0
		if isFirstYear {
			partialFrac = cfg.PartialYearFraction
		}

		// Reserve-refill targets for *next* year, used in step 11. The
		// partial-year factor never applies here.
		nextYearWithdrawal := eFloat
		if age+1 >= cfg.SSStartAge {
			nextYearWithdrawal = math.Max(0, eFloat-cfg.SSAnnualReal)
		}
		nextReserveTotal := float64(reserveYears) * nextYearWithdrawal
		nextCashTarget := cfg.ReserveCashFraction * nextReserveTotal
		nextTreasTarget := nextReserveTotal - nextCashTarget

		for i := 0; i < n; i++ {
			if !ens.aliveAndOK[i] {
				continue
			}
			ens.stepPath(cfg, i, age, isFirstYear, partialFrac, eFloat, fPre, fPost,
				annualLoanPayment, rmOpenAge, yearIdx, returns[i][yearIdx],
				nextCashTarget, nextTreasTarget)
		}
	}

	for i := 0; i < n; i++ {
		ens.homeEquityRemaining[i] = math.Max(0, cfg.HomeValueReal-ens.rmBalance[i])
	}

	return ens
}

func newEnsemble(n int) *ensemble {
	ens := &ensemble{
		risky:               make([]float64, n),
		cash:                make([]float64, n),
		baseTreas:           make([]float64, n),
		loanBucket:          make([]float64, n),
		loanBalance:         make([]float64, n),
		rmLimit:             make([]float64, n),
		rmBalance:           make([]float64, n),
		hwmRisky:            make([]float64, n),
		hwmTotalNet:         make([]float64, n),
		maxDDRisky:          make([]float64, n),
		maxDDTotal:          make([]float64, n),
		aliveAndOK:          make([]bool, n),
		failAge:             make([]int, n),
		failReason:          make([]string, n),
		anyRMDraw:           make([]bool, n),
		homeEquityRemaining: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		ens.aliveAndOK[i] = true
		ens.failAge[i] = -1
	}
	return ens
}

func (ens *ensemble) fail(i, age int, reason string) {
	if !ens.aliveAndOK[i] {
		return
	}
	ens.aliveAndOK[i] = false
	ens.failAge[i] = age
	ens.failReason[i] = reason
}

// stepPath runs one simulation year for a single path: planned withdrawal,
// income, loan payment, guardrails, the funding waterfall, reverse-mortgage
// open/repay, reserve refill, returns, and metric updates. The step order
// is normative; reordering changes results materially.
func (ens *ensemble) stepPath(cfg *ScenarioConfig, i, age int, isFirstYear bool, partialFrac float64,
	e float64, fPre, fPost float64, annualLoanPayment float64, rmOpenAge, yearIdx int, r float64,
	nextCashTarget, nextTreasTarget float64) {

	ddEntry := drawdownFrac(ens.risky[i], ens.hwmRisky[i])

	// --- Step 1: planned withdrawal ---
	var planned float64
	if cfg.IncomeAppliesToActualSpend {
		planned = e // SS nets out of actual spend in step 3, not here.
	} else if age < cfg.SSStartAge {
		planned = e
	} else {
		planned = math.Max(0, e-cfg.SSAnnualReal)
	}
	if isFirstYear {
		planned *= partialFrac
	}

	// --- Step 2: earned income ---
	var earned float64
	if age >= cfg.EarnedIncomeStartAge && age <= cfg.EarnedIncomeEndAge {
		earned = cfg.EarnedIncomeAnnualReal
		if isFirstYear {
			earned *= partialFrac
		}
	}
	var ssIncome float64
	if age >= cfg.SSStartAge {
		ssIncome = cfg.SSAnnualReal
	}

	// --- Step 4: loan payment, pre-RM-open ---
	if age < rmOpenAge && ens.loanBalance[i] > 0 && yearIdx < cfg.LoanTermYears {
		need := annualLoanPayment
		need -= takeOne(&ens.cash[i], need)
		need -= takeOne(&ens.baseTreas[i], need)
		need -= takeOne(&ens.risky[i], need)
		if need > 0 && ddEntry >= cfg.LoanBucketUseDD {
			need -= takeOne(&ens.loanBucket[i], need)
		}
		if need > 1e-6 {
			ens.fail(i, age, failLoanPaymentNotFund)
			return
		}
		interest := ens.loanBalance[i] * cfg.LoanRealRate
		principalComp := annualLoanPayment - interest
		if principalComp > ens.loanBalance[i] {
			principalComp = ens.loanBalance[i]
		}
		if principalComp > 0 {
			ens.loanBalance[i] -= principalComp
		}
	}

	// --- Step 5: drawdown ---
	dd := drawdownFrac(ens.risky[i], ens.hwmRisky[i])

	// --- Step 6: guardrails flex split ---
	fFlex := fPre
	if age >= cfg.SSStartAge {
		fFlex = fPost
	}
	flexAmt := math.Min(fFlex*planned, planned)
	floorAmt := planned - flexAmt
	cut := cutFraction(dd, cfg.DD1, cfg.DD2, cfg.Cut1, cfg.Cut2)
	desiredSpend := floorAmt + flexAmt*(1-cut)

	// --- Step 3 (continued) / Step 7: floor enforcement + income netting ---
	floorThisYear := cfg.FloorAnnualReal * partialFrac
	assetSpendTarget := math.Max(desiredSpend, floorThisYear)

	var assetNeed, surplus float64
	if cfg.IncomeAppliesToActualSpend {
		income := ssIncome + earned
		assetNeed = math.Max(0, assetSpendTarget-income)
		surplus = income - assetSpendTarget
	} else {
		assetNeed = math.Max(0, assetSpendTarget-earned)
		surplus = earned - assetSpendTarget
		if !cfg.AllowSurplusSavings {
			surplus = 0
		}
	}
	if surplus > 0 {
		ens.investSurplus(cfg, i, surplus)
	}

	// --- Step 8: funding order ---
	residual := assetNeed
	residual -= takeOne(&ens.cash[i], residual)
	residual -= takeOne(&ens.baseTreas[i], residual)
	if residual > 0 && dd >= cfg.LoanBucketUseDD {
		cap := cfg.LoanBucketPartialCover * residual
		residual -= takeOne(&ens.loanBucket[i], math.Min(cap, residual))
	}
	if residual > 0 && age >= rmOpenAge && dd >= cfg.DD2 {
		cap := math.Min(cfg.RMPartialCover*residual, ens.rmLimit[i]-ens.rmBalance[i])
		draw := math.Min(cap, residual)
		if draw > 0 {
			ens.rmBalance[i] += draw
			ens.anyRMDraw[i] = true
			residual -= draw
		}
	}
	residual -= takeOne(&ens.risky[i], residual)
	if residual > 0 {
		avail := ens.rmLimit[i] - ens.rmBalance[i]
		draw := math.Min(avail, residual)
		if draw > 0 {
			ens.rmBalance[i] += draw
			ens.anyRMDraw[i] = true
			residual -= draw
		}
	}
	if residual > 0 {
		residual -= takeOne(&ens.loanBucket[i], residual)
	}
	if residual > 1e-6 {
		ens.fail(i, age, failFloorNotFundable)
		return
	}

	// --- Step 9: RM open / lien payoff ---
	if age == rmOpenAge {
		ens.rmLimit[i] = cfg.HomeValueReal * cfg.RMPLFAtOpen
		if ens.loanBalance[i] > 0 {
			remaining := ens.loanBalance[i]
			if ddEntry <= cfg.PayoffDDThreshold {
				remaining -= takeOne(&ens.risky[i], remaining)
				remaining -= ens.drawRM(i, remaining)
				remaining -= takeOne(&ens.cash[i], remaining)
				remaining -= takeOne(&ens.baseTreas[i], remaining)
				remaining -= takeOne(&ens.loanBucket[i], remaining)
			} else {
				remaining -= ens.drawRM(i, remaining)
				remaining -= takeOne(&ens.risky[i], remaining)
				remaining -= takeOne(&ens.cash[i], remaining)
				remaining -= takeOne(&ens.baseTreas[i], remaining)
				remaining -= takeOne(&ens.loanBucket[i], remaining)
			}
			if remaining > 1e-6 {
				ens.fail(i, age, failLienPayoffIncomplete)
				return
			}
			ens.loanBalance[i] = 0
		}
	}

	// --- Step 10: RM repayment on a new high ---
	ddNow := drawdownFrac(ens.risky[i], ens.hwmRisky[i])
	if ddNow <= rmRepayEpsilon && ens.rmBalance[i] > 0 {
		ens.rmBalance[i] -= takeOne(&ens.risky[i], cfg.RMRepayRate*ens.rmBalance[i])
	}

	// --- Step 11: reserve refill ---
	ddForRefill := drawdownFrac(ens.risky[i], ens.hwmRisky[i])
	if ddForRefill < cfg.DD1 {
		need := math.Max(0, nextCashTarget-ens.cash[i])
		moved := takeOne(&ens.risky[i], need)
		ens.cash[i] += moved
		need = math.Max(0, nextTreasTarget-ens.baseTreas[i])
		moved = takeOne(&ens.risky[i], need)
		ens.baseTreas[i] += moved
	}

	// --- Step 12: apply returns ---
	ens.risky[i] *= 1 + r
	ens.cash[i] *= 1 + cfg.SafeRealReturn
	ens.baseTreas[i] *= 1 + cfg.SafeRealReturn
	ens.loanBucket[i] *= 1 + cfg.LoanBucketRealReturn
	if age >= rmOpenAge {
		ens.rmLimit[i] *= 1 + cfg.RMLimitRealGrowth
		ens.rmBalance[i] *= 1 + cfg.RMBalRealRate
	}

	// --- Step 13: HWM and metric updates ---
	ddForMetric := drawdownFrac(ens.risky[i], ens.hwmRisky[i])
	if ddForMetric > ens.maxDDRisky[i] {
		ens.maxDDRisky[i] = ddForMetric
	}
	if ens.risky[i] > ens.hwmRisky[i] {
		ens.hwmRisky[i] = ens.risky[i]
	}

	totalNet := ens.cash[i] + ens.baseTreas[i] + ens.risky[i] + ens.loanBucket[i] - ens.loanBalance[i]
	ddTotal := drawdownFrac(totalNet, ens.hwmTotalNet[i])
	if ddTotal > ens.maxDDTotal[i] {
		ens.maxDDTotal[i] = ddTotal
	}
	if totalNet > ens.hwmTotalNet[i] {
		ens.hwmTotalNet[i] = totalNet
	}
}

// drawRM draws up to need from path i's reverse-mortgage line of credit,
// bounded by remaining availability, and records that a draw occurred.
func (ens *ensemble) drawRM(i int, need float64) float64 {
	if need <= 0 {
		return 0
	}
	avail := ens.rmLimit[i] - ens.rmBalance[i]
	draw := math.Min(avail, need)
	if draw <= 0 {
		return 0
	}
	ens.rmBalance[i] += draw
	ens.anyRMDraw[i] = true
	return draw
}

func (ens *ensemble) investSurplus(cfg *ScenarioConfig, i int, surplus float64) {
	if cfg.SurplusAllocation == SurplusRiskyFirst {
		ens.risky[i] += surplus
		return
	}
	ens.cash[i] += surplus
}
