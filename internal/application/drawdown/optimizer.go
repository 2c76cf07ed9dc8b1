package drawdown

import (
	"context"
	"slices"
	"strconv"
)

// maxBoundExpansions caps the upper-bound auto-expansion loop so a
// scenario with a target that's unreachable at any sane E cannot spin
// forever.
const maxBoundExpansions = 6

// objective extracts the scenario's chosen success metric from a probe's
// aggregated result.
func objective(cfg *ScenarioConfig, r *GridPointResult) float64 {
	switch cfg.OptimizeSuccessMetric {
	case MetricAge99:
		return r.PSuccessToAge99
	case MetricBothMin:
		return min(r.PSuccessDeathWeighted, r.PSuccessToAge99)
	case MetricBothWeighted:
		return cfg.BothWeight*r.PSuccessDeathWeighted + (1-cfg.BothWeight)*r.PSuccessToAge99
	default:
		return r.PSuccessDeathWeighted
	}
}

// evalFunc probes the kernel+aggregator at a given spending level E; wired
// up by the grid driver so the optimizer never has to know about the
// returns matrix or grid-point identity.
type evalFunc func(e int) GridPointResult

// optimize drives the spending-level search: in mode single it evaluates
// once at e_fixed; in mode optimize it binary-searches [e_lo, e_hi]
// (auto-expanding the upper bound) for the largest E whose objective still
// meets target. Cancellation is checked at each probe boundary; a
// cancelled search returns the best result found so far.
func optimize(ctx context.Context, cfg *ScenarioConfig, eval evalFunc) GridPointResult {
	if cfg.Mode == ModeSingle {
		result := eval(cfg.EFixed)
		e := cfg.EFixed
		result.ERealPerYear = &e
		return result
	}

	target := cfg.TargetSuccessDeathWeighted
	lo, hi := cfg.ELo, cfg.EHi

	hiResult := eval(hi)
	expansions := 0
	for ctx.Err() == nil && objective(cfg, &hiResult) >= target && expansions < maxBoundExpansions {
		span := hi - lo
		if span <= 0 {
			span = 1
		}
		hi += span
		hiResult = eval(hi)
		expansions++
	}
	if expansions > 0 {
		hiResult.OptimizerNotes = append(hiResult.OptimizerNotes, noteUpperBoundExpanded(expansions))
	}

	loResult := eval(lo)
	loMeets := objective(cfg, &loResult) >= target
	hiMeets := objective(cfg, &hiResult) >= target

	var best int
	var bestResult GridPointResult
	switch {
	case loMeets && hiMeets:
		// Tie-break: prefer the higher E when both endpoints meet target.
		best, bestResult = hi, hiResult
	case !loMeets && !hiMeets:
		// Neither meets target: best-effort, prefer whichever is closer.
		if distanceToTarget(cfg, &hiResult, target) <= distanceToTarget(cfg, &loResult, target) {
			best, bestResult = hi, hiResult
		} else {
			best, bestResult = lo, loResult
		}
		bestResult.OptimizerNotes = append(bestResult.OptimizerNotes, "non_convergent")
	default:
		// Exactly one of lo, hi meets target. objective is non-increasing
		// in E in the ordinary case (lo meets, hi doesn't), but binarySearch
		// is written direction-agnostic so either orientation narrows
		// correctly.
		okE, okResult, failE, failResult := hi, hiResult, lo, loResult
		if loMeets {
			okE, okResult, failE, failResult = lo, loResult, hi, hiResult
		}
		best, bestResult = binarySearch(ctx, cfg, eval, okE, failE, okResult, failResult, target)
	}
	// The expansion note rides hiResult; carry it onto a result taken from
	// the lo side of the search too.
	if note := noteUpperBoundExpanded(expansions); expansions > 0 && !slices.Contains(bestResult.OptimizerNotes, note) {
		bestResult.OptimizerNotes = append(bestResult.OptimizerNotes, note)
	}

	e := best
	bestResult.MaxERealPerYear = &e
	return bestResult
}

func distanceToTarget(cfg *ScenarioConfig, r *GridPointResult, target float64) float64 {
	d := target - objective(cfg, r)
	if d < 0 {
		d = -d
	}
	return d
}

func noteUpperBoundExpanded(n int) string {
	return "upper_bound_expanded:" + strconv.Itoa(n)
}

// binarySearch narrows between an endpoint known to meet target (okE) and
// one known not to (failE), across e_search_iters rounds.
// It makes no assumption about which of okE, failE is larger, so it
// narrows correctly whether objective is increasing or decreasing in E.
func binarySearch(ctx context.Context, cfg *ScenarioConfig, eval evalFunc, okE, failE int, okResult, failResult GridPointResult, target float64) (int, GridPointResult) {
	for iter := 0; iter < cfg.ESearchIters && abs(okE-failE) > 1 && ctx.Err() == nil; iter++ {
		mid := okE + (failE-okE)/2
		midResult := eval(mid)
		if objective(cfg, &midResult) >= target {
			okE, okResult = mid, midResult
		} else {
			failE, failResult = mid, midResult
		}
	}
	return okE, okResult
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
