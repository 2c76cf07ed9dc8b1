package drawdown

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// gridJob is one Cartesian triple awaiting evaluation.
type gridJob struct {
	index          int
	startPortfolio float64
	reserveYears   int
	loanAmount     float64
}

// Engine is the grid driver: it fans a scenario's Cartesian grid out
// across a worker pool, delegates each point to the optimizer, and
// collects results in Cartesian order. Grid points have uneven evaluation
// cost (each runs its own optimizer search), so jobs are drained from a
// channel by a fixed worker pool rather than pre-split into index ranges.
type Engine struct {
	logger  *zap.Logger
	workers int
}

// NewEngine constructs an Engine. A nil logger is replaced with a no-op
// logger so the engine is safe to use in tests without wiring logging.
func NewEngine(logger *zap.Logger, workers int) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{logger: logger, workers: workers}
}

// Run evaluates every grid point in req.Scenario and returns the collected
// results in Cartesian order: outermost start_portfolios, then
// reserve_years_list, then loan_amounts. Cancellation via ctx is checked
// at grid-point boundaries; a cancelled run returns whatever completed.
func (e *Engine) Run(ctx context.Context, req RunRequest, progress ProgressFunc) RunResponse {
	scenario := req.Scenario
	if err := scenario.Validate(); err != nil {
		return RunResponse{RunID: req.RunID, Status: StatusFailed, Error: err.Error()}
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	jobs := buildJobs(&scenario)
	total := len(jobs)
	results := make([]GridPointResult, total)
	completed := make([]bool, total)

	e.logger.Info("starting grid run",
		zap.String("run_id", runID),
		zap.Int("total_grid_points", total),
		zap.Int("n_sims", scenario.NSims),
		zap.Int("workers", e.workers),
	)

	jobCh := make(chan gridJob, total)
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	var wg sync.WaitGroup
	var internalErr error
	var errMu sync.Mutex

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if ctx.Err() != nil {
					continue
				}
				result, err := e.evalGridPointSafe(ctx, &scenario, job)
				if err != nil {
					errMu.Lock()
					if internalErr == nil {
						internalErr = err
					}
					errMu.Unlock()
					continue
				}
				results[job.index] = result
				completed[job.index] = true
				if len(result.FailureBreakdown) > 0 {
					e.logger.Debug("grid point failure breakdown",
						zap.String("run_id", runID),
						zap.Int("grid_index", job.index),
						zap.Float64("start_portfolio", job.startPortfolio),
						zap.Int("reserve_years", job.reserveYears),
						zap.Float64("loan_amount", job.loanAmount),
						zap.Any("failures", result.FailureBreakdown),
					)
				}
				e.reportProgress(progress, result)
			}
		}()
	}
	wg.Wait()

	if internalErr != nil {
		e.logger.Error("grid run failed", zap.String("run_id", runID), zap.Error(internalErr))
		return RunResponse{RunID: runID, Status: StatusFailed, Error: internalErr.Error(), TotalGridPoints: total}
	}

	// A cancelled run reports only the grid points that finished, still in
	// Cartesian order.
	status := StatusCompleted
	finished := make([]GridPointResult, 0, total)
	for i, ok := range completed {
		if ok {
			finished = append(finished, results[i])
		}
	}
	if len(finished) < total {
		status = StatusCancelled
		results = finished
	}

	e.logger.Info("grid run complete",
		zap.String("run_id", runID),
		zap.String("status", string(status)),
		zap.Int("results", len(results)),
	)

	return RunResponse{RunID: runID, Status: status, Results: results, TotalGridPoints: total}
}

// buildJobs enumerates the Cartesian product in its normative order:
// outermost start_portfolios, then reserve_years_list, then loan_amounts.
func buildJobs(cfg *ScenarioConfig) []gridJob {
	jobs := make([]gridJob, 0, len(cfg.StartPortfolios)*len(cfg.ReserveYearsList)*len(cfg.LoanAmounts))
	idx := 0
	for _, sp := range cfg.StartPortfolios {
		for _, ry := range cfg.ReserveYearsList {
			for _, la := range cfg.LoanAmounts {
				jobs = append(jobs, gridJob{index: idx, startPortfolio: sp, reserveYears: ry, loanAmount: la})
				idx++
			}
		}
	}
	return jobs
}

// evalGridPointSafe wraps evalGridPoint with a recover so a panic deep in
// the kernel becomes an InternalError instead of crashing the worker pool.
func (e *Engine) evalGridPointSafe(ctx context.Context, cfg *ScenarioConfig, job gridJob) (result GridPointResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InternalError{Cause: fmt.Errorf("panic in grid point %d: %v", job.index, r)}
		}
	}()
	result = e.evalGridPoint(ctx, cfg, job)
	return result, nil
}

func (e *Engine) evalGridPoint(ctx context.Context, cfg *ScenarioConfig, job gridJob) GridPointResult {
	years := 99 - cfg.StartAge + 1
	if years < 1 {
		years = 1
	}
	returns := generateReturns(cfg.Seed, cfg.NSims, years, cfg.ReturnMuReal, cfg.ReturnVolReal)

	eval := func(spend int) GridPointResult {
		ens := runKernel(cfg, job.startPortfolio, job.reserveYears, job.loanAmount, spend, returns)
		return aggregate(ens, cfg.StartAge)
	}

	result := optimize(ctx, cfg, eval)
	result.StartPortfolio = job.startPortfolio
	result.ReserveYears = job.reserveYears
	result.LoanAmount = job.loanAmount
	return result
}

// reportProgress invokes the optional progress callback, guaranteeing a
// slow or panicking callback cannot corrupt or abort the run.
func (e *Engine) reportProgress(progress ProgressFunc, result GridPointResult) {
	if progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("progress callback panicked, ignoring", zap.Any("recovered", r))
		}
	}()
	progress(result)
}
