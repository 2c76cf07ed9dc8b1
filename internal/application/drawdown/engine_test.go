package drawdown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngineRunIsDeterministicAcrossRuns(t *testing.T) {
	cfg := baseScenario()
	cfg.NSims = 150

	engine := NewEngine(zap.NewNop(), 3)
	first := engine.Run(context.Background(), RunRequest{Scenario: cfg}, nil)
	second := engine.Run(context.Background(), RunRequest{Scenario: cfg}, nil)

	require.Equal(t, StatusCompleted, first.Status)
	require.Equal(t, StatusCompleted, second.Status)
	assert.Equal(t, first.Results, second.Results)
}

func TestEngineRunProducesCartesianOrder(t *testing.T) {
	cfg := baseScenario()
	cfg.NSims = 20
	cfg.StartPortfolios = []float64{500000, 1500000}
	cfg.ReserveYearsList = []int{0, 3}
	cfg.LoanAmounts = []float64{0, 50000}

	engine := NewEngine(zap.NewNop(), 4)
	resp := engine.Run(context.Background(), RunRequest{Scenario: cfg}, nil)

	require.Equal(t, StatusCompleted, resp.Status)
	require.Equal(t, 8, resp.TotalGridPoints)
	require.Len(t, resp.Results, 8)

	idx := 0
	for _, sp := range cfg.StartPortfolios {
		for _, ry := range cfg.ReserveYearsList {
			for _, la := range cfg.LoanAmounts {
				r := resp.Results[idx]
				assert.Equal(t, sp, r.StartPortfolio)
				assert.Equal(t, ry, r.ReserveYears)
				assert.Equal(t, la, r.LoanAmount)
				idx++
			}
		}
	}
}

func TestEngineRunSurfacesValidationErrorAsFailed(t *testing.T) {
	cfg := baseScenario()
	cfg.NSims = 0 // invalid

	engine := NewEngine(zap.NewNop(), 1)
	resp := engine.Run(context.Background(), RunRequest{Scenario: cfg}, nil)

	assert.Equal(t, StatusFailed, resp.Status)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, resp.Results)
}

func TestEngineRunHonorsCancellation(t *testing.T) {
	cfg := baseScenario()
	cfg.NSims = 50
	cfg.StartPortfolios = []float64{500000, 1000000, 1500000, 2000000}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(zap.NewNop(), 2)
	resp := engine.Run(ctx, RunRequest{Scenario: cfg}, nil)

	assert.Equal(t, StatusCancelled, resp.Status)
	assert.Equal(t, 4, resp.TotalGridPoints)
}

func TestEngineRunProgressCallbackPanicDoesNotAbortRun(t *testing.T) {
	cfg := baseScenario()
	cfg.NSims = 20

	engine := NewEngine(zap.NewNop(), 1)
	panicky := func(GridPointResult) { panic("boom") }

	resp := engine.Run(context.Background(), RunRequest{Scenario: cfg}, panicky)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Len(t, resp.Results, 1)
}

func TestEngineDefaultsWorkersFromGOMAXPROCS(t *testing.T) {
	engine := NewEngine(nil, 0)
	assert.Greater(t, engine.workers, 0)
}

func TestEngineRunCompletesWithinReasonableTime(t *testing.T) {
	cfg := baseScenario()
	cfg.NSims = 500
	cfg.StartPortfolios = []float64{800000, 1200000}

	engine := NewEngine(zap.NewNop(), 4)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	resp := engine.Run(ctx, RunRequest{Scenario: cfg}, nil)
	assert.Equal(t, StatusCompleted, resp.Status)
}
