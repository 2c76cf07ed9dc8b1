package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"drawdown-engine/internal/application/drawdown"
)

// newEngineLogger builds the structured logger injected into the
// simulation engine. HTTP request/lifecycle logging stays on the plain
// log package (see main.go); this logger is specific to engine-internal
// events (grid-run start/finish, progress-callback panics).
func newEngineLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// newDrawdownEngine constructs the engine with a worker count of zero,
// which Engine interprets as GOMAXPROCS(0) (one worker per available CPU).
func newDrawdownEngine(logger *zap.Logger) *drawdown.Engine {
	return drawdown.NewEngine(logger, 0)
}
