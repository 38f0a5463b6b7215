package icgauge

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with icgauge-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTrial adds a trial number field to the logger.
func (l *Logger) WithTrial(trial int) *Logger {
	return &Logger{
		Logger: l.Logger.With("trial", trial),
	}
}

// WithExperiment adds an experiment name field to the logger.
func (l *Logger) WithExperiment(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("experiment", name),
	}
}

// LogBuild logs a dataset build.
func (l *Logger) LogBuild(ctx context.Context, rows, features int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset build failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "dataset built",
			"rows", rows,
			"features", features,
		)
	}
}

// LogFit logs a cross-validated model fit.
func (l *Logger) LogFit(ctx context.Context, params map[string]any, score float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model fit failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "grid search completed",
			"best_params", params,
			"best_score", score,
		)
	}
}

// LogTrial logs one evaluation trial.
func (l *Logger) LogTrial(ctx context.Context, trial, assessed int, correlation, alpha float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "trial failed",
			"trial", trial,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "trial completed",
			"trial", trial,
			"assessed", assessed,
			"correlation", correlation,
			"alpha", alpha,
		)
	}
}

// LogRun logs a whole iterated evaluation.
func (l *Logger) LogRun(ctx context.Context, iterations, details int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluation failed",
			"iterations", iterations,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "evaluation completed",
			"iterations", iterations,
			"details", details,
		)
	}
}
