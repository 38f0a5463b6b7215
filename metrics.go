package icgauge

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// metrics/prometheus for a ready-made Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after each dataset build.
	// duration is the total time taken, err is nil if successful.
	RecordBuild(duration time.Duration, err error)

	// RecordFit is called after each model fit (including grid search).
	RecordFit(duration time.Duration, err error)

	// RecordTrial is called after each evaluation trial.
	RecordTrial(duration time.Duration, err error)

	// RecordRun is called after each iterated evaluation.
	// iterations is the number of trials attempted.
	RecordRun(iterations int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(time.Duration, error)    {}
func (NoopMetricsCollector) RecordFit(time.Duration, error)      {}
func (NoopMetricsCollector) RecordTrial(time.Duration, error)    {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	FitCount        atomic.Int64
	FitErrors       atomic.Int64
	FitTotalNanos   atomic.Int64
	TrialCount      atomic.Int64
	TrialErrors     atomic.Int64
	TrialTotalNanos atomic.Int64
	RunCount        atomic.Int64
	RunErrors       atomic.Int64
	RunIterations   atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
	}
}

// RecordTrial implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrial(duration time.Duration, err error) {
	b.TrialCount.Add(1)
	b.TrialTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrialErrors.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(iterations int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunIterations.Add(int64(iterations))
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:    b.BuildCount.Load(),
		BuildErrors:   b.BuildErrors.Load(),
		BuildAvgNanos: avgNanos(&b.BuildTotalNanos, &b.BuildCount),
		FitCount:      b.FitCount.Load(),
		FitErrors:     b.FitErrors.Load(),
		FitAvgNanos:   avgNanos(&b.FitTotalNanos, &b.FitCount),
		TrialCount:    b.TrialCount.Load(),
		TrialErrors:   b.TrialErrors.Load(),
		TrialAvgNanos: avgNanos(&b.TrialTotalNanos, &b.TrialCount),
		RunCount:      b.RunCount.Load(),
		RunErrors:     b.RunErrors.Load(),
		RunIterations: b.RunIterations.Load(),
	}
}

func avgNanos(total, count *atomic.Int64) int64 {
	c := count.Load()
	if c == 0 {
		return 0
	}
	return total.Load() / c
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount    int64
	BuildErrors   int64
	BuildAvgNanos int64
	FitCount      int64
	FitErrors     int64
	FitAvgNanos   int64
	TrialCount    int64
	TrialErrors   int64
	TrialAvgNanos int64
	RunCount      int64
	RunErrors     int64
	RunIterations int64
}
