// Package prometheus exports experiment metrics as Prometheus collectors.
//
// Collector implements icgauge.MetricsCollector. It is created unregistered;
// call Register before serving the metrics endpoint:
//
//	collector := icprom.NewCollector()
//	if err := collector.Register(prometheus.DefaultRegisterer); err != nil {
//	    return err
//	}
//	exp, err := icgauge.New(reader, icgauge.WithMetricsCollector(collector))
//	http.Handle("/metrics", promhttp.Handler())
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/samzhang111/icgauge"
)

// Metric names as constants for consistency.
const (
	MetricOperationsTotal  = "icgauge_operations_total"
	MetricOperationLatency = "icgauge_operation_latency_seconds"
	MetricRunTrialsTotal   = "icgauge_run_trials_total"
)

// Operation label values.
const (
	OpBuild = "build"
	OpFit   = "fit"
	OpTrial = "trial"
	OpRun   = "run"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector implements icgauge.MetricsCollector on Prometheus collectors.
// All operations are thread-safe.
type Collector struct {
	opsTotal  *prometheus.CounterVec
	opLatency *prometheus.HistogramVec
	runTrials prometheus.Counter
}

var _ icgauge.MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector with all metrics initialized.
// The metrics are not registered; call Register to register them with a
// registry.
func NewCollector() *Collector {
	return &Collector{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricOperationsTotal,
				Help: "Total pipeline operations by operation and status",
			},
			[]string{"op", "status"},
		),
		opLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricOperationLatency,
				Help:    "Latency of pipeline operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
			},
			[]string{"op"},
		),
		runTrials: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRunTrialsTotal,
				Help: "Total trials attempted across iterated runs",
			},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, collector := range c.Collectors() {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors, for registration and tests.
func (c *Collector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.opsTotal,
		c.opLatency,
		c.runTrials,
	}
}

// RecordBuild implements icgauge.MetricsCollector.
func (c *Collector) RecordBuild(duration time.Duration, err error) {
	c.observe(OpBuild, duration, err)
}

// RecordFit implements icgauge.MetricsCollector.
func (c *Collector) RecordFit(duration time.Duration, err error) {
	c.observe(OpFit, duration, err)
}

// RecordTrial implements icgauge.MetricsCollector.
func (c *Collector) RecordTrial(duration time.Duration, err error) {
	c.observe(OpTrial, duration, err)
}

// RecordRun implements icgauge.MetricsCollector.
func (c *Collector) RecordRun(iterations int, duration time.Duration, err error) {
	c.observe(OpRun, duration, err)
	c.runTrials.Add(float64(iterations))
}

func (c *Collector) observe(op string, duration time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	c.opsTotal.WithLabelValues(op, status).Inc()
	c.opLatency.WithLabelValues(op).Observe(duration.Seconds())
}
