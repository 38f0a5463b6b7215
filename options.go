package icgauge

import (
	"log/slog"

	"github.com/samzhang111/icgauge/corpus"
	"github.com/samzhang111/icgauge/feature"
	"github.com/samzhang111/icgauge/label"
)

type options struct {
	assessReader     corpus.Reader
	extractors       []feature.Extractor
	transform        label.Transform
	trainFunc        TrainFunc
	scoreFunc        ScoreFunc
	trainFraction    float64
	iterations       int
	seed             int64
	seeded           bool
	verbose          bool
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Experiment construction.
type Option func(*options)

// WithAssessReader configures a fixed assessment corpus. When set, every
// trial assesses against this corpus (built through the training schema)
// instead of randomly splitting the training data.
func WithAssessReader(r corpus.Reader) Option {
	return func(o *options) {
		o.assessReader = r
	}
}

// WithExtractors configures the feature extractors applied to every example.
// The default is the full built-in catalogue.
func WithExtractors(extractors ...feature.Extractor) Option {
	return func(o *options) {
		o.extractors = extractors
	}
}

// WithLabelTransform configures how human scores become training labels.
// The default keeps judged 1..7 scores as-is.
func WithLabelTransform(t label.Transform) Option {
	return func(o *options) {
		if t == nil {
			t = label.Identity()
		}
		o.transform = t
	}
}

// WithTrainFunc configures the model training function. The default is
// cross-validated logistic regression over the standard grid.
func WithTrainFunc(fn TrainFunc) Option {
	return func(o *options) {
		o.trainFunc = fn
	}
}

// WithScoreFunc configures the per-trial association statistic.
// The default is Pearson's r.
func WithScoreFunc(fn ScoreFunc) Option {
	return func(o *options) {
		o.scoreFunc = fn
	}
}

// WithTrainFraction configures the share of examples used for training when
// splitting. Must be in (0, 1); the default is 0.7.
func WithTrainFraction(fraction float64) Option {
	return func(o *options) {
		o.trainFraction = fraction
	}
}

// WithIterations configures how many trials a run performs. The default
// is 10.
func WithIterations(n int) Option {
	return func(o *options) {
		o.iterations = n
	}
}

// WithSeed seeds the train/assess splitter for reproducible runs.
//
// Unseeded runs (the default) draw a different random split every trial;
// that randomness is the variance-estimation mechanism, so seed only when
// reproducibility matters more than split independence.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithVerbose enables throttled progress logging during a run.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.verbose = verbose
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &icgauge.BasicMetricsCollector{}
//	exp, _ := icgauge.New(reader, icgauge.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := icgauge.NewJSONLogger(slog.LevelInfo)
//	exp, _ := icgauge.New(reader, icgauge.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		extractors:       feature.Catalogue(),
		transform:        label.Identity(),
		trainFraction:    0.7,
		iterations:       10,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
