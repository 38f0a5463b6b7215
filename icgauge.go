package icgauge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/samzhang111/icgauge/corpus"
	"github.com/samzhang111/icgauge/crossval"
	"github.com/samzhang111/icgauge/dataset"
	"github.com/samzhang111/icgauge/feature"
	"github.com/samzhang111/icgauge/label"
	"github.com/samzhang111/icgauge/model"
	"github.com/samzhang111/icgauge/results"
	"github.com/samzhang111/icgauge/stats"
)

// TrainFunc fits a model on training rows. Implementations may run their own
// hyperparameter search; see CrossValidatedTrainFunc.
type TrainFunc func(ctx context.Context, x *dataset.Matrix, y []float64) (model.Model, error)

// ScoreFunc computes the per-trial association statistic between true and
// predicted labels. An undefined statistic is NaN, never an error.
type ScoreFunc func(yTrue, yPred []float64) float64

// DefaultFoldCount is the fold count used by the default training function.
const DefaultFoldCount = 5

// DefaultGrid returns the hyperparameter grid searched by the default
// training function.
func DefaultGrid() crossval.Grid {
	return crossval.Grid{
		"fit_intercept": []any{true, false},
		"C":             []any{0.4, 0.6, 0.8, 1.0, 2.0, 3.0},
		"penalty":       []any{"l1", "l2"},
	}
}

// PearsonScoreFunc returns the default score function: Pearson's r, NaN when
// either sequence has zero variance.
func PearsonScoreFunc() ScoreFunc {
	return func(yTrue, yPred []float64) float64 {
		v, err := stats.Pearson(yTrue, yPred)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// CrossValidatedTrainFunc builds a TrainFunc that selects hyperparameters by
// k-fold grid search and refits the winner on the full training data. The
// winning parameters and score are logged through the given logger.
func CrossValidatedTrainFunc(base model.Estimator, foldCount int, grid crossval.Grid, scoring crossval.Scoring, logger *Logger) TrainFunc {
	if logger == nil {
		logger = NoopLogger()
	}
	return func(ctx context.Context, x *dataset.Matrix, y []float64) (model.Model, error) {
		res, err := crossval.Fit(ctx, x, y, base, foldCount, grid, scoring)
		if err != nil {
			logger.LogFit(ctx, nil, 0, err)
			return nil, err
		}
		logger.LogFit(ctx, res.Params, res.Score, nil)
		return res.Model, nil
	}
}

// Experiment is an iterated evaluation of feature extractors against human
// integrative-complexity scores. Each trial builds a dataset, trains a model,
// predicts on held-out examples, and records correlation and reliability
// statistics.
type Experiment struct {
	trainReader   corpus.Reader
	assessReader  corpus.Reader
	extractors    []feature.Extractor
	transform     label.Transform
	trainFunc     TrainFunc
	scoreFunc     ScoreFunc
	trainFraction float64
	iterations    int
	rng           *rand.Rand
	verbose       bool
	progress      rate.Sometimes
	metrics       MetricsCollector
	logger        *Logger
}

// New creates an Experiment over the given training corpus.
func New(trainReader corpus.Reader, optFns ...Option) (*Experiment, error) {
	if trainReader == nil {
		return nil, errors.New("icgauge: nil train reader")
	}

	opts := applyOptions(optFns)
	if opts.trainFraction <= 0 || opts.trainFraction >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidTrainFraction, opts.trainFraction)
	}
	if opts.iterations <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, opts.iterations)
	}
	if len(opts.extractors) == 0 {
		return nil, errors.New("icgauge: no extractors configured")
	}

	trainFunc := opts.trainFunc
	if trainFunc == nil {
		trainFunc = CrossValidatedTrainFunc(model.NewLogisticRegression(), DefaultFoldCount, DefaultGrid(), crossval.F1Macro(), opts.logger)
	}
	scoreFunc := opts.scoreFunc
	if scoreFunc == nil {
		scoreFunc = PearsonScoreFunc()
	}

	// Unseeded by default: every trial draws an independent split, which is
	// how run-to-run variance gets estimated.
	source := rand.NewSource(time.Now().UnixNano())
	if opts.seeded {
		source = rand.NewSource(opts.seed)
	}

	return &Experiment{
		trainReader:   trainReader,
		assessReader:  opts.assessReader,
		extractors:    opts.extractors,
		transform:     opts.transform,
		trainFunc:     trainFunc,
		scoreFunc:     scoreFunc,
		trainFraction: opts.trainFraction,
		iterations:    opts.iterations,
		rng:           rand.New(source),
		verbose:       opts.verbose,
		progress:      rate.Sometimes{First: 1, Interval: time.Second},
		metrics:       opts.metricsCollector,
		logger:        opts.logger,
	}, nil
}

// Run performs the configured number of trials and aggregates their
// statistics. Degenerate trials record NaN and the run continues; invalid
// labels and insufficient data abort the whole run.
func (e *Experiment) Run(ctx context.Context) (*results.AggregateResult, error) {
	start := time.Now()

	agg := &results.AggregateResult{
		Correlations: make([]float64, 0, e.iterations),
		Alphas:       make([]float64, 0, e.iterations),
	}

	var runErr error
	for trial := 0; trial < e.iterations; trial++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if e.verbose {
			e.progress.Do(func() {
				e.logger.InfoContext(ctx, "evaluation progress",
					"trial", trial,
					"iterations", e.iterations,
				)
			})
		}

		res, err := e.runTrial(ctx, trial)
		if err != nil {
			runErr = err
			break
		}

		agg.Correlations = append(agg.Correlations, res.Correlation)
		agg.Alphas = append(agg.Alphas, res.Alpha)
		agg.Confusion = res.Confusion
		agg.Details = append(agg.Details, res.Details...)
	}

	duration := time.Since(start)
	e.metrics.RecordRun(e.iterations, duration, runErr)
	e.logger.LogRun(ctx, e.iterations, len(agg.Details), runErr)
	if runErr != nil {
		return nil, runErr
	}
	return agg, nil
}

// RunOnce performs a single trial and returns its result.
func (e *Experiment) RunOnce(ctx context.Context) (*results.TrialResult, error) {
	return e.runTrial(ctx, 0)
}

// runTrial wraps one trial with metrics and logging. Errors crossing this
// boundary are translated into the package taxonomy.
func (e *Experiment) runTrial(ctx context.Context, trial int) (*results.TrialResult, error) {
	start := time.Now()
	res, err := e.trial(ctx)
	duration := time.Since(start)
	err = translateError(err)
	e.metrics.RecordTrial(duration, err)

	var assessed int
	correlation, alpha := math.NaN(), math.NaN()
	if res != nil {
		assessed = len(res.Details)
		correlation, alpha = res.Correlation, res.Alpha
	}
	e.logger.LogTrial(ctx, trial, assessed, correlation, alpha, err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

// trial performs one build, split-or-reuse, train, predict, score cycle.
func (e *Experiment) trial(ctx context.Context) (*results.TrialResult, error) {
	train, err := e.buildDataset(ctx, e.trainReader, nil)
	if err != nil {
		return nil, err
	}

	var (
		xTrain, xAssess *dataset.Matrix
		yTrain, yAssess []float64
		assessExamples  []corpus.Example
	)
	if e.assessReader == nil {
		sp, err := e.split(train)
		if err != nil {
			return nil, err
		}
		xTrain, yTrain = sp.trainX, sp.trainY
		xAssess, yAssess = sp.assessX, sp.assessY
		assessExamples = sp.assessExamples
	} else {
		// The training schema carries over so feature columns align; names
		// first seen at assessment time stay zero-filled.
		assess, err := e.buildDataset(ctx, e.assessReader, train.Vectorizer)
		if err != nil {
			return nil, err
		}
		xTrain, yTrain = train.X, train.Y
		xAssess, yAssess = assess.X, assess.Y
		assessExamples = assess.Examples
	}

	if len(yAssess) == 0 {
		return nil, fmt.Errorf("%w: assessment set is empty", ErrInsufficientData)
	}

	mod, err := e.fitModel(ctx, xTrain, yTrain)
	if err != nil {
		return nil, err
	}

	preds, err := mod.Predict(xAssess)
	if err != nil {
		return nil, err
	}

	confusion, err := stats.NewConfusionMatrix(yAssess, preds)
	if err != nil {
		return nil, err
	}

	res := &results.TrialResult{
		Correlation: e.scoreFunc(yAssess, preds),
		Alpha:       trialAlpha(yAssess, preds),
		Confusion:   confusion,
		Details:     make([]results.Detail, len(preds)),
	}
	for i, p := range preds {
		res.Details[i] = results.Detail{
			Example:    assessExamples[i].Text,
			Truth:      yAssess[i],
			Prediction: p,
		}
	}
	return res, nil
}

func (e *Experiment) buildDataset(ctx context.Context, reader corpus.Reader, schema *dataset.Vectorizer) (*dataset.Dataset, error) {
	start := time.Now()
	ds, err := dataset.Build(ctx, reader, e.extractors, e.transform, func(o *dataset.BuildOptions) {
		o.Vectorizer = schema
		if e.verbose {
			o.OnCollision = func(name string, kept, incoming float64) {
				e.logger.WarnContext(ctx, "feature name collision",
					"feature", name,
					"kept", math.Max(kept, incoming),
					"discarded", math.Min(kept, incoming),
				)
			}
		}
	})
	duration := time.Since(start)
	e.metrics.RecordBuild(duration, err)

	var rows, features int
	if ds != nil {
		rows, features = ds.X.Rows(), ds.Vectorizer.Len()
	}
	e.logger.LogBuild(ctx, rows, features, err)
	return ds, err
}

func (e *Experiment) fitModel(ctx context.Context, x *dataset.Matrix, y []float64) (model.Model, error) {
	start := time.Now()
	mod, err := e.trainFunc(ctx, x, y)
	duration := time.Since(start)
	if err == nil && mod == nil {
		err = errors.New("icgauge: train function returned no model")
	}
	e.metrics.RecordFit(duration, err)
	return mod, err
}

type splitResult struct {
	trainX, assessX *dataset.Matrix
	trainY, assessY []float64
	assessExamples  []corpus.Example
}

// split partitions the dataset with a fresh random permutation. The train
// side gets floor(fraction*n) rows; both sides must end up non-empty.
func (e *Experiment) split(ds *dataset.Dataset) (*splitResult, error) {
	n := ds.X.Rows()
	trainCount := int(math.Floor(e.trainFraction * float64(n)))
	if trainCount < 1 || n-trainCount < 1 {
		return nil, fmt.Errorf("%w: cannot split %d examples at fraction %g", ErrInsufficientData, n, e.trainFraction)
	}

	perm := e.rng.Perm(n)
	trainIdx := perm[:trainCount]
	assessIdx := perm[trainCount:]

	return &splitResult{
		trainX:         ds.X.SelectRows(trainIdx),
		assessX:        ds.X.SelectRows(assessIdx),
		trainY:         selectFloats(ds.Y, trainIdx),
		assessY:        selectFloats(ds.Y, assessIdx),
		assessExamples: selectExamples(ds.Examples, assessIdx),
	}, nil
}

func selectFloats(xs []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}

func selectExamples(xs []corpus.Example, idx []int) []corpus.Example {
	out := make([]corpus.Example, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}

// trialAlpha computes Cronbach's alpha treating true and predicted labels as
// two raters. Undefined cases are NaN.
func trialAlpha(yTrue, yPred []float64) float64 {
	alpha, err := stats.CronbachAlpha(yTrue, yPred)
	if err != nil && !errors.Is(err, stats.ErrUndefinedStatistic) {
		return math.NaN()
	}
	return alpha
}
