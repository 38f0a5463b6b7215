// Package crossval selects model hyperparameters by exhaustive k-fold grid
// search.
//
// Everything here is deterministic: folds are contiguous and unshuffled,
// the grid is enumerated in a fixed order, and score ties keep the first
// enumerated configuration. Two searches over the same data and grid pick
// the same winner.
package crossval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/samzhang111/icgauge/dataset"
	"github.com/samzhang111/icgauge/model"
)

// Fold is one train/assess partition of row indices.
type Fold struct {
	Train  []int
	Assess []int
}

// KFold partitions n rows into k contiguous folds without shuffling. Fold
// sizes differ by at most one, larger folds first. A fold count above n is
// an insufficient-data error.
func KFold(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("crossval: fold count must be at least 2, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("%w: fold count %d exceeds %d examples", model.ErrInsufficientData, k, n)
	}

	folds := make([]Fold, 0, k)
	size, rem := n/k, n%k
	start := 0
	for f := 0; f < k; f++ {
		end := start + size
		if f < rem {
			end++
		}

		assess := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			assess = append(assess, i)
		}
		train := make([]int, 0, n-len(assess))
		for i := 0; i < start; i++ {
			train = append(train, i)
		}
		for i := end; i < n; i++ {
			train = append(train, i)
		}

		folds = append(folds, Fold{Train: train, Assess: assess})
		start = end
	}
	return folds, nil
}

// Result is the outcome of a grid search: the refit model, the winning
// configuration, and its mean cross-validated score.
type Result struct {
	Model  model.Estimator
	Params Params
	Score  float64
}

// Fit cross-validates every grid configuration on (x, y) and refits the
// winner on the full data. The winner has the highest mean score across
// folds; a defined score always beats NaN, and ties keep the first
// enumerated configuration.
//
// A fold whose training rows collapse to a single class surfaces the
// estimator's insufficient-data error. That is fatal to the whole search,
// not silently skipped.
func Fit(ctx context.Context, x *dataset.Matrix, y []float64, base model.Estimator, foldCount int, grid Grid, scoring Scoring) (*Result, error) {
	if base == nil {
		return nil, errors.New("crossval: nil base estimator")
	}
	if scoring == nil {
		return nil, errors.New("crossval: nil scoring")
	}
	if x.Rows() != len(y) {
		return nil, fmt.Errorf("crossval: %d rows but %d labels", x.Rows(), len(y))
	}

	folds, err := KFold(len(y), foldCount)
	if err != nil {
		return nil, err
	}
	configs, err := grid.Enumerate()
	if err != nil {
		return nil, err
	}

	var best *Result
	for _, params := range configs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mean, err := crossValidate(ctx, x, y, base, folds, params, scoring)
		if err != nil {
			return nil, err
		}
		if best == nil || better(mean, best.Score) {
			best = &Result{Params: params, Score: mean}
		}
	}

	final := base.Clone()
	if err := applyParams(final, best.Params); err != nil {
		return nil, err
	}
	if err := final.Fit(ctx, x, y); err != nil {
		return nil, fmt.Errorf("crossval: refit: %w", err)
	}
	best.Model = final
	return best, nil
}

func crossValidate(ctx context.Context, x *dataset.Matrix, y []float64, base model.Estimator, folds []Fold, params Params, scoring Scoring) (float64, error) {
	var sum float64
	for i, fold := range folds {
		est := base.Clone()
		if err := applyParams(est, params); err != nil {
			return 0, err
		}

		if err := est.Fit(ctx, x.SelectRows(fold.Train), selectLabels(y, fold.Train)); err != nil {
			return 0, fmt.Errorf("crossval: fold %d: %w", i, err)
		}
		preds, err := est.Predict(x.SelectRows(fold.Assess))
		if err != nil {
			return 0, fmt.Errorf("crossval: fold %d: %w", i, err)
		}
		sum += scoring(selectLabels(y, fold.Assess), preds)
	}
	return sum / float64(len(folds)), nil
}

// applyParams sets parameters in sorted name order.
func applyParams(est model.Estimator, params Params) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := est.SetParam(name, params[name]); err != nil {
			return err
		}
	}
	return nil
}

func selectLabels(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}

// better reports whether score a should displace current best b. NaN never
// displaces, and anything defined displaces NaN.
func better(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
