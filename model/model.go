// Package model provides the classifiers the evaluation pipeline trains.
//
// Everything downstream depends only on the Model and Estimator interfaces,
// so any predictor can be substituted for the built-in ones. Fits are
// deterministic: weights start at zero and gradient descent runs a fixed
// number of epochs, so the same data and options always produce the same
// model.
package model

import (
	"context"
	"errors"
	"sort"

	"github.com/samzhang111/icgauge/dataset"
)

var (
	// ErrNotFitted is returned by Predict on a model that was never fitted.
	ErrNotFitted = errors.New("model: not fitted")

	// ErrInsufficientData is returned by Fit when the training data cannot
	// support the model, e.g. no rows or a single distinct class.
	ErrInsufficientData = errors.New("model: insufficient data")

	// ErrUnknownParam is returned by SetParam for parameter names the
	// estimator does not expose.
	ErrUnknownParam = errors.New("model: unknown parameter")
)

// Model scores feature rows. Predictions are values from the label
// transform's domain, one per row.
type Model interface {
	Predict(x *dataset.Matrix) ([]float64, error)
}

// Estimator is a Model that can be fitted, re-parameterized, and cloned in
// an unfitted state. Grid search relies on Clone and SetParam to evaluate
// candidate configurations independently.
type Estimator interface {
	Model
	Fit(ctx context.Context, x *dataset.Matrix, y []float64) error
	SetParam(name string, value any) error
	Clone() Estimator
}

// distinctClasses returns the sorted distinct values of y.
func distinctClasses(y []float64) []float64 {
	seen := make(map[float64]struct{}, len(y))
	for _, v := range y {
		seen[v] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Float64s(classes)
	return classes
}

// classIndex maps each class value to its position in classes.
func classIndex(classes []float64) map[float64]int {
	idx := make(map[float64]int, len(classes))
	for i, v := range classes {
		idx[v] = i
	}
	return idx
}
