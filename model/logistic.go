package model

import (
	"context"
	"fmt"
	"math"

	"github.com/samzhang111/icgauge/dataset"
)

// Penalty names accepted by the logistic estimators.
const (
	PenaltyL1 = "l1"
	PenaltyL2 = "l2"
)

// LogisticRegressionOptions configures a LogisticRegression.
type LogisticRegressionOptions struct {
	// FitIntercept adds a learned per-class bias term.
	FitIntercept bool

	// C is the inverse regularization strength. Must be positive; smaller
	// values regularize harder.
	C float64

	// Penalty selects the regularizer, PenaltyL1 or PenaltyL2.
	Penalty string

	// LearningRate is the gradient descent step size.
	LearningRate float64

	// Iterations is the fixed number of gradient descent epochs.
	Iterations int
}

// DefaultLogisticRegressionOptions holds the defaults used by
// NewLogisticRegression.
var DefaultLogisticRegressionOptions = LogisticRegressionOptions{
	FitIntercept: true,
	C:            1.0,
	Penalty:      PenaltyL2,
	LearningRate: 0.1,
	Iterations:   500,
}

// LogisticRegression is a multinomial logistic classifier fitted by batch
// gradient descent. Predictions are the argmax class value; ties go to the
// lowest class.
type LogisticRegression struct {
	opts LogisticRegressionOptions

	classes []float64
	weights [][]float64
	bias    []float64
	cols    int
}

var _ Estimator = (*LogisticRegression)(nil)

// NewLogisticRegression creates an unfitted LogisticRegression.
func NewLogisticRegression(optFns ...func(o *LogisticRegressionOptions)) *LogisticRegression {
	opts := DefaultLogisticRegressionOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &LogisticRegression{opts: opts}
}

// Clone implements Estimator. The clone shares options but no fitted state.
func (m *LogisticRegression) Clone() Estimator {
	return &LogisticRegression{opts: m.opts}
}

// SetParam implements Estimator. Accepted names: "fit_intercept" (bool),
// "C" (number), "penalty" ("l1" or "l2"), "learning_rate" (number),
// "iterations" (int).
func (m *LogisticRegression) SetParam(name string, value any) error {
	switch name {
	case "fit_intercept":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("model: fit_intercept wants bool, got %T", value)
		}
		m.opts.FitIntercept = v
	case "C":
		v, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("model: C wants number, got %T", value)
		}
		if v <= 0 {
			return fmt.Errorf("model: C must be positive, got %g", v)
		}
		m.opts.C = v
	case "penalty":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("model: penalty wants string, got %T", value)
		}
		if v != PenaltyL1 && v != PenaltyL2 {
			return fmt.Errorf("model: penalty must be %q or %q, got %q", PenaltyL1, PenaltyL2, v)
		}
		m.opts.Penalty = v
	case "learning_rate":
		v, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("model: learning_rate wants number, got %T", value)
		}
		m.opts.LearningRate = v
	case "iterations":
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("model: iterations wants int, got %T", value)
		}
		m.opts.Iterations = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// Fit implements Estimator. Training needs at least two distinct classes.
func (m *LogisticRegression) Fit(ctx context.Context, x *dataset.Matrix, y []float64) error {
	if x.Rows() != len(y) {
		return fmt.Errorf("model: %d rows but %d labels", x.Rows(), len(y))
	}
	if len(y) == 0 {
		return fmt.Errorf("%w: no training rows", ErrInsufficientData)
	}

	classes := distinctClasses(y)
	if len(classes) < 2 {
		return fmt.Errorf("%w: need at least 2 classes, got %d", ErrInsufficientData, len(classes))
	}
	if m.opts.Penalty != PenaltyL1 && m.opts.Penalty != PenaltyL2 {
		return fmt.Errorf("model: penalty must be %q or %q, got %q", PenaltyL1, PenaltyL2, m.opts.Penalty)
	}
	if m.opts.C <= 0 {
		return fmt.Errorf("model: C must be positive, got %g", m.opts.C)
	}

	var (
		n   = x.Rows()
		d   = x.Cols()
		k   = len(classes)
		idx = classIndex(classes)
	)

	weights := make([][]float64, k)
	grad := make([][]float64, k)
	for c := 0; c < k; c++ {
		weights[c] = make([]float64, d)
		grad[c] = make([]float64, d)
	}
	bias := make([]float64, k)
	gradBias := make([]float64, k)

	logits := make([]float64, k)
	probs := make([]float64, k)
	reg := 1 / (m.opts.C * float64(n))

	for epoch := 0; epoch < m.opts.Iterations; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for c := 0; c < k; c++ {
			clear(grad[c])
		}
		clear(gradBias)

		for i := 0; i < n; i++ {
			for c := 0; c < k; c++ {
				logits[c] = bias[c]
			}
			for j, v := range x.Row(i) {
				for c := 0; c < k; c++ {
					logits[c] += weights[c][j] * v
				}
			}
			softmax(logits, probs)

			target := idx[y[i]]
			for c := 0; c < k; c++ {
				delta := probs[c]
				if c == target {
					delta -= 1
				}
				gradBias[c] += delta
				for j, v := range x.Row(i) {
					grad[c][j] += delta * v
				}
			}
		}

		step := m.opts.LearningRate
		for c := 0; c < k; c++ {
			for j := 0; j < d; j++ {
				g := grad[c][j] / float64(n)
				switch m.opts.Penalty {
				case PenaltyL2:
					g += reg * weights[c][j]
				case PenaltyL1:
					g += reg * sign(weights[c][j])
				}
				weights[c][j] -= step * g
			}
			if m.opts.FitIntercept {
				bias[c] -= step * gradBias[c] / float64(n)
			}
		}
	}

	m.classes = classes
	m.weights = weights
	m.bias = bias
	m.cols = d
	return nil
}

// Predict implements Model.
func (m *LogisticRegression) Predict(x *dataset.Matrix) ([]float64, error) {
	if m.classes == nil {
		return nil, ErrNotFitted
	}
	if x.Cols() != m.cols {
		return nil, fmt.Errorf("model: matrix has %d columns, model was fitted with %d", x.Cols(), m.cols)
	}

	k := len(m.classes)
	logits := make([]float64, k)
	out := make([]float64, x.Rows())
	for i := 0; i < x.Rows(); i++ {
		for c := 0; c < k; c++ {
			logits[c] = m.bias[c]
		}
		for j, v := range x.Row(i) {
			for c := 0; c < k; c++ {
				logits[c] += m.weights[c][j] * v
			}
		}

		best := 0
		for c := 1; c < k; c++ {
			if logits[c] > logits[best] {
				best = c
			}
		}
		out[i] = m.classes[best]
	}
	return out, nil
}

// Classes returns the sorted class values seen at fit time, or nil before
// fitting.
func (m *LogisticRegression) Classes() []float64 {
	if m.classes == nil {
		return nil
	}
	out := make([]float64, len(m.classes))
	copy(out, m.classes)
	return out
}

// softmax writes the softmax of logits into probs, shifted by the max for
// stability.
func softmax(logits, probs []float64) {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for c, v := range logits {
		probs[c] = math.Exp(v - max)
		sum += probs[c]
	}
	for c := range probs {
		probs[c] /= sum
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
