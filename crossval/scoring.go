package crossval

import (
	"math"

	"github.com/samzhang111/icgauge/stats"
)

// Scoring scores predictions against true labels. Higher is better. An
// undefined score is reported as NaN, never as an error.
type Scoring func(yTrue, yPred []float64) float64

// F1Macro scores with the unweighted mean of per-class F1.
func F1Macro() Scoring {
	return func(yTrue, yPred []float64) float64 {
		v, err := stats.MacroF1(yTrue, yPred)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// Accuracy scores with the fraction of exact matches.
func Accuracy() Scoring {
	return func(yTrue, yPred []float64) float64 {
		v, err := stats.Accuracy(yTrue, yPred)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// PearsonScore scores with Pearson's r, NaN when the correlation is
// undefined.
func PearsonScore() Scoring {
	return func(yTrue, yPred []float64) float64 {
		v, err := stats.Pearson(yTrue, yPred)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// ScoringByName returns a built-in scoring by its stable name: "f1_macro",
// "accuracy", or "pearson".
func ScoringByName(name string) (Scoring, bool) {
	switch name {
	case "f1_macro":
		return F1Macro(), true
	case "accuracy":
		return Accuracy(), true
	case "pearson":
		return PearsonScore(), true
	default:
		return nil, false
	}
}
