// Package results holds the outputs of evaluation runs and persists them as
// archives for error analysis.
package results

import (
	"fmt"
	"strings"

	"github.com/samzhang111/icgauge/stats"
)

// Detail is one assessed example: the raw paragraph, the human label, and
// the model's prediction. The JSON keys are the archive layout error-analysis
// tooling expects.
type Detail struct {
	Example    string  `json:"example"`
	Truth      float64 `json:"truth"`
	Prediction float64 `json:"prediction"`
}

// TrialResult is the outcome of one build, train, predict, score cycle.
// Correlation and Alpha are NaN when the trial was degenerate.
type TrialResult struct {
	Correlation float64
	Alpha       float64
	Confusion   *stats.ConfusionMatrix
	Details     []Detail
}

// AggregateResult collects per-trial statistics across an iterated run.
// Correlations and Alphas keep one entry per trial, NaN included. Confusion
// is the last trial's matrix; Details concatenates every trial's records in
// trial order.
type AggregateResult struct {
	Correlations []float64
	Alphas       []float64
	Confusion    *stats.ConfusionMatrix
	Details      []Detail
}

// Summary is the NaN-aware digest of an AggregateResult. Means and standard
// deviations cover the defined entries only; the Skipped counts say how many
// degenerate trials were left out.
type Summary struct {
	Trials             int
	CorrelationMean    float64
	CorrelationStd     float64
	CorrelationSkipped int
	AlphaMean          float64
	AlphaStd           float64
	AlphaSkipped       int
}

// Summary digests the aggregate. With every trial degenerate the means and
// deviations are NaN.
func (r *AggregateResult) Summary() Summary {
	corrs := stats.Finite(r.Correlations)
	alphas := stats.Finite(r.Alphas)

	return Summary{
		Trials:             len(r.Correlations),
		CorrelationMean:    stats.Mean(corrs),
		CorrelationStd:     stats.StdDev(corrs),
		CorrelationSkipped: len(r.Correlations) - len(corrs),
		AlphaMean:          stats.Mean(alphas),
		AlphaStd:           stats.StdDev(alphas),
		AlphaSkipped:       len(r.Alphas) - len(alphas),
	}
}

// String renders the summary in the report layout consumed downstream.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Averaged correlation (95%% CI): %0.2f +/- %0.2f", s.CorrelationMean, s.CorrelationStd)
	if s.CorrelationSkipped > 0 {
		fmt.Fprintf(&b, " (%d undefined trials skipped)", s.CorrelationSkipped)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Averaged Cronbach's alpha (95%% CI): %0.2f +/- %0.2f", s.AlphaMean, s.AlphaStd)
	if s.AlphaSkipped > 0 {
		fmt.Fprintf(&b, " (%d undefined trials skipped)", s.AlphaSkipped)
	}
	b.WriteString("\n")
	return b.String()
}

// Report renders the full post-run report: the summary lines, every
// per-trial value, and the final confusion matrix.
func (r *AggregateResult) Report() string {
	var b strings.Builder
	b.WriteString(r.Summary().String())

	fmt.Fprintf(&b, "All correlations: %v\n", r.Correlations)
	fmt.Fprintf(&b, "All alphas: %v\n", r.Alphas)

	if r.Confusion != nil {
		b.WriteString("Confusion matrix (rows are truth, columns are predictions):\n")
		b.WriteString(r.Confusion.String())
	}
	return b.String()
}
