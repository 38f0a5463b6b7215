// Package stats provides the scalar statistics the evaluation pipeline
// reports: linear correlation, inter-rater reliability, and classification
// summaries.
//
// Undefined statistics are an expected edge case of small-sample trials, not
// a data error. Functions that can be undefined return NaN together with
// ErrUndefinedStatistic so callers can record the NaN and continue.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrUndefinedStatistic marks a statistic that is undefined for the given
// inputs, typically because a sequence has zero variance.
var ErrUndefinedStatistic = errors.New("statistic undefined")

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the population variance, or NaN for an empty slice.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation, or NaN for an empty
// slice.
func StdDev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// Finite returns the entries of xs that are neither NaN nor infinite.
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// Pearson returns the Pearson product-moment correlation of x and y.
//
// When either sequence has zero variance the correlation is undefined:
// Pearson returns NaN and ErrUndefinedStatistic.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return math.NaN(), fmt.Errorf("stats: length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return math.NaN(), fmt.Errorf("%w: need at least 2 observations, got %d", ErrUndefinedStatistic, len(x))
	}

	mx := Mean(x)
	my := Mean(y)

	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	if sxx == 0 || syy == 0 {
		return math.NaN(), fmt.Errorf("%w: zero variance", ErrUndefinedStatistic)
	}
	return sxy / math.Sqrt(sxx*syy), nil
}

// CronbachAlpha returns Cronbach's alpha over k raters scoring the same
// item set:
//
//	alpha = (k/(k-1)) * (1 - sum(var(rater_i)) / var(sum of ratings))
//
// The evaluation pipeline uses it with k=2, treating true and predicted
// labels as two raters. When the variance of the summed ratings is zero the
// coefficient is undefined: CronbachAlpha returns NaN and
// ErrUndefinedStatistic.
func CronbachAlpha(raters ...[]float64) (float64, error) {
	k := len(raters)
	if k < 2 {
		return math.NaN(), fmt.Errorf("stats: need at least 2 raters, got %d", k)
	}
	n := len(raters[0])
	for i, r := range raters {
		if len(r) != n {
			return math.NaN(), fmt.Errorf("stats: rater %d has %d items, rater 0 has %d", i, len(r), n)
		}
	}
	if n == 0 {
		return math.NaN(), fmt.Errorf("%w: no items", ErrUndefinedStatistic)
	}

	sumVar := 0.0
	for _, r := range raters {
		sumVar += Variance(r)
	}

	totals := make([]float64, n)
	for _, r := range raters {
		for i, v := range r {
			totals[i] += v
		}
	}

	totalVar := Variance(totals)
	if totalVar == 0 {
		return math.NaN(), fmt.Errorf("%w: zero variance of summed ratings", ErrUndefinedStatistic)
	}

	kf := float64(k)
	return (kf / (kf - 1)) * (1 - sumVar/totalVar), nil
}
