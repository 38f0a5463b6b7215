// Package label maps human judgments onto the classes a model trains on.
//
// A Transform turns a corpus.Score into a numeric class value, drops the
// example, or rejects the score outright. Dropping is the normal path for
// unscoreable and unjudged paragraphs; rejection signals a data contract
// violation and aborts the run.
package label

import (
	"fmt"

	"github.com/samzhang111/icgauge/corpus"
)

// Transform maps a score to (value, keep). A keep of false drops the example
// before featurization. A non-nil error is fatal and must propagate.
type Transform func(s corpus.Score) (value float64, keep bool, err error)

// ErrInvalidLabel reports a judged score outside a transform's accepted
// domain. It is fatal: no label is silently coerced.
type ErrInvalidLabel struct {
	Score     corpus.Score
	Transform string
}

func (e *ErrInvalidLabel) Error() string {
	return fmt.Sprintf("label: %s transform rejected score %s", e.Transform, e.Score)
}

// Identity keeps judged scores as-is on the 1..7 scale and drops everything
// else.
func Identity() Transform {
	return func(s corpus.Score) (float64, bool, error) {
		if s.Kind != corpus.ScoreJudged {
			return 0, false, nil
		}
		return float64(s.Value), true, nil
	}
}

// Ternary class codes, ordered low to high.
const (
	TernaryLow    = 0.0
	TernaryMedium = 1.0
	TernaryHigh   = 2.0
)

// Ternary buckets judged scores into three ordered classes: 1-2 low,
// 3-5 medium, 6-7 high. Judged scores outside 1..7 are invalid.
// Unscoreable and unjudged paragraphs are dropped.
func Ternary() Transform {
	return func(s corpus.Score) (float64, bool, error) {
		if s.Kind != corpus.ScoreJudged {
			return 0, false, nil
		}
		switch s.Value {
		case 1, 2:
			return TernaryLow, true, nil
		case 3, 4, 5:
			return TernaryMedium, true, nil
		case 6, 7:
			return TernaryHigh, true, nil
		default:
			return 0, false, &ErrInvalidLabel{Score: s, Transform: "ternary"}
		}
	}
}

// TernaryClassName names a ternary class code for reports.
func TernaryClassName(code float64) (string, bool) {
	switch code {
	case TernaryLow:
		return "low", true
	case TernaryMedium:
		return "medium", true
	case TernaryHigh:
		return "high", true
	default:
		return "", false
	}
}

// ByName returns a built-in transform by its stable name.
func ByName(name string) (Transform, bool) {
	switch name {
	case "identity":
		return Identity(), true
	case "ternary":
		return Ternary(), true
	default:
		return nil, false
	}
}
