// Package corpus provides readers for integrative-complexity corpora.
//
// A corpus is a sequence of scored paragraphs. Human raters assign each
// paragraph an ordinal score on a 1..7 scale, mark it "NA" when it cannot be
// scored, or leave it without a judgment. Readers normalize raw scores with a
// single rule: fractional scores round to the nearest integer, half up.
//
// Readers are restartable: every call to Examples yields a fresh pass over
// the same data in the same order.
package corpus

import (
	"context"
	"fmt"
	"iter"
	"math"
)

// ScoreKind discriminates the three states a human judgment can be in.
type ScoreKind int

const (
	// ScoreJudged marks a paragraph with a valid ordinal score.
	ScoreJudged ScoreKind = iota

	// ScoreUnscoreable marks a paragraph raters looked at but could not score.
	ScoreUnscoreable

	// ScoreUnjudged marks a paragraph without any human assessment.
	ScoreUnjudged
)

// String returns a human-readable name for the kind.
func (k ScoreKind) String() string {
	switch k {
	case ScoreJudged:
		return "judged"
	case ScoreUnscoreable:
		return "unscoreable"
	case ScoreUnjudged:
		return "unjudged"
	default:
		return fmt.Sprintf("ScoreKind(%d)", int(k))
	}
}

// MinOrdinal and MaxOrdinal bound the valid judged score range.
const (
	MinOrdinal = 1
	MaxOrdinal = 7
)

// Score is a normalized human judgment. Value is meaningful only when
// Kind is ScoreJudged.
type Score struct {
	Kind  ScoreKind
	Value int
}

// Judged returns a Score carrying the given ordinal value.
func Judged(v int) Score {
	return Score{Kind: ScoreJudged, Value: v}
}

// Unscoreable returns the Score for paragraphs marked "NA" by raters.
func Unscoreable() Score {
	return Score{Kind: ScoreUnscoreable}
}

// Unjudged returns the Score for paragraphs without a human assessment.
func Unjudged() Score {
	return Score{Kind: ScoreUnjudged}
}

// String returns "3" for judged scores and the kind name otherwise.
func (s Score) String() string {
	if s.Kind == ScoreJudged {
		return fmt.Sprintf("%d", s.Value)
	}
	return s.Kind.String()
}

// NormalizeOrdinal rounds a raw numeric score to the nearest integer, half up.
// Raters sometimes split the difference between two levels (e.g. 2.5); the
// convention is that such scores round toward the higher level.
func NormalizeOrdinal(raw float64) int {
	return int(math.Floor(raw + 0.5))
}

// Example is one corpus entry: the paragraph text and its normalized label.
// Examples are immutable values.
type Example struct {
	Text  string
	Label Score
}

// Reader produces a finite sequence of examples.
//
// Implementations must be restartable: each call to Examples starts a fresh
// pass yielding the same examples in the same order (assuming the backing
// data has not changed). The yielded error is non-nil only for the final
// element of a failed pass.
type Reader interface {
	Examples(ctx context.Context) iter.Seq2[Example, error]
}
