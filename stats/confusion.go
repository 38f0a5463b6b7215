package stats

import (
	"fmt"
	"sort"
	"strings"
)

// ConfusionMatrix tabulates categorical predictions against true labels.
// Rows are truth; columns are predictions. Classes are the sorted distinct
// values of both sequences combined.
type ConfusionMatrix struct {
	Classes []float64
	Counts  [][]int
}

// NewConfusionMatrix builds a confusion matrix from aligned label sequences.
func NewConfusionMatrix(yTrue, yPred []float64) (*ConfusionMatrix, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("stats: length mismatch: %d vs %d", len(yTrue), len(yPred))
	}

	classes := distinctSorted(yTrue, yPred)
	idx := make(map[float64]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}

	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	for i := range yTrue {
		counts[idx[yTrue[i]]][idx[yPred[i]]]++
	}

	return &ConfusionMatrix{Classes: classes, Counts: counts}, nil
}

// Total returns the number of tabulated examples.
func (m *ConfusionMatrix) Total() int {
	total := 0
	for _, row := range m.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Count returns the tabulated count for a (truth, prediction) class pair.
// Unknown classes count zero.
func (m *ConfusionMatrix) Count(trueClass, predClass float64) int {
	ti, pi := -1, -1
	for i, c := range m.Classes {
		if c == trueClass {
			ti = i
		}
		if c == predClass {
			pi = i
		}
	}
	if ti < 0 || pi < 0 {
		return 0
	}
	return m.Counts[ti][pi]
}

// String renders the matrix with a class header. Rows are truth; columns
// are predictions.
func (m *ConfusionMatrix) String() string {
	var b strings.Builder
	b.WriteString("truth\\pred")
	for _, c := range m.Classes {
		fmt.Fprintf(&b, "%8g", c)
	}
	b.WriteByte('\n')
	for i, row := range m.Counts {
		fmt.Fprintf(&b, "%10g", m.Classes[i])
		for _, count := range row {
			fmt.Fprintf(&b, "%8d", count)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Accuracy returns the share of exact matches.
func Accuracy(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("stats: length mismatch: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("%w: no observations", ErrUndefinedStatistic)
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue)), nil
}

// MacroF1 returns the unweighted mean of per-class F1 scores over the
// distinct classes of both sequences. Classes with zero precision and
// recall contribute an F1 of zero.
func MacroF1(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("stats: length mismatch: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("%w: no observations", ErrUndefinedStatistic)
	}

	classes := distinctSorted(yTrue, yPred)
	sum := 0.0
	for _, c := range classes {
		var tp, fp, fn int
		for i := range yTrue {
			switch {
			case yTrue[i] == c && yPred[i] == c:
				tp++
			case yTrue[i] != c && yPred[i] == c:
				fp++
			case yTrue[i] == c && yPred[i] != c:
				fn++
			}
		}
		denom := float64(2*tp + fp + fn)
		if denom > 0 {
			sum += 2 * float64(tp) / denom
		}
	}
	return sum / float64(len(classes)), nil
}

func distinctSorted(seqs ...[]float64) []float64 {
	seen := make(map[float64]struct{})
	for _, seq := range seqs {
		for _, v := range seq {
			seen[v] = struct{}{}
		}
	}
	out := make([]float64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
