package dataset

import (
	"fmt"
	"sort"

	"github.com/samzhang111/icgauge/feature"
)

// Vectorizer maps feature names to stable column positions. The schema is
// fixed at fit time; transforming never widens it.
type Vectorizer struct {
	names   []string
	columns map[string]int
}

// FitVectorizer derives a schema from the given feature dicts: the union of
// every name observed, in lexicographic order.
func FitVectorizer(dicts []feature.Dict) *Vectorizer {
	seen := make(map[string]struct{})
	for _, d := range dicts {
		for name := range d {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return newVectorizer(names)
}

func newVectorizer(names []string) *Vectorizer {
	columns := make(map[string]int, len(names))
	for i, name := range names {
		columns[name] = i
	}
	return &Vectorizer{names: names, columns: columns}
}

// FeatureNames returns the schema in column order.
func (v *Vectorizer) FeatureNames() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Len returns the number of columns in the schema.
func (v *Vectorizer) Len() int { return len(v.names) }

// Column returns the column index for a feature name.
func (v *Vectorizer) Column(name string) (int, bool) {
	i, ok := v.columns[name]
	return i, ok
}

// Transform projects feature dicts onto the fitted schema. Names outside the
// schema are dropped silently; their columns stay zero for every row.
func (v *Vectorizer) Transform(dicts []feature.Dict) *Matrix {
	m := &Matrix{
		rows:   len(dicts),
		cols:   len(v.names),
		indptr: make([]int, 1, len(dicts)+1),
	}

	type entry struct {
		col int
		val float64
	}
	var row []entry

	for _, d := range dicts {
		row = row[:0]
		for name, val := range d {
			if val == 0 {
				continue
			}
			col, ok := v.columns[name]
			if !ok {
				continue
			}
			row = append(row, entry{col: col, val: val})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].col < row[b].col })

		for _, e := range row {
			m.indices = append(m.indices, e.col)
			m.data = append(m.data, e.val)
		}
		m.indptr = append(m.indptr, len(m.indices))
	}
	return m
}

// Restrict returns a schema narrowed to features whose document frequency in
// the presence index is at least minDF. The index must have been built from a
// matrix with this schema.
func (v *Vectorizer) Restrict(presence *PresenceIndex, minDF uint64) (*Vectorizer, error) {
	if presence.Cols() != len(v.names) {
		return nil, fmt.Errorf("dataset: presence index has %d columns, schema has %d", presence.Cols(), len(v.names))
	}

	kept := make([]string, 0, len(v.names))
	for i, name := range v.names {
		if presence.DocFreq(i) >= minDF {
			kept = append(kept, name)
		}
	}
	return newVectorizer(kept), nil
}
