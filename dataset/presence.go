package dataset

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// PresenceIndex records, per feature column, the set of example rows holding
// a stored entry for that column. Document frequencies and row lookups come
// straight off the bitmaps.
type PresenceIndex struct {
	cols []*roaring.Bitmap
	rows int
}

// NewPresenceIndex builds the column bitmaps from the stored entries of m.
func NewPresenceIndex(m *Matrix) *PresenceIndex {
	idx := &PresenceIndex{
		cols: make([]*roaring.Bitmap, m.Cols()),
		rows: m.Rows(),
	}
	for j := range idx.cols {
		idx.cols[j] = roaring.New()
	}
	for i := 0; i < m.Rows(); i++ {
		for j := range m.Row(i) {
			idx.cols[j].Add(uint32(i))
		}
	}
	return idx
}

// Rows returns the number of example rows indexed.
func (idx *PresenceIndex) Rows() int { return idx.rows }

// Cols returns the number of feature columns indexed.
func (idx *PresenceIndex) Cols() int { return len(idx.cols) }

// DocFreq returns the number of examples with a stored entry in column j.
func (idx *PresenceIndex) DocFreq(j int) uint64 {
	return idx.cols[j].GetCardinality()
}

// Contains reports whether example row i has a stored entry in column j.
func (idx *PresenceIndex) Contains(i, j int) bool {
	return idx.cols[j].Contains(uint32(i))
}

// RowsWith returns the example rows holding a stored entry in column j, in
// ascending order.
func (idx *PresenceIndex) RowsWith(j int) []int {
	rb := idx.cols[j]
	out := make([]int, 0, rb.GetCardinality())
	it := rb.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
