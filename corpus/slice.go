package corpus

import (
	"context"
	"iter"
)

// SliceReader serves examples from memory. Useful for tests and for corpora
// assembled programmatically.
type SliceReader struct {
	examples []Example
}

var _ Reader = (*SliceReader)(nil)

// NewSliceReader creates a SliceReader over the given examples.
// The slice is not copied; callers must not mutate it afterwards.
func NewSliceReader(examples []Example) *SliceReader {
	return &SliceReader{examples: examples}
}

// Len returns the number of examples.
func (r *SliceReader) Len() int {
	return len(r.examples)
}

// Examples implements Reader.
func (r *SliceReader) Examples(ctx context.Context) iter.Seq2[Example, error] {
	return func(yield func(Example, error) bool) {
		for _, ex := range r.examples {
			if err := ctx.Err(); err != nil {
				yield(Example{}, err)
				return
			}
			if !yield(ex, nil) {
				return
			}
		}
	}
}
