// Package dataset turns scored corpus examples into aligned feature matrices
// and label vectors. A schema fitted on training data can be reapplied to
// assessment data, so both sides share column positions.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/samzhang111/icgauge/corpus"
	"github.com/samzhang111/icgauge/feature"
	"github.com/samzhang111/icgauge/label"
)

// ErrNoExtractors is returned when Build is called with an empty extractor
// list.
var ErrNoExtractors = errors.New("dataset: no extractors")

// Dataset is the aligned output of a build: row i of X, Y[i], and Examples[i]
// all describe the same kept example.
type Dataset struct {
	// X holds one feature row per kept example, in corpus order.
	X *Matrix

	// Y holds the transformed label for each row of X.
	Y []float64

	// Vectorizer is the schema X was projected with.
	Vectorizer *Vectorizer

	// Examples are the kept raw examples, aligned with X and Y.
	Examples []corpus.Example

	// Presence indexes the stored entries of X per feature column. It is
	// populated only when the schema was fitted during this build.
	Presence *PresenceIndex
}

// BuildOptions configures a build.
type BuildOptions struct {
	// Vectorizer, when set, fixes the feature schema instead of fitting one
	// from the data. Feature names outside the schema are dropped silently.
	Vectorizer *Vectorizer

	// OnCollision is invoked whenever two extractors emit the same feature
	// name for one example. The larger value wins regardless.
	OnCollision func(name string, kept, incoming float64)
}

// DefaultBuildOptions holds the defaults used by Build.
var DefaultBuildOptions = BuildOptions{}

// Build reads every example from the reader, applies the label transform,
// and featurizes the kept examples with the given extractors. Examples the
// transform drops are skipped before featurization. With no fixed schema in
// the options, a vectorizer is fitted from the featurized data and a presence
// index is built alongside the matrix.
func Build(ctx context.Context, reader corpus.Reader, extractors []feature.Extractor, transform label.Transform, optFns ...func(o *BuildOptions)) (*Dataset, error) {
	opts := DefaultBuildOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(extractors) == 0 {
		return nil, ErrNoExtractors
	}
	if transform == nil {
		return nil, errors.New("dataset: nil label transform")
	}

	var (
		labels []float64
		kept   []corpus.Example
		dicts  []feature.Dict
	)
	perExample := make([]feature.Dict, len(extractors))

	i := -1
	for ex, err := range reader.Examples(ctx) {
		i++
		if err != nil {
			return nil, fmt.Errorf("dataset: example %d: %w", i, err)
		}

		y, keep, err := transform(ex.Label)
		if err != nil {
			return nil, fmt.Errorf("dataset: example %d: %w", i, err)
		}
		if !keep {
			continue
		}

		labels = append(labels, y)
		kept = append(kept, ex)

		for k, extractor := range extractors {
			perExample[k] = extractor.Extract(ex.Text)
		}
		dicts = append(dicts, feature.Merge(perExample, opts.OnCollision))
	}

	ds := &Dataset{
		Y:          labels,
		Vectorizer: opts.Vectorizer,
		Examples:   kept,
	}
	fitted := ds.Vectorizer == nil
	if fitted {
		ds.Vectorizer = FitVectorizer(dicts)
	}
	ds.X = ds.Vectorizer.Transform(dicts)
	if fitted {
		ds.Presence = NewPresenceIndex(ds.X)
	}
	return ds, nil
}
