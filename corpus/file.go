package corpus

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/samzhang111/icgauge/codec"
)

// ErrInvalidScore is returned when a corpus document carries a score that is
// neither a number in the ordinal range, the literal "NA", nor absent.
var ErrInvalidScore = errors.New("invalid score value")

// ErrNoFiles is returned when a FileReader is constructed without paths.
var ErrNoFiles = errors.New("at least one corpus file required")

// document is the wire format of one corpus entry. A "parse" field may be
// present in older files; it is not consumed here.
type document struct {
	Paragraph string `json:"paragraph"`
	Score     any    `json:"score,omitempty"`
}

// FileReaderOptions configures a FileReader.
type FileReaderOptions struct {
	// Codec decodes corpus files. Defaults to codec.Default.
	Codec codec.Codec

	// Concurrency caps how many files are decoded in parallel.
	Concurrency int
}

// DefaultFileReaderOptions are sensible defaults for local corpora.
var DefaultFileReaderOptions = FileReaderOptions{
	Codec:       nil, // codec.Default resolved at construction
	Concurrency: 4,
}

// FileReader reads JSON corpus files of the form
// [{"paragraph": ..., "score": ...}, ...].
//
// Every pass re-reads the files, so edits on disk are picked up by the next
// pass. Examples are yielded in file order, then record order, so passes are
// deterministic regardless of decode concurrency.
type FileReader struct {
	paths       []string
	codec       codec.Codec
	concurrency int
}

var _ Reader = (*FileReader)(nil)

// NewFileReader creates a FileReader over the given paths.
func NewFileReader(paths []string, optFns ...func(o *FileReaderOptions)) (*FileReader, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	opts := DefaultFileReaderOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	c := opts.Codec
	if c == nil {
		c = codec.Default
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &FileReader{
		paths:       append([]string(nil), paths...),
		codec:       c,
		concurrency: concurrency,
	}, nil
}

// Paths returns the configured file paths.
func (r *FileReader) Paths() []string {
	return append([]string(nil), r.paths...)
}

// Examples implements Reader.
func (r *FileReader) Examples(ctx context.Context) iter.Seq2[Example, error] {
	return func(yield func(Example, error) bool) {
		batches, err := r.load(ctx)
		if err != nil {
			yield(Example{}, err)
			return
		}
		for _, batch := range batches {
			for _, ex := range batch {
				if !yield(ex, nil) {
					return
				}
			}
		}
	}
}

// load decodes all files, in parallel up to the configured concurrency.
// Results are ordered by path position, not completion order.
func (r *FileReader) load(ctx context.Context) ([][]Example, error) {
	batches := make([][]Example, len(r.paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, path := range r.paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			examples, err := r.loadFile(path)
			if err != nil {
				return err
			}
			batches[i] = examples
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *FileReader) loadFile(path string) ([]Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}

	var docs []document
	if err := r.codec.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("corpus: decode %s: %w", path, err)
	}

	examples := make([]Example, len(docs))
	for i, doc := range docs {
		label, err := normalizeRawScore(doc.Score)
		if err != nil {
			return nil, fmt.Errorf("corpus: %s[%d]: %w", path, i, err)
		}
		examples[i] = Example{Text: doc.Paragraph, Label: label}
	}
	return examples, nil
}

// normalizeRawScore maps a decoded score value onto a Score.
//
// Numbers round half-up and must land in the ordinal range. The literal "NA"
// marks an unscoreable paragraph. An absent (or null) score marks a paragraph
// without a human judgment.
func normalizeRawScore(raw any) (Score, error) {
	switch v := raw.(type) {
	case nil:
		return Unjudged(), nil
	case string:
		if v == "NA" {
			return Unscoreable(), nil
		}
		return Score{}, fmt.Errorf("%w: %q", ErrInvalidScore, v)
	case float64:
		n := NormalizeOrdinal(v)
		if n < MinOrdinal || n > MaxOrdinal {
			return Score{}, fmt.Errorf("%w: %v rounds to %d, outside [%d,%d]", ErrInvalidScore, v, n, MinOrdinal, MaxOrdinal)
		}
		return Judged(n), nil
	default:
		return Score{}, fmt.Errorf("%w: unexpected type %T", ErrInvalidScore, raw)
	}
}
