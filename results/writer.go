package results

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/samzhang111/icgauge/codec"
)

// WriterOptions configure archive serialization.
type WriterOptions struct {
	// Codec encodes detail records. Defaults to codec.Default.
	Codec codec.Codec

	// Compression for detail archives. Reports are small and stay plain.
	Compression Compression

	// NewRunID mints run identifiers. Defaults to random UUIDs.
	NewRunID func() string
}

// DefaultWriterOptions are the options used when none are overridden.
var DefaultWriterOptions = WriterOptions{
	Codec:       codec.Default,
	Compression: CompressionNone,
	NewRunID:    uuid.NewString,
}

// Writer persists run results to a Store. Each run gets a stable run ID;
// archives are named "<run-id>.details.json[.zst|.lz4]" and
// "<run-id>.report.txt".
type Writer struct {
	store Store
	opts  WriterOptions
}

// NewWriter creates a Writer over the given store.
func NewWriter(store Store, optFns ...func(o *WriterOptions)) (*Writer, error) {
	if store == nil {
		return nil, errors.New("results: nil store")
	}

	opts := DefaultWriterOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}

	return &Writer{store: store, opts: opts}, nil
}

// NewRunID mints a fresh run identifier.
func (w *Writer) NewRunID() string {
	return w.opts.NewRunID()
}

// DetailsArchiveName returns the archive name for a run's detail records
// under the given compression.
func DetailsArchiveName(runID string, compression Compression) string {
	return runID + ".details.json" + compression.Ext()
}

// ReportArchiveName returns the archive name for a run's report text.
func ReportArchiveName(runID string) string {
	return runID + ".report.txt"
}

// WriteDetails writes the per-example detail records as one archive and
// returns the archive name. An empty runID mints a fresh one.
func (w *Writer) WriteDetails(ctx context.Context, runID string, details []Detail) (string, error) {
	if runID == "" {
		runID = w.opts.NewRunID()
	}

	payload, err := w.opts.Codec.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("results: encode details: %w", err)
	}
	framed, err := compress(payload, w.opts.Compression)
	if err != nil {
		return "", err
	}

	name := DetailsArchiveName(runID, w.opts.Compression)
	if err := w.store.Put(ctx, name, framed); err != nil {
		return "", err
	}
	return name, nil
}

// ReadDetails loads a details archive. The compression is inferred from the
// archive name suffix.
func (w *Writer) ReadDetails(ctx context.Context, name string) ([]Detail, error) {
	rc, err := w.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("results: read archive %s: %w", name, err)
	}
	payload, err := decompress(data, CompressionForArchive(name))
	if err != nil {
		return nil, err
	}

	var details []Detail
	if err := w.opts.Codec.Unmarshal(payload, &details); err != nil {
		return nil, fmt.Errorf("results: decode details: %w", err)
	}
	return details, nil
}

// WriteReport writes the formatted report text for an aggregate and returns
// the archive name. An empty runID mints a fresh one.
func (w *Writer) WriteReport(ctx context.Context, runID string, agg *AggregateResult) (string, error) {
	if runID == "" {
		runID = w.opts.NewRunID()
	}
	if agg == nil {
		return "", errors.New("results: nil aggregate")
	}

	name := ReportArchiveName(runID)
	if err := w.store.Put(ctx, name, []byte(agg.Report())); err != nil {
		return "", err
	}
	return name, nil
}
