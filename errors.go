package icgauge

import (
	"errors"
	"fmt"

	"github.com/samzhang111/icgauge/corpus"
	"github.com/samzhang111/icgauge/label"
	"github.com/samzhang111/icgauge/model"
)

var (
	// ErrInvalidTrainFraction is returned when the train fraction is outside (0, 1).
	ErrInvalidTrainFraction = errors.New("train fraction must be in (0, 1)")

	// ErrInvalidIterations is returned when the iteration count is not positive.
	ErrInvalidIterations = errors.New("iterations must be positive")

	// ErrInsufficientData is returned when a run cannot proceed: the corpus
	// yields too few usable examples for the configured split or fold count,
	// or a fold collapses to a single class.
	ErrInsufficientData = errors.New("insufficient data")
)

// ErrInvalidLabel indicates a judged score the label transform rejected.
// It aborts the run: rejected labels mean the corpus violates the data
// contract, and no label is silently coerced.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidLabel struct {
	Score     corpus.Score
	Transform string
	cause     error
}

func (e *ErrInvalidLabel) Error() string {
	return fmt.Sprintf("invalid label: %s transform rejected score %s", e.Transform, e.Score)
}

func (e *ErrInvalidLabel) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var il *label.ErrInvalidLabel
	if errors.As(err, &il) {
		return &ErrInvalidLabel{Score: il.Score, Transform: il.Transform, cause: err}
	}

	if errors.Is(err, model.ErrInsufficientData) {
		return fmt.Errorf("%w: %w", ErrInsufficientData, err)
	}

	return err
}
