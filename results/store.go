package results

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when an archive does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// Store persists result archives under flat string names.
type Store interface {
	// Put writes an archive atomically, replacing any archive with the
	// same name.
	Put(ctx context.Context, name string, data []byte) error

	// Open opens an archive for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// List returns the names of archives with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes an archive. Deleting a missing archive is not an
	// error.
	Delete(ctx context.Context, name string) error
}
