package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Get when nothing is stored at the path.
var ErrObjectNotFound = errors.New("object not found")

// Storage is a flat object store addressed by slash-separated relative paths.
type Storage interface {
	// Save writes content at path, replacing any previous object.
	Save(ctx context.Context, path string, content io.Reader) error

	// Get opens the object at path. The caller closes the reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}
