package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidPath is returned when a path would escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// Storage defines the interface for file storage operations.
type Storage interface {
	// Save writes content under the relative path, replacing any existing file.
	Save(ctx context.Context, path string, content io.Reader) error

	// Get opens the file stored at the relative path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the file at the relative path. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}
