package blob

import (
	"context"
	"io"
)

// Store defines the contract for saving, retrieving and deleting binary objects.
type Store interface {
	Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
