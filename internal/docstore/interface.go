package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when the key is absent.
var ErrNotFound = errors.New("docstore: key not found")

// Store is a string-keyed byte store.
//
// Implementations must be safe for concurrent use. Get returns a copy of the
// stored value that the caller may retain and modify.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	// Keys returns every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
	// Close releases the resources held by the store.
	Close() error
}
