// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the docstore.Store interface.
//
// # Characteristics
//
//   - **Ephemeral:** Created fresh for each process, nothing survives a restart
//   - **Thread-Safe:** Uses sync.Map for concurrent access without a global lock
//   - **Copying:** Values are copied on the way in and out, so callers never share memory with the store
//
// # Concurrency Model
//
// The key space is tiny and stable (one key per record collection) while the
// values are rewritten on every change, which is the access pattern sync.Map
// is optimized for.
package inmemorystore

import (
	"context"
	"sort"
	"sync"

	"github.com/vk/ednavoyage/internal/docstore"
)

// Store is an in-memory implementation of docstore.Store.
type Store struct {
	values sync.Map // Key: document key, Value: []byte
}

// New creates a new, empty in-memory store.
func New() *Store {
	return &Store{}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.values.Load(key)
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return clone(v.([]byte)), nil
}

// Put stores a copy of value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.values.Store(key, clone(value))
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, loaded := s.values.LoadAndDelete(key); !loaded {
		return docstore.ErrNotFound
	}
	return nil
}

// Keys returns all keys in ascending order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	s.values.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; the data is dropped with the store.
func (s *Store) Close() error {
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
