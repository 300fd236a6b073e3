package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vk/ednavoyage/internal/ctxlog"
)

// Document is a typed view over one key holding a JSON value of type T.
type Document[T any] struct {
	store    Store
	key      string
	fallback func() T
}

// NewDocument returns a document bound to key. fallback supplies the value
// read when the key is absent or unreadable; nil means the zero value of T.
func NewDocument[T any](store Store, key string, fallback func() T) *Document[T] {
	if fallback == nil {
		fallback = func() T {
			var zero T
			return zero
		}
	}
	return &Document[T]{store: store, key: key, fallback: fallback}
}

// Key returns the storage key of the document.
func (d *Document[T]) Key() string {
	return d.key
}

// Load reads the document. It never fails: an absent key, a backend error or
// invalid JSON all yield the fallback value. The second return reports
// whether a stored value was decoded.
func (d *Document[T]) Load(ctx context.Context) (T, bool) {
	logger := ctxlog.FromContext(ctx).With("key", d.key)

	raw, err := d.store.Get(ctx, d.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("Failed to read document, using default.", "error", err)
		}
		return d.fallback(), false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("Stored document is not valid JSON, using default.", "error", err)
		return d.fallback(), false
	}
	return v, true
}

// Save encodes v as JSON and replaces the stored document.
func (d *Document[T]) Save(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document %q: %w", d.key, err)
	}
	if err := d.store.Put(ctx, d.key, raw); err != nil {
		return fmt.Errorf("failed to write document %q: %w", d.key, err)
	}
	return nil
}

// Clear removes the document. Clearing an absent document is not an error.
func (d *Document[T]) Clear(ctx context.Context) error {
	if err := d.store.Delete(ctx, d.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete document %q: %w", d.key, err)
	}
	return nil
}
