// Package badgerstore implements docstore.Store on top of an embedded Badger
// database.
package badgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/vk/ednavoyage/internal/docstore"
)

const defaultValueLogFileSize = 16 << 20 // 16MB, documents are small

type options struct {
	inMemory         bool
	valueLogFileSize int64
}

// Option customizes how Badger is opened.
type Option func(*options) error

// WithInMemory keeps all data in memory. The path argument to Open is ignored.
func WithInMemory() Option {
	return func(o *options) error {
		o.inMemory = true
		return nil
	}
}

// WithValueLogFileSize sets the maximum size in bytes of one value log file.
func WithValueLogFileSize(size int64) Option {
	return func(o *options) error {
		if size <= 0 {
			return fmt.Errorf("badger value log file size must be > 0, got %d", size)
		}
		o.valueLogFileSize = size
		return nil
	}
}

// Store is a Badger-backed docstore.Store.
type Store struct {
	db *badger.DB
}

// Open opens or creates a Badger database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	cfg := options{valueLogFileSize: defaultValueLogFileSize}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	bopts := badger.DefaultOptions(dir)
	if cfg.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.WithValueLogFileSize(cfg.valueLogFileSize)
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), v)
	})
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return docstore.ErrNotFound
			}
			return err
		}
		return txn.Delete([]byte(key))
	})
}

// Keys returns every key in ascending byte order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.PrefetchValues = false
		it := txn.NewIterator(itOpts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
