// Package storetest holds the behavioural test suite every docstore.Store
// backend must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ednavoyage/internal/docstore"
)

// Factory opens a fresh, empty store for one subtest. The suite closes it.
type Factory func(t *testing.T) docstore.Store

// Run executes the suite against stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		_, err := s.Get(context.Background(), "e-dna-projects")
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("PutGetOverwrite", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "e-dna-auth", []byte("true")))
		got, err := s.Get(ctx, "e-dna-auth")
		require.NoError(t, err)
		assert.Equal(t, []byte("true"), got)

		require.NoError(t, s.Put(ctx, "e-dna-auth", []byte("false")))
		got, err = s.Get(ctx, "e-dna-auth")
		require.NoError(t, err)
		assert.Equal(t, []byte("false"), got)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		value := []byte(`["a"]`)
		require.NoError(t, s.Put(ctx, "k", value))
		value[0] = 'X'

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte(`["a"]`), got, "the store must not alias the caller's slice")
		got[0] = 'Y'

		again, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte(`["a"]`), again)
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "e-dna-user", []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, "e-dna-user"))

		_, err := s.Get(ctx, "e-dna-user")
		require.ErrorIs(t, err, docstore.ErrNotFound)
		require.ErrorIs(t, s.Delete(ctx, "e-dna-user"), docstore.ErrNotFound)
	})

	t.Run("KeysSorted", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		for _, k := range []string{"e-dna-users", "e-dna-auth", "e-dna-projects"} {
			require.NoError(t, s.Put(ctx, k, []byte("[]")))
		}
		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"e-dna-auth", "e-dna-projects", "e-dna-users"}, keys)
	})

	t.Run("EmptyValue", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "blank", []byte{}))
		got, err := s.Get(ctx, "blank")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()
		const n = 50

		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("key-%02d", i)
				assert.NoError(t, s.Put(ctx, key, []byte(fmt.Sprintf("%d", i))))
			}(i)
		}
		wg.Wait()

		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer wg.Done()
				got, err := s.Get(ctx, fmt.Sprintf("key-%02d", i))
				assert.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("%d", i), string(got))
			}(i)
		}
		wg.Wait()

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Len(t, keys, n)
	})
}
