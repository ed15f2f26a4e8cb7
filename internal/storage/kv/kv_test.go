package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func substrates(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	mr := miniredis.RunT(t)
	redisStore, err := NewRedisStore("redis://"+mr.Addr(), "hlb:test:")
	require.NoError(t, err)
	t.Cleanup(func() { redisStore.Close() })

	return map[string]Store{"sqlite": sqliteStore, "redis": redisStore}
}

func TestStore(t *testing.T) {
	for name, store := range substrates(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, store.Set(ctx, "k", []byte("one")))
			require.NoError(t, store.Set(ctx, "k", []byte("two")))
			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "two", string(got))

			require.NoError(t, store.Delete(ctx, "k"))
			_, err = store.Get(ctx, "k")
			assert.True(t, errors.Is(err, ErrNotFound))
			// deleting an absent key is fine
			assert.NoError(t, store.Delete(ctx, "k"))
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	for name, store := range substrates(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var out doc
			found, err := GetJSON(ctx, store, "doc", &out)
			require.NoError(t, err)
			assert.False(t, found)

			in := doc{Name: "x", Items: []string{"a", "b"}}
			require.NoError(t, SetJSON(ctx, store, "doc", in))

			found, err = GetJSON(ctx, store, "doc", &out)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, in, out)

			require.NoError(t, store.Set(ctx, "bad", []byte("{not json")))
			_, err = GetJSON(ctx, store, "bad", &out)
			assert.Error(t, err)
		})
	}
}

func TestRedisStorePrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+mr.Addr(), "hlb:alice:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "hlb_reflections", []byte("[]")))
	assert.True(t, mr.Exists("hlb:alice:hlb_reflections"))
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	_, err := NewRedisStore("redis://127.0.0.1:1", "")
	assert.Error(t, err)
}
