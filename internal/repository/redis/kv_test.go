package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhub-app/clubhub-backend/internal/model"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", "v"))

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))

	require.NoError(t, store.Remove(ctx, "a", "b"))
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// removing already-absent keys still succeeds
	assert.NoError(t, store.Remove(ctx, "a", "b"))
	assert.NoError(t, store.Remove(ctx))
}

func TestStore_Keys(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.Set(ctx, "club:image:u1", "uri1"))
	require.NoError(t, store.Set(ctx, "club:image:u2", "uri2"))
	require.NoError(t, store.Set(ctx, "club:imagemeta:u1", "{}"))

	keys, err := store.Keys(ctx, "club:image:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"club:image:u1", "club:image:u2"}, keys)

	keys, err = store.Keys(ctx, "club:imagemeta:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"club:imagemeta:u1"}, keys)
}
