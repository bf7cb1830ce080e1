package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
	redisclient "github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/redis"
)

func setupCache(t *testing.T) (providers.CacheProvider, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redisclient.NewClientWithAddr(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewRedisAdapter(client), mr
}

func TestRedisAdapter_SetAndGet(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", []byte("v1"), 60))

	got, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	mr.FastForward(61 * time.Second)
	_, err = cache.Get(ctx, "k1")
	assert.Error(t, err)
}

func TestRedisAdapter_GetMissingKey(t *testing.T) {
	cache, _ := setupCache(t)

	_, err := cache.Get(context.Background(), "absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRedisAdapter_DeleteAndExists(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", []byte("v1"), 60))

	exists, err := cache.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "k1"))

	exists, err = cache.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisAdapter_GetMulti(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), 60))
	require.NoError(t, cache.Set(ctx, "c", []byte("3"), 60))

	got, err := cache.GetMulti(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, map[string][]byte{"a": []byte("1"), "c": []byte("3")}, got)

	empty, err := cache.GetMulti(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisAdapter_SetMulti(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	err := cache.SetMulti(ctx, map[string][]byte{
		"x": []byte("10"),
		"y": []byte("20"),
	}, 60)
	require.NoError(t, err)

	got, err := cache.GetMulti(ctx, []string{"x", "y"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	mr.FastForward(61 * time.Second)
	got, err = cache.GetMulti(ctx, []string{"x", "y"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisAdapter_DeletePattern(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "response:conditions:1", []byte("a"), 60))
	require.NoError(t, cache.Set(ctx, "response:conditions:2", []byte("b"), 60))
	require.NoError(t, cache.Set(ctx, "response:symptoms:1", []byte("c"), 60))

	require.NoError(t, cache.DeletePattern(ctx, "response:conditions:*"))

	exists, err := cache.Exists(ctx, "response:conditions:1")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = cache.Exists(ctx, "response:symptoms:1")
	require.NoError(t, err)
	assert.True(t, exists)
}
