package repository

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKVStore(t *testing.T, store KVStore, prefix string) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, prefix+"missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, prefix+"b", []byte(`[1]`)))
	require.NoError(t, store.Set(ctx, prefix+"a", []byte(`[2]`)))
	require.NoError(t, store.Set(ctx, "other:"+prefix, []byte(`[]`)))

	v, ok, err := store.Get(ctx, prefix+"a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[2]`, string(v))

	keys, err := store.Keys(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{prefix + "a", prefix + "b"}, keys)
}

func TestMemoryKVStore(t *testing.T) {
	exerciseKVStore(t, NewMemoryKVStore(), "studySessions:")
}

func TestMemoryKVStore_CopiesValues(t *testing.T) {
	store := NewMemoryKVStore()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", buf))
	buf[0] = 'z'

	v, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
	v[0] = 'y'

	again, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

// 需要本地 Redis：REDIS_ADDR=localhost:6379
func TestRedisKVStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	prefix := "test:" + t.Name() + ":"
	t.Cleanup(func() {
		keys, _ := rdb.Keys(ctx, "*"+prefix+"*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	})
	exerciseKVStore(t, NewRedisKVStore(rdb), prefix)
}
