package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisKeyspace(t *testing.T) (*RedisKeyspace, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	ks, err := NewRedisKeyspace(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { ks.Close() })
	return ks, mr
}

func TestRedisKeyspace_SetGetDel(t *testing.T) {
	ctx := context.Background()
	ks, mr := setupRedisKeyspace(t)

	require.NoError(t, ks.Set(ctx, "k", "tok", time.Hour))
	got, err := ks.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
	assert.Equal(t, time.Hour, mr.TTL("k"))

	require.NoError(t, ks.Del(ctx, "k"))
	got, err = ks.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisKeyspace_Expiry(t *testing.T) {
	ctx := context.Background()
	ks, mr := setupRedisKeyspace(t)

	require.NoError(t, ks.Set(ctx, "k", "tok", time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := ks.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisKeyspace_UnreachableServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisKeyspace(context.Background(), RedisOptions{Addr: addr, DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
}

func TestScope_SessionOverRedis(t *testing.T) {
	ctx := context.Background()
	ks, mr := setupRedisKeyspace(t)

	s := New(Scope(ks, "device-1"), NewMemoryStore())
	require.NoError(t, s.Set(ctx, "abc"))

	val, err := mr.Get(KeyPrefix + "device-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", val)

	other := Scope(ks, "device-2")
	got, _ := other.Load(ctx)
	assert.Empty(t, got, "devices do not share tokens")

	require.NoError(t, s.Clear(ctx))
	assert.False(t, mr.Exists(KeyPrefix+"device-1"))
}

func TestMemoryKeyspace(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ks := NewMemoryKeyspace()
	ks.now = func() time.Time { return now }

	require.NoError(t, ks.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, ks.Set(ctx, "b", "2", 0))
	assert.Equal(t, 2, ks.Len())

	now = now.Add(time.Hour)
	got, _ := ks.Get(ctx, "a")
	assert.Empty(t, got)
	got, _ = ks.Get(ctx, "b")
	assert.Equal(t, "2", got)
	assert.Equal(t, 1, ks.Len())

	require.NoError(t, ks.Del(ctx, "b"))
	assert.Equal(t, 0, ks.Len())
}
