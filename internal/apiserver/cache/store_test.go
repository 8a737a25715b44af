package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statser interface {
	Stats() Stats
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "once", []byte("token"), time.Minute))
	v, ok, err = s.Take(ctx, "once")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token", string(v))
	_, ok, err = s.Take(ctx, "once")
	require.NoError(t, err)
	assert.False(t, ok)

	type payload struct{ Name string }
	require.NoError(t, SetJSON(ctx, s, "json", payload{Name: "alpha"}, time.Minute))
	p, ok, err := GetJSON[payload](ctx, s, "json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alpha", p.Name)

	require.NoError(t, s.Set(ctx, "garbage", []byte("{"), time.Minute))
	_, ok, err = GetJSON[payload](ctx, s, "garbage")
	require.NoError(t, err)
	assert.False(t, ok)

	p, ok, err = TakeJSON[payload](ctx, s, "json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alpha", p.Name)
	_, ok, err = TakeJSON[payload](ctx, s, "json")
	require.NoError(t, err)
	assert.False(t, ok)

	st := s.(statser).Stats()
	assert.Positive(t, st.Hits)
	assert.Positive(t, st.Misses)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStore_Expiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, ok, _ := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(client, "test:")
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), "ttl", []byte("v"), time.Second))
	assert.True(t, mr.Exists("test:ttl"))
	mr.FastForward(2 * time.Second)
	_, ok, _ := s.Get(context.Background(), "ttl")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	s, err := New(config.CacheConfig{Type: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	mr := miniredis.RunT(t)
	s, err = New(config.CacheConfig{Type: "redis", Redis: config.CacheRedisConfig{Addr: mr.Addr(), Prefix: "p:"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, s)
	require.NoError(t, s.Close())

	_, err = New(config.CacheConfig{Type: "memcached"}, nil)
	assert.Error(t, err)
}
