package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Store for single-instance deployments
type Memory struct {
	c     *gocache.Cache
	mu    sync.Mutex // serializes Take
	stats counters
}

// NewMemory creates an in-process store
func NewMemory() *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	m.stats.record(ok)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

func (m *Memory) Take(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.c.Get(key)
	m.stats.record(ok)
	if !ok {
		return nil, false, nil
	}
	m.c.Delete(key)
	return v.([]byte), true, nil
}

// Stats returns hit and miss counts
func (m *Memory) Stats() Stats { return m.stats.snapshot() }

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
