package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps dedup records in-process. Entries expire after the configured TTL,
// a TTL of 0 keeps them for the lifetime of the process.
type MemoryStore struct {
	records *gocache.Cache
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	expiration := ttl
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		expiration = gocache.NoExpiration
		cleanup = 0
	}
	return &MemoryStore{
		records: gocache.New(expiration, cleanup),
		ttl:     expiration,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	v, found := m.records.Get(key)
	if !found {
		return Record{}, false, nil
	}
	return v.(Record), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, rec Record) error {
	m.records.Set(key, rec, m.ttl)
	return nil
}
