package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value  string
	expiry time.Time
}

// memoryStore keeps credentials in process memory. Used in tests and by hosts
// that own persistence themselves.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     opts.TTL,
		now:     time.Now,
	}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(ctx, key); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if now := m.now(); expired(entry.expiry, now) {
		m.expireIfStale(key, now)
		return "", false, nil
	}
	return entry.value, true, nil
}

// expireIfStale deletes key only if the entry is still expired at now. A Set
// that landed after the read keeps its fresh value.
func (m *memoryStore) expireIfStale(key string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[key]; ok && expired(entry.expiry, now) {
		delete(m.entries, key)
	}
}

func (m *memoryStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiry: expiryFor(m.now(), m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Close() error { return nil }
