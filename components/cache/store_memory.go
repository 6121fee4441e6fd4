package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps entries in process. Expired entries are dropped on
// access and by Cleanup.
type MemoryStore struct {
	name       string
	mu         sync.RWMutex
	data       map[string]*memoryItem
	maxEntries int
	now        func() time.Time
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates a store holding at most maxEntries (default 10000)
func NewMemoryStore(name string, maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryStore{
		name:       name,
		data:       make(map[string]*memoryItem),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) Name() string {
	return s.name
}

func (s *MemoryStore) expired(item *memoryItem) bool {
	return !item.expiresAt.IsZero() && s.now().After(item.expiresAt)
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	item, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if s.expired(item) {
		s.dropExpired(key, item)
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// dropExpired deletes key only while it still maps to the expired item
func (s *MemoryStore) dropExpired(key string, item *memoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[key] == item {
		delete(s.data, key)
	}
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists && len(s.data) >= s.maxEntries {
		s.evictOne()
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = &memoryItem{value: stored, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
		}
	}
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.data[key]
	return ok && !s.expired(item)
}

// Close drops every entry
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*memoryItem)
	return nil
}

// Size counts entries, expired ones included
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Cleanup removes expired entries and returns how many were removed
func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, item := range s.data {
		if s.expired(item) {
			delete(s.data, key)
			n++
		}
	}
	return n
}

// evictOne drops an expired entry if there is one, otherwise the entry
// closest to expiry, otherwise any entry
func (s *MemoryStore) evictOne() {
	var victim string
	var victimExpiry time.Time

	for key, item := range s.data {
		if s.expired(item) {
			delete(s.data, key)
			return
		}
		if item.expiresAt.IsZero() {
			if victim == "" {
				victim = key
			}
			continue
		}
		if victimExpiry.IsZero() || item.expiresAt.Before(victimExpiry) {
			victim = key
			victimExpiry = item.expiresAt
		}
	}

	if victim != "" {
		delete(s.data, victim)
	}
}

var _ Store = (*MemoryStore)(nil)
