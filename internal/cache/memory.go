package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. The hook falls back to it when the
// cache directory is unusable, so resolution still works (uncached).
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data []byte
	mod  time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), e.data...), nil
}

func (s *MemoryStore) Write(_ context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{data: append([]byte(nil), data...), mod: s.now()}
	return nil
}

func (s *MemoryStore) ModTime(_ context.Context, key string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return e.mod, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
