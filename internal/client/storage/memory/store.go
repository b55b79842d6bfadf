// Package memory provides a goroutine-safe in-memory local store.
// Данные не переживают перезапуск; используется в тестах и как backend "memory".
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/snapsync/internal/client/storage"
)

// Compile-time check that Store implements LocalStore
var _ storage.LocalStore = (*Store)(nil)

// Store is a map-backed LocalStore with an optional byte quota,
// mirroring the capacity limit of browser-like storage.
type Store struct {
	items map[string]string
	quota int // 0 = без ограничения
	used  int
	mu    sync.RWMutex
}

// New creates an unlimited store.
func New() *Store {
	return NewWithQuota(0)
}

// NewWithQuota creates a store that rejects writes once keys plus values
// would exceed quota bytes.
func NewWithQuota(quota int) *Store {
	return &Store{
		items: make(map[string]string),
		quota: quota,
	}
}

// GetItem returns the value stored under key
func (s *Store) GetItem(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return "", storage.ErrItemNotFound
	}
	return value, nil
}

// SetItem stores value under key
func (s *Store) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used + len(key) + len(value)
	if old, ok := s.items[key]; ok {
		used -= len(key) + len(old)
	}
	if s.quota > 0 && used > s.quota {
		return storage.ErrQuotaExceeded
	}

	s.items[key] = value
	s.used = used
	return nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
