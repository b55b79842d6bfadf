package storage

import "context"

//go:generate moq -out localstore_mock.go . LocalStore

// LocalStore defines the persistent string key-value store used by client caches.
// Implementations are origin-scoped (one per profile/database file) and may be
// shared by several processes.
type LocalStore interface {
	// GetItem returns the value stored under key
	// Returns ErrItemNotFound if nothing is stored
	GetItem(ctx context.Context, key string) (string, error)

	// SetItem stores value under key, replacing any previous value
	// May return ErrQuotaExceeded under capacity pressure
	SetItem(ctx context.Context, key, value string) error
}

// Backend names accepted by configuration
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)
