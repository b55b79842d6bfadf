package storage

import "errors"

// Common client storage errors
var (
	// ErrItemNotFound indicates that no value is stored under the key
	ErrItemNotFound = errors.New("item not found")

	// ErrQuotaExceeded indicates that the store refused a write because of its capacity limit
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
