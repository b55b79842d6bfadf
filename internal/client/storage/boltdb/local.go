package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/snapsync/internal/client/storage"
)

// Compile-time check that Storage implements LocalStore
var _ storage.LocalStore = (*Storage)(nil)

// GetItem returns the value stored under key
func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var value string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketLocal)
		if bucket == nil {
			return storage.ErrItemNotFound
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrItemNotFound
		}

		// data валиден только внутри транзакции, string() копирует
		value = string(data)
		return nil
	})

	if err != nil {
		return "", err
	}

	return value, nil
}

// SetItem stores value under key
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketLocal)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save item: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
