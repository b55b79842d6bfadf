package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/snapsync/internal/client/storage"
)

// Compile-time check that Storage implements LocalStore
var _ storage.LocalStore = (*Storage)(nil)

// GetItem returns the value stored under key
func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.QueryRowContext(ctx,
		`SELECT item_value FROM local_items WHERE item_key = ?`, key,
	).Scan(&value)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrItemNotFound
		}
		if isClosed(err) {
			return "", storage.ErrStorageClosed
		}
		return "", fmt.Errorf("failed to get item: %w", err)
	}

	return value, nil
}

// SetItem stores value under key
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_items (item_key, item_value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(item_key) DO UPDATE SET item_value = excluded.item_value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		if isClosed(err) {
			return storage.ErrStorageClosed
		}
		if isFull(err) {
			return fmt.Errorf("%w: %v", storage.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to save item: %w", err)
	}

	return nil
}

func isClosed(err error) bool {
	return strings.Contains(err.Error(), "database is closed")
}

// SQLITE_FULL
func isFull(err error) bool {
	return strings.Contains(err.Error(), "database or disk is full")
}
