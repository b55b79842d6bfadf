package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/snapsync/internal/client/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "testdb.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestNew_Success(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "testdb.db")

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() {
		require.NoError(t, store.Close())
	}()

	// Проверяем что файл БД действительно создан
	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	// Проверяем, что бакет существует
	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketLocal) == nil {
			return os.ErrNotExist
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	// Директория не существует
	invalidPath := filepath.Join(t.TempDir(), "missing", "dir", "db.db")
	store, err := New(context.Background(), invalidPath)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestClose_Twice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.NoError(t, store.Close(), "Second close should be a no-op")
}

func TestLocal_SetAndGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "key", "value"))

	got, err := store.GetItem(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	// Перезапись
	require.NoError(t, store.SetItem(ctx, "key", "value-2"))
	got, err = store.GetItem(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value-2", got)
}

func TestLocal_GetMissing(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetItem(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestLocal_Closed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.GetItem(context.Background(), "key")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.SetItem(context.Background(), "key", "v"), storage.ErrStorageClosed)
}

func TestLocal_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")
	ctx := context.Background()

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SetItem(ctx, "persisted", "yes"))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetItem(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)
}
