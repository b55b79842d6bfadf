// Package reactions кэширует агрегаты реакций на посты в локальном хранилище
// и поверх кэша предоставляет чтение с fallback в сеть и оптимистичные реакции.
package reactions

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/snapsync/internal/client/storage"
	"github.com/iudanet/snapsync/internal/crdt"
	"github.com/iudanet/snapsync/internal/models"
	"github.com/iudanet/snapsync/internal/validation"
)

const (
	keyNamespace = "snapsync:reactions"
	// schemaVersion входит в ключ и в запись: записи другой версии читаются как промах
	schemaVersion = 1
	// keyDigestSize длина BLAKE2b-дайджеста entityID в ключе, байт
	keyDigestSize = 16
)

// record is the persisted form of a ReactionEntry.
type record struct {
	Counts         map[string]int `json:"counts"`
	EntityID       string         `json:"entity_id"`
	ViewerReaction string         `json:"viewer_reaction"`
	Version        int            `json:"v"`
	UpdatedAt      int64          `json:"updated_at"`
}

// Cache is the local reaction cache. Reads never fail: anything missing or
// malformed is a miss. Writes are last-write-wins by UpdatedAt and swallow
// storage failures, since caching is advisory.
type Cache struct {
	store  storage.LocalStore
	clock  *crdt.Clock
	logger *slog.Logger
	mu     sync.Mutex
}

// NewCache creates a cache over store. A nil clock gets a wall-clock backed one.
func NewCache(store storage.LocalStore, clock *crdt.Clock, logger *slog.Logger) *Cache {
	if clock == nil {
		clock = crdt.NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Clock returns the clock used to stamp writes without an explicit timestamp.
func (c *Cache) Clock() *crdt.Clock {
	return c.clock
}

// entryKeys выводит ключ записи и ключ маркера из entityID.
// BLAKE2b-128 дает ключ фиксированной длины для любого backend.
func entryKeys(entityID string) (payloadKey, markerKey string) {
	h, err := blake2b.New(keyDigestSize, nil)
	if err != nil {
		// размер задан константой и всегда допустим
		panic(err)
	}
	h.Write([]byte(entityID))
	digest := hex.EncodeToString(h.Sum(nil))
	payloadKey = fmt.Sprintf("%s:v%d:%s", keyNamespace, schemaVersion, digest)
	return payloadKey, payloadKey + ":ts"
}

// Read returns the cached entry for entityID, or false on a miss.
func (c *Cache) Read(ctx context.Context, entityID string) (models.ReactionEntry, bool) {
	if err := validation.ValidateEntityID(entityID); err != nil {
		return models.ReactionEntry{}, false
	}

	payloadKey, _ := entryKeys(entityID)

	raw, err := c.store.GetItem(ctx, payloadKey)
	if err != nil {
		if !errors.Is(err, storage.ErrItemNotFound) {
			c.logger.Debug("Reaction cache read failed", "entity_id", entityID, "error", err)
		}
		return models.ReactionEntry{}, false
	}

	entry, err := decodeRecord(raw, entityID)
	if err != nil {
		c.logger.Debug("Ignoring malformed reaction cache record", "entity_id", entityID, "error", err)
		return models.ReactionEntry{}, false
	}

	// маркер впереди данных: более новая запись не дошла до хранилища
	if ts, ok := c.UpdatedAt(ctx, entityID); ok && ts > entry.UpdatedAt {
		c.logger.Debug("Ignoring reaction cache record behind its marker",
			"entity_id", entityID,
			"updated_at", entry.UpdatedAt,
			"marker", ts)
		return models.ReactionEntry{}, false
	}

	return entry, true
}

// UpdatedAt returns the stored timestamp of entityID using only the marker,
// without deserializing the payload. The marker is written after the payload,
// so it can lag behind the payload but is never ahead of it.
func (c *Cache) UpdatedAt(ctx context.Context, entityID string) (int64, bool) {
	if err := validation.ValidateEntityID(entityID); err != nil {
		return 0, false
	}

	_, markerKey := entryKeys(entityID)

	raw, err := c.store.GetItem(ctx, markerKey)
	if err != nil {
		return 0, false
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ts < 0 {
		return 0, false
	}
	return ts, true
}

// Write stores the entry unless the cache already holds one with the same or
// a newer UpdatedAt. updatedAt == 0 means "now" from the cache clock.
// It reports whether the entry was stored. Only invalid arguments yield an
// error; storage and serialization failures are logged and reported as false.
func (c *Cache) Write(ctx context.Context, entityID string, counts map[models.ReactionKind]int, viewerReaction models.ReactionKind, updatedAt int64) (bool, error) {
	if err := validateWrite(entityID, counts, viewerReaction, updatedAt); err != nil {
		return false, err
	}

	if updatedAt == 0 {
		updatedAt = c.clock.Now()
	} else {
		c.clock.Observe(updatedAt)
	}

	rec := record{
		Version:        schemaVersion,
		EntityID:       entityID,
		Counts:         make(map[string]int, len(models.AllReactionKinds)),
		ViewerReaction: string(viewerReaction),
		UpdatedAt:      updatedAt,
	}
	for kind, n := range models.CompleteCounts(counts) {
		rec.Counts[string(kind)] = n
	}

	data, err := json.Marshal(rec)
	if err != nil {
		c.logger.Debug("Failed to encode reaction cache record", "entity_id", entityID, "error", err)
		return false, nil
	}

	// compare-then-store должен быть атомарным хотя бы внутри процесса
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.storedStamp(ctx, entityID); ok && !crdt.Wins(updatedAt, existing) {
		c.logger.Debug("Skipping stale reaction write",
			"entity_id", entityID,
			"new_updated_at", updatedAt,
			"old_updated_at", existing)
		return false, nil
	}

	payloadKey, markerKey := entryKeys(entityID)

	if err := c.store.SetItem(ctx, payloadKey, string(data)); err != nil {
		c.logger.Debug("Failed to store reaction cache record", "entity_id", entityID, "error", err)
		return false, nil
	}

	// маркер только после данных: при сбое он отстает, но не опережает payload
	if err := c.store.SetItem(ctx, markerKey, strconv.FormatInt(updatedAt, 10)); err != nil {
		c.logger.Debug("Failed to store reaction cache marker", "entity_id", entityID, "error", err)
	}

	return true, nil
}

// storedStamp returns the timestamp that a new write must beat. The payload
// decides: the marker may lag behind it after a failed write. A payload the
// cache cannot read does not block writes.
func (c *Cache) storedStamp(ctx context.Context, entityID string) (int64, bool) {
	entry, ok := c.decodeStored(ctx, entityID)
	if !ok {
		return 0, false
	}
	return entry.UpdatedAt, true
}

// decodeStored reads the payload without consulting the marker.
func (c *Cache) decodeStored(ctx context.Context, entityID string) (models.ReactionEntry, bool) {
	payloadKey, _ := entryKeys(entityID)
	raw, err := c.store.GetItem(ctx, payloadKey)
	if err != nil {
		return models.ReactionEntry{}, false
	}
	entry, err := decodeRecord(raw, entityID)
	if err != nil {
		return models.ReactionEntry{}, false
	}
	return entry, true
}

func validateWrite(entityID string, counts map[models.ReactionKind]int, viewerReaction models.ReactionKind, updatedAt int64) error {
	if err := validation.ValidateEntityID(entityID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	for kind, n := range counts {
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown reaction kind %q", ErrInvalidArgument, kind)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative count %d for %q", ErrInvalidArgument, n, kind)
		}
	}
	if viewerReaction != models.ReactionNone && !viewerReaction.Valid() {
		return fmt.Errorf("%w: unknown viewer reaction %q", ErrInvalidArgument, viewerReaction)
	}
	if updatedAt < 0 {
		return fmt.Errorf("%w: negative updatedAt %d", ErrInvalidArgument, updatedAt)
	}
	return nil
}

// decodeRecord parses and validates a stored record. Any deviation from the
// current schema is an error, which the caller treats as a miss.
func decodeRecord(raw, entityID string) (models.ReactionEntry, error) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return models.ReactionEntry{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	if rec.Version != schemaVersion {
		return models.ReactionEntry{}, fmt.Errorf("unsupported record version %d", rec.Version)
	}
	// защита от коллизии хеша ключа
	if rec.EntityID != entityID {
		return models.ReactionEntry{}, fmt.Errorf("record belongs to %q", rec.EntityID)
	}
	if rec.UpdatedAt < 0 {
		return models.ReactionEntry{}, fmt.Errorf("negative updated_at")
	}

	viewer := models.ReactionKind(rec.ViewerReaction)
	if viewer != models.ReactionNone && !viewer.Valid() {
		return models.ReactionEntry{}, fmt.Errorf("unknown viewer reaction %q", rec.ViewerReaction)
	}

	if len(rec.Counts) != len(models.AllReactionKinds) {
		return models.ReactionEntry{}, fmt.Errorf("record has %d kinds, want %d", len(rec.Counts), len(models.AllReactionKinds))
	}
	counts := make(map[models.ReactionKind]int, len(rec.Counts))
	for name, n := range rec.Counts {
		kind := models.ReactionKind(name)
		if !kind.Valid() || n < 0 {
			return models.ReactionEntry{}, fmt.Errorf("invalid count %q=%d", name, n)
		}
		counts[kind] = n
	}

	return models.ReactionEntry{
		EntityID:       rec.EntityID,
		Counts:         counts,
		ViewerReaction: viewer,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}
