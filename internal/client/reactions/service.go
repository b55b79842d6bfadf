package reactions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iudanet/snapsync/internal/crdt"
	"github.com/iudanet/snapsync/internal/models"
	"github.com/iudanet/snapsync/internal/validation"
	"github.com/iudanet/snapsync/pkg/api"
)

//go:generate moq -out api_mock.go . API

// API is the part of the REST client the reaction service needs.
type API interface {
	GetReactions(ctx context.Context, entityID string) (*api.ReactionSummary, error)
	SetReaction(ctx context.Context, entityID, kind string) (*api.ReactionSummary, error)
	ClearReaction(ctx context.Context, entityID string) (*api.ReactionSummary, error)
}

// Service reads reactions through the cache and applies the viewer's own
// reactions optimistically.
type Service struct {
	api    API
	cache  *Cache
	clock  *crdt.Clock
	logger *slog.Logger
}

// NewService creates a reaction service
func NewService(apiClient API, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:    apiClient,
		cache:  cache,
		clock:  cache.Clock(),
		logger: logger,
	}
}

// Get returns the cached entry, falling back to the network on a miss.
func (s *Service) Get(ctx context.Context, entityID string) (models.ReactionEntry, error) {
	if err := validation.ValidateEntityID(entityID); err != nil {
		return models.ReactionEntry{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if entry, ok := s.cache.Read(ctx, entityID); ok {
		return entry, nil
	}

	return s.Fetch(ctx, entityID)
}

// Fetch загружает агрегат с сервера и кладет его в кэш с серверным updatedAt.
// Если в кэше уже лежит более свежая (например, оптимистичная) запись,
// возвращается она.
func (s *Service) Fetch(ctx context.Context, entityID string) (models.ReactionEntry, error) {
	summary, err := s.api.GetReactions(ctx, entityID)
	if err != nil {
		return models.ReactionEntry{}, fmt.Errorf("failed to fetch reactions: %w", err)
	}

	entry := s.fromSummary(entityID, summary)
	if entry.UpdatedAt <= 0 {
		entry.UpdatedAt = s.clock.Now()
	}

	stored, err := s.cache.Write(ctx, entityID, entry.Counts, entry.ViewerReaction, entry.UpdatedAt)
	if err != nil {
		return models.ReactionEntry{}, err
	}
	if !stored {
		if cached, ok := s.cache.Read(ctx, entityID); ok && cached.UpdatedAt > entry.UpdatedAt {
			return cached, nil
		}
	}

	return entry, nil
}

// React sets the viewer's reaction on entityID (ReactionNone removes it).
// The change is cached immediately; the server answer then replaces it.
// On a server error the previous state is restored and the error returned.
func (s *Service) React(ctx context.Context, entityID string, kind models.ReactionKind) (models.ReactionEntry, error) {
	if err := validation.ValidateEntityID(entityID); err != nil {
		return models.ReactionEntry{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if kind != models.ReactionNone && !kind.Valid() {
		return models.ReactionEntry{}, fmt.Errorf("%w: unknown reaction kind %q", ErrInvalidArgument, kind)
	}

	prev, err := s.Get(ctx, entityID)
	if err != nil {
		return models.ReactionEntry{}, err
	}

	optimistic := applyReaction(prev, kind)
	if _, err := s.cache.Write(ctx, entityID, optimistic.Counts, optimistic.ViewerReaction, 0); err != nil {
		return models.ReactionEntry{}, err
	}

	var summary *api.ReactionSummary
	if kind == models.ReactionNone {
		summary, err = s.api.ClearReaction(ctx, entityID)
	} else {
		summary, err = s.api.SetReaction(ctx, entityID, string(kind))
	}
	if err != nil {
		s.logger.Warn("Reaction request failed, rolling back",
			"entity_id", entityID,
			"kind", kind,
			"error", err)
		// откат должен быть новее оптимистичной записи, поэтому stamp = 0 (now)
		if _, rbErr := s.cache.Write(ctx, entityID, prev.Counts, prev.ViewerReaction, 0); rbErr != nil {
			s.logger.Debug("Rollback write rejected", "entity_id", entityID, "error", rbErr)
		}
		return models.ReactionEntry{}, fmt.Errorf("failed to apply reaction: %w", err)
	}

	// Ответ сервера авторитетен для нашей собственной записи: штампуем его
	// свежим временем, чтобы он заменил оптимистичную версию
	confirmed := s.fromSummary(entityID, summary)
	s.clock.Observe(confirmed.UpdatedAt)
	confirmed.UpdatedAt = s.clock.Now()

	if _, err := s.cache.Write(ctx, entityID, confirmed.Counts, confirmed.ViewerReaction, confirmed.UpdatedAt); err != nil {
		return models.ReactionEntry{}, err
	}

	return confirmed, nil
}

// applyReaction moves the viewer's vote from its previous kind to kind.
func applyReaction(prev models.ReactionEntry, kind models.ReactionKind) models.ReactionEntry {
	next := prev.Clone()
	next.Counts = models.CompleteCounts(next.Counts)

	if prev.ViewerReaction == kind {
		return next
	}
	if prev.ViewerReaction.Valid() && next.Counts[prev.ViewerReaction] > 0 {
		next.Counts[prev.ViewerReaction]--
	}
	if kind.Valid() {
		next.Counts[kind]++
	}
	next.ViewerReaction = kind
	return next
}

// fromSummary переводит серверный агрегат в модель, отбрасывая незнакомые виды
func (s *Service) fromSummary(entityID string, summary *api.ReactionSummary) models.ReactionEntry {
	counts := make(map[models.ReactionKind]int, len(models.AllReactionKinds))
	for name, n := range summary.Counts {
		kind := models.ReactionKind(strings.ToLower(name))
		if !kind.Valid() {
			s.logger.Warn("Ignoring unknown reaction kind from server", "entity_id", entityID, "kind", name)
			continue
		}
		if n < 0 {
			n = 0
		}
		counts[kind] = n
	}

	viewer := models.ReactionNone
	if summary.ViewerReaction != nil {
		candidate := models.ReactionKind(strings.ToLower(*summary.ViewerReaction))
		if candidate.Valid() {
			viewer = candidate
		}
	}

	return models.ReactionEntry{
		EntityID:       entityID,
		Counts:         models.CompleteCounts(counts),
		ViewerReaction: viewer,
		UpdatedAt:      summary.UpdatedAt,
	}
}
