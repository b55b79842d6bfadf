// Package presence периодически сообщает серверу, что зритель активен.
package presence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/snapsync/internal/validation"
	"github.com/iudanet/snapsync/pkg/api"
)

//go:generate moq -out emitter_mock.go . Emitter

// DefaultInterval is the heartbeat period used when configuration does not set one.
const DefaultInterval = 60 * time.Second

const defaultRequestTimeout = 15 * time.Second

// Emitter sends one heartbeat to the backend.
type Emitter interface {
	SendHeartbeat(ctx context.Context, req api.HeartbeatRequest) error
}

// Heartbeat emits a presence signal immediately on Start and then on every
// interval until Stop or until the parent context is cancelled.
type Heartbeat struct {
	emitter        Emitter
	logger         *slog.Logger
	now            func() time.Time
	cancel         context.CancelFunc
	clientID       string
	requestTimeout time.Duration
	generation     uint64
	mu             sync.Mutex
	running        bool
}

// Option configures a Heartbeat
type Option func(*Heartbeat)

// WithClientID overrides the generated client id.
func WithClientID(id string) Option {
	return func(h *Heartbeat) {
		h.clientID = id
	}
}

// WithRequestTimeout bounds a single emission.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Heartbeat) {
		h.requestTimeout = d
	}
}

// WithClock sets the wall clock used for SentAt.
func WithClock(now func() time.Time) Option {
	return func(h *Heartbeat) {
		h.now = now
	}
}

// NewHeartbeat creates an idle heartbeat. Каждый процесс получает свой
// client id, чтобы сервер различал несколько открытых клиентов одного зрителя.
func NewHeartbeat(emitter Emitter, logger *slog.Logger, opts ...Option) *Heartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Heartbeat{
		emitter:        emitter,
		logger:         logger,
		now:            time.Now,
		clientID:       uuid.New().String(),
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ClientID returns the id sent with every heartbeat.
func (h *Heartbeat) ClientID() string {
	return h.clientID
}

// Start begins emitting. The first heartbeat is sent right away, without
// waiting for the first tick. Start while already running does nothing.
func (h *Heartbeat) Start(ctx context.Context, interval time.Duration) error {
	if err := validation.ValidateInterval("heartbeat interval", interval); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	h.generation++
	h.cancel = cancel
	h.running = true

	go h.loop(runCtx, h.generation, interval)

	h.logger.Debug("Heartbeat started", "client_id", h.clientID, "interval", interval)
	return nil
}

// Stop stops emitting. Safe to call when idle and more than once.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return
	}

	h.cancel()
	h.cancel = nil
	h.running = false
	// тик, сработавший после Stop, увидит новое поколение и ничего не отправит
	h.generation++

	h.logger.Debug("Heartbeat stopped", "client_id", h.clientID)
}

// Running reports whether the heartbeat is active.
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *Heartbeat) loop(ctx context.Context, gen uint64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.beat(ctx, gen)

	for {
		select {
		case <-ctx.Done():
			h.finish(gen)
			return
		case <-ticker.C:
			h.beat(ctx, gen)
		}
	}
}

// finish переводит heartbeat в Idle, если его остановила отмена родительского контекста
func (h *Heartbeat) finish(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.generation != gen || !h.running {
		return
	}
	h.cancel()
	h.cancel = nil
	h.running = false
	h.generation++
}

func (h *Heartbeat) current(gen uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running && h.generation == gen
}

func (h *Heartbeat) beat(ctx context.Context, gen uint64) {
	if !h.current(gen) {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, h.requestTimeout)
	defer cancel()

	req := api.HeartbeatRequest{
		ClientID: h.clientID,
		SentAt:   h.now().UnixMilli(),
	}
	if err := h.emitter.SendHeartbeat(reqCtx, req); err != nil {
		if ctx.Err() != nil {
			return
		}
		// повторим на следующем тике
		h.logger.Warn("Heartbeat failed", "client_id", h.clientID, "error", err)
		return
	}

	h.logger.Debug("Heartbeat sent", "client_id", h.clientID)
}
