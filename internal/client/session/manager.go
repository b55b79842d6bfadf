package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iudanet/snapsync/internal/client/identity"
)

type change struct {
	viewerID string
	ok       bool
}

// Manager keeps exactly one Session alive while the identity provider
// reports a viewer, and none while it does not.
type Manager struct {
	identity  identity.Provider
	current   *Session
	logger    *slog.Logger
	observers []func(*Session)
	deps      Deps
	mu        sync.Mutex
}

// NewManager creates a manager; call Run to start following identity.
func NewManager(provider identity.Provider, deps Deps, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}
	return &Manager{
		identity: provider,
		deps:     deps,
		logger:   logger,
	}
}

// OnSession registers fn to be called with every new session and with nil
// after a session is torn down. Register before Run.
func (m *Manager) OnSession(fn func(*Session)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Current returns the active session or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Run follows identity changes until ctx is done, then tears the active
// session down.
func (m *Manager) Run(ctx context.Context) error {
	changes := make(chan change, 8)
	cancel := m.identity.Watch(func(viewerID string, ok bool) {
		select {
		case changes <- change{viewerID: viewerID, ok: ok}:
		case <-ctx.Done():
		}
	})
	defer cancel()

	viewerID, ok := m.identity.Current()
	m.apply(ctx, change{viewerID: viewerID, ok: ok})

	for {
		select {
		case <-ctx.Done():
			m.teardown()
			return ctx.Err()
		case c := <-changes:
			m.apply(ctx, c)
		}
	}
}

func (m *Manager) apply(ctx context.Context, c change) {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if c.ok && current != nil && current.ViewerID() == c.viewerID {
		return
	}

	m.teardown()

	if !c.ok {
		return
	}

	s, err := Init(ctx, c.viewerID, m.deps)
	if err != nil {
		m.logger.Error("Failed to start session", "viewer_id", c.viewerID, "error", err)
		return
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	m.emit(s)
}

func (m *Manager) teardown() {
	m.mu.Lock()
	current := m.current
	m.current = nil
	m.mu.Unlock()

	if current == nil {
		return
	}
	current.Teardown()
	m.emit(nil)
}

func (m *Manager) emit(s *Session) {
	m.mu.Lock()
	observers := append([]func(*Session){}, m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}
