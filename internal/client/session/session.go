// Package session связывает heartbeat и синхронизатор непрочитанных с
// текущим зрителем. Session живет ровно столько, сколько зритель вошел.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	clientapi "github.com/iudanet/snapsync/internal/client/api"
	"github.com/iudanet/snapsync/internal/client/identity"
	"github.com/iudanet/snapsync/internal/client/presence"
	"github.com/iudanet/snapsync/internal/client/push"
	"github.com/iudanet/snapsync/internal/client/reactions"
	"github.com/iudanet/snapsync/internal/client/unread"
	"github.com/iudanet/snapsync/internal/validation"
)

// Compile-time checks that the REST client and the session file provider
// fit the interfaces consumed here
var (
	_ presence.Emitter          = (*clientapi.Client)(nil)
	_ unread.ConversationLister = (*clientapi.Client)(nil)
	_ reactions.API             = (*clientapi.Client)(nil)
	_ clientapi.TokenSource     = (*identity.File)(nil)
	_ push.TokenSource          = (*identity.File)(nil)
	_ push.IdentityWatcher      = (*identity.File)(nil)
	_ identity.Provider         = (*identity.File)(nil)
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Emitter           presence.Emitter
	Lister            unread.ConversationLister
	Push              push.Provider // may be nil
	Logger            *slog.Logger
	Unread            unread.Config
	HeartbeatInterval time.Duration
}

// Session owns the heartbeat and the unread synchronizer of one viewer.
type Session struct {
	heartbeat *presence.Heartbeat
	unread    *unread.Synchronizer
	logger    *slog.Logger
	viewerID  string
	mu        sync.Mutex
	closed    bool
}

// Init starts the heartbeat and the unread synchronizer for viewerID.
func Init(ctx context.Context, viewerID string, deps Deps) (*Session, error) {
	if err := validation.ValidateViewerID(viewerID); err != nil {
		return nil, fmt.Errorf("%w: %v", unread.ErrNoViewer, err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := deps.HeartbeatInterval
	if interval == 0 {
		interval = presence.DefaultInterval
	}

	hb := presence.NewHeartbeat(deps.Emitter, logger)
	if err := hb.Start(ctx, interval); err != nil {
		return nil, fmt.Errorf("failed to start heartbeat: %w", err)
	}

	syncer := unread.NewSynchronizer(deps.Lister, deps.Push, deps.Unread, logger)
	if err := syncer.Start(ctx, viewerID); err != nil {
		hb.Stop()
		return nil, fmt.Errorf("failed to start unread sync: %w", err)
	}

	logger.Info("Session started", "viewer_id", viewerID, "client_id", hb.ClientID())

	return &Session{
		viewerID:  viewerID,
		heartbeat: hb,
		unread:    syncer,
		logger:    logger,
	}, nil
}

// ViewerID returns the viewer the session belongs to
func (s *Session) ViewerID() string {
	return s.viewerID
}

// Heartbeat returns the session heartbeat
func (s *Session) Heartbeat() *presence.Heartbeat {
	return s.heartbeat
}

// Unread returns the session unread synchronizer
func (s *Session) Unread() *unread.Synchronizer {
	return s.unread
}

// Teardown stops everything the session started. Safe to call twice.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	s.heartbeat.Stop()
	s.unread.Stop()

	s.logger.Info("Session closed", "viewer_id", s.viewerID)
}
