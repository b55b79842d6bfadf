// Package unread поддерживает суммарный счетчик непрочитанных сообщений.
//
// Значение всегда берется из опроса списка диалогов. Push-событие и
// резервный таймер только запускают тот же опрос.
package unread

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/snapsync/internal/client/push"
	"github.com/iudanet/snapsync/internal/validation"
	"github.com/iudanet/snapsync/pkg/api"
)

//go:generate moq -out lister_mock.go . ConversationLister

// EventRefresh is the push event that triggers a poll.
const EventRefresh = "refresh"

// Defaults used when Config leaves a field zero
const (
	DefaultPollInterval   = 10 * time.Second
	DefaultPageSize       = 100
	DefaultRequestTimeout = 30 * time.Second
)

// ConversationLister fetches one page of the viewer's conversations.
type ConversationLister interface {
	ListConversations(ctx context.Context, page, limit int) (*api.ConversationPage, error)
}

// Config configures a Synchronizer.
type Config struct {
	PollInterval   time.Duration
	RequestTimeout time.Duration
	PageSize       int
}

func (c *Config) defaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
}

// pollOutcome is shared by every caller joined to one poll
type pollOutcome struct {
	err error
	// seq номер последнего запроса Refresh, учтенного этим опросом
	seq uint64
}

// Synchronizer keeps the total unread count for one viewer at a time.
type Synchronizer struct {
	lister    ConversationLister
	push      push.Provider
	logger    *slog.Logger
	runCtx    context.Context
	cancel    context.CancelFunc
	observers map[uint64]func(int)
	group     singleflight.Group
	sub       push.Subscription
	viewerID  string
	config    Config

	generation   uint64
	requested    uint64
	nextObserver uint64
	count        int
	mu           sync.Mutex
	running      bool
	subscribed   bool
}

// NewSynchronizer creates a stopped synchronizer. pushProvider may be nil,
// in which case only the timer and manual refreshes trigger polls.
func NewSynchronizer(lister ConversationLister, pushProvider push.Provider, config Config, logger *slog.Logger) *Synchronizer {
	config.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		lister:    lister,
		push:      pushProvider,
		config:    config,
		logger:    logger,
		observers: make(map[uint64]func(int)),
	}
}

// Start begins tracking viewerID: subscribes to the viewer's push channel,
// starts the fallback timer and issues an initial refresh. Start for the
// current viewer does nothing; a different viewer replaces the current one.
func (s *Synchronizer) Start(ctx context.Context, viewerID string) error {
	if err := validation.ValidateViewerID(viewerID); err != nil {
		return fmt.Errorf("%w: %v", ErrNoViewer, err)
	}

	s.mu.Lock()
	if s.running && s.viewerID == viewerID {
		s.mu.Unlock()
		return nil
	}
	prev := s.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	s.generation++
	gen := s.generation
	s.runCtx = runCtx
	s.cancel = cancel
	s.viewerID = viewerID
	s.running = true
	s.mu.Unlock()

	s.complete(prev)

	// подписка может писать в сеть, поэтому выполняется без блокировки
	if s.push != nil {
		sub, err := s.push.Subscribe(push.UserChannel(viewerID), EventRefresh, s.pushHandler(runCtx, gen))
		if err != nil {
			// без push остаются таймер и ручное обновление
			s.logger.Warn("Failed to subscribe to unread push channel", "viewer_id", viewerID, "error", err)
		} else if !s.attach(gen, sub) {
			// Stop или другой Start успели раньше
			s.unsubscribe(sub, viewerID)
			return nil
		}
	}

	if !s.isCurrent(gen) {
		return nil
	}

	go s.loop(runCtx, gen)

	s.logger.Debug("Unread synchronizer started", "viewer_id", viewerID, "poll_interval", s.config.PollInterval)
	return nil
}

// attach records sub for generation gen unless that generation is gone.
func (s *Synchronizer) attach(gen uint64, sub push.Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.generation != gen {
		return false
	}
	s.sub = sub
	s.subscribed = true
	return true
}

func (s *Synchronizer) unsubscribe(sub push.Subscription, viewerID string) {
	if err := s.push.Unsubscribe(sub); err != nil {
		s.logger.Debug("Failed to unsubscribe unread push channel", "viewer_id", viewerID, "error", err)
	}
}

// Stop unsubscribes, stops the timer and resets the count to 0. Results of
// polls still in flight are discarded. Safe to call when stopped.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	td := s.stopLocked()
	s.mu.Unlock()

	s.complete(td)
}

// teardown is the part of a stop that runs after s.mu is released
type teardown struct {
	sub         push.Subscription
	viewerID    string
	unsubscribe bool
	reset       bool
}

// stopLocked ends the current generation. Caller holds s.mu and must pass
// the result to complete after unlocking.
func (s *Synchronizer) stopLocked() teardown {
	if !s.running {
		return teardown{}
	}

	td := teardown{
		sub:         s.sub,
		viewerID:    s.viewerID,
		unsubscribe: s.subscribed,
		reset:       s.count != 0,
	}

	s.cancel()
	s.cancel = nil
	s.subscribed = false
	s.sub = push.Subscription{}
	s.running = false
	s.viewerID = ""
	s.generation++
	s.count = 0

	s.logger.Debug("Unread synchronizer stopped", "viewer_id", td.viewerID)
	return td
}

// complete unsubscribes and announces the reset count outside the lock.
func (s *Synchronizer) complete(td teardown) {
	if td.unsubscribe {
		s.unsubscribe(td.sub, td.viewerID)
	}
	if td.reset {
		s.notify(0)
	}
}

// Refresh polls the conversation list and overwrites the count with the sum
// of unread counters. Overlapping refreshes share one poll; a refresh that
// arrives after the in-flight poll started gets a poll of its own. Poll
// errors are logged, returned and leave the previous count in place.
// Refresh while stopped does nothing.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.requested++
	want := s.requested
	gen := s.generation
	s.mu.Unlock()

	key := "conversations:" + strconv.FormatUint(gen, 10)
	for {
		ch := s.group.DoChan(key, func() (any, error) {
			return s.poll(gen), nil
		})

		var outcome pollOutcome
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-ch:
			outcome = res.Val.(pollOutcome)
		}

		if outcome.seq >= want || !s.isCurrent(gen) {
			return outcome.err
		}
	}
}

// Count returns the last polled unread total, 0 while stopped.
func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// ViewerID returns the tracked viewer, empty while stopped.
func (s *Synchronizer) ViewerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewerID
}

// Running reports whether the synchronizer is started.
func (s *Synchronizer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// OnChange registers fn to be called with the new count whenever it changes.
// The returned function removes the observer.
func (s *Synchronizer) OnChange(fn func(count int)) (cancel func()) {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Synchronizer) notify(count int) {
	s.mu.Lock()
	observers := make([]func(int), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(count)
	}
}

func (s *Synchronizer) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.generation == gen
}

func (s *Synchronizer) pushHandler(ctx context.Context, gen uint64) push.Handler {
	return func(json.RawMessage) {
		if !s.isCurrent(gen) {
			return
		}
		// обработчик push не должен блокировать доставку
		go func() {
			_ = s.Refresh(ctx)
		}()
	}
}

func (s *Synchronizer) loop(ctx context.Context, gen uint64) {
	_ = s.Refresh(ctx)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.finish(gen)
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

// finish останавливает поколение, если его завершила отмена родительского контекста
func (s *Synchronizer) finish(gen uint64) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	td := s.stopLocked()
	s.mu.Unlock()

	s.complete(td)
}

// poll performs one request for generation gen and applies its result if
// the generation is still current.
func (s *Synchronizer) poll(gen uint64) pollOutcome {
	s.mu.Lock()
	seq := s.requested
	runCtx := s.runCtx
	viewerID := s.viewerID
	current := s.running && s.generation == gen
	s.mu.Unlock()

	if !current {
		return pollOutcome{seq: seq}
	}

	ctx, cancel := context.WithTimeout(runCtx, s.config.RequestTimeout)
	defer cancel()

	page, err := s.lister.ListConversations(ctx, 1, s.config.PageSize)
	if err != nil {
		if s.isCurrent(gen) {
			s.logger.Warn("Failed to poll unread count", "viewer_id", viewerID, "error", err)
		}
		return pollOutcome{seq: seq, err: fmt.Errorf("failed to poll conversations: %w", err)}
	}

	total := 0
	if page != nil {
		total = page.UnreadTotal()
	}

	s.mu.Lock()
	if !s.running || s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("Discarding unread poll result of a stopped session", "viewer_id", viewerID)
		return pollOutcome{seq: seq}
	}
	changed := s.count != total
	s.count = total
	s.mu.Unlock()

	if changed {
		s.logger.Debug("Unread count updated", "viewer_id", viewerID, "count", total)
		s.notify(total)
	}
	return pollOutcome{seq: seq}
}
