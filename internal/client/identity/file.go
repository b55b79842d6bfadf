package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Compile-time check that File implements Provider
var _ Provider = (*File)(nil)

const reloadDebounce = 100 * time.Millisecond

// sessionFile is the on-disk session written by login
type sessionFile struct {
	AccessToken string `json:"access_token"`
	SavedAt     int64  `json:"saved_at"`
}

// File is a Provider backed by a session file holding the viewer's JWT.
// The viewer is absent when the file is missing, unreadable, or holds an
// expired token. Run keeps the state in sync with the file on disk, so a
// login or logout from another process is picked up.
type File struct {
	expiresAt time.Time
	logger    *slog.Logger
	now       func() time.Time
	path      string
	token     string
	watchers  watchers
	viewerID  string
	// last состояние, о котором уже уведомлены подписчики
	last state
	mu   sync.Mutex
}

// NewFile creates a provider for path and loads the session if it exists.
func NewFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	f := &File{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
	if err := f.Reload(); err != nil && !errors.Is(err, ErrNoSession) {
		logger.Warn("Failed to load session", "path", path, "error", err)
	}
	return f
}

// Path returns the session file path
func (f *File) Path() string {
	return f.path
}

// Current returns the logged-in viewer. An expired token counts as absent.
func (f *File) Current() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.stateLocked()
	return s.viewerID, s.ok
}

// AccessToken returns the bearer token of a valid session.
func (f *File) AccessToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stateLocked().ok {
		return "", false
	}
	return f.token, true
}

// ExpiresAt returns the token expiry; ok is false without a session or
// when the token never expires.
func (f *File) ExpiresAt() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" || f.expiresAt.IsZero() {
		return time.Time{}, false
	}
	return f.expiresAt, true
}

// Watch registers fn for viewer changes
func (f *File) Watch(fn func(viewerID string, ok bool)) func() {
	return f.watchers.add(fn)
}

func (f *File) stateLocked() state {
	if f.token == "" {
		return state{}
	}
	if !f.expiresAt.IsZero() && !f.now().Before(f.expiresAt) {
		return state{}
	}
	return state{viewerID: f.viewerID, ok: true}
}

// Reload re-reads the session file and notifies watchers when the viewer
// changed. A missing file yields ErrNoSession and clears the session.
func (f *File) Reload() error {
	token, claims, err := f.read()

	f.mu.Lock()
	if err != nil {
		f.token, f.viewerID, f.expiresAt = "", "", time.Time{}
	} else {
		f.token = token
		f.viewerID = claims.ViewerID()
		f.expiresAt = claims.ExpiresAtTime()
	}
	f.mu.Unlock()

	f.publish()
	return err
}

func (f *File) read() (string, *Claims, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, ErrNoSession
		}
		return "", nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal session file: %w", err)
	}
	if sf.AccessToken == "" {
		return "", nil, ErrNoSession
	}

	claims, err := ParseToken(sf.AccessToken)
	if err != nil {
		return "", nil, err
	}
	return sf.AccessToken, claims, nil
}

// publish уведомляет подписчиков, если видимое состояние изменилось
func (f *File) publish() {
	f.mu.Lock()
	next := f.stateLocked()
	changed := next != f.last
	f.last = next
	f.mu.Unlock()

	if changed {
		f.logger.Debug("Session changed", "viewer_id", next.viewerID, "logged_in", next.ok)
		f.watchers.notify(next)
	}
}

// Save validates token and writes it as the new session.
func (f *File) Save(token string) error {
	if _, err := ParseToken(token); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sessionFile{
		AccessToken: token,
		SavedAt:     f.now().UnixMilli(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	// запись через временный файл: наблюдатели не увидят половину JSON
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return f.Reload()
}

// Remove deletes the session file. Removing a missing session is not an error.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	if err := f.Reload(); err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}
	return nil
}

// Run watches the session file until ctx is done. Changes are debounced;
// token expiry is reported as a logout when it happens.
func (f *File) Run(ctx context.Context) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// следим за каталогом: файл может создаваться и удаляться
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// файл мог измениться до запуска наблюдателя
	f.reloadLogged()

	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

	expiry := time.NewTimer(0)
	f.resetExpiry(expiry)
	defer expiry.Stop()

	name := filepath.Base(f.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				debounce.Reset(reloadDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("Session watcher error", "error", err)
		case <-debounce.C:
			f.reloadLogged()
			f.resetExpiry(expiry)
		case <-expiry.C:
			f.publish()
			f.resetExpiry(expiry)
		}
	}
}

func (f *File) reloadLogged() {
	if err := f.Reload(); err != nil && !errors.Is(err, ErrNoSession) {
		f.logger.Warn("Failed to reload session", "path", f.path, "error", err)
	}
}

// resetExpiry arms timer for the expiry of the current token, if any
func (f *File) resetExpiry(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}

	f.mu.Lock()
	expiresAt := f.expiresAt
	hasToken := f.token != ""
	announced := f.last.ok
	f.mu.Unlock()

	if !hasToken || expiresAt.IsZero() {
		return
	}
	wait := expiresAt.Sub(f.now())
	if wait <= 0 {
		// уже истек: достаточно одного publish
		if announced {
			timer.Reset(0)
		}
		return
	}
	timer.Reset(wait)
}
