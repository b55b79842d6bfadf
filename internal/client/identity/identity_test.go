package identity

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func tokenFor(t *testing.T, userID string, expiresIn time.Duration) string {
	t.Helper()
	return makeToken(t, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
}

// recorder собирает уведомления Watch
type recorder struct {
	events []state
	mu     sync.Mutex
}

func (r *recorder) fn(viewerID string, ok bool) {
	r.mu.Lock()
	r.events = append(r.events, state{viewerID: viewerID, ok: ok})
	r.mu.Unlock()
}

func (r *recorder) last() (state, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return state{}, 0
	}
	return r.events[len(r.events)-1], len(r.events)
}

func TestStatic(t *testing.T) {
	s := NewStatic("")
	_, ok := s.Current()
	assert.False(t, ok)

	rec := &recorder{}
	cancel := s.Watch(rec.fn)

	s.Set("alice")
	id, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, "alice", id)

	s.Set("alice") // без изменений
	s.Clear()
	s.Clear()

	assert.Equal(t, []state{{viewerID: "alice", ok: true}, {}}, rec.events)

	cancel()
	s.Set("bob")
	_, n := rec.last()
	assert.Equal(t, 2, n, "Cancelled watcher is not called")
}

func TestParseToken(t *testing.T) {
	t.Run("user_id claim", func(t *testing.T) {
		claims, err := ParseToken(tokenFor(t, "u-1", time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.ViewerID())
		assert.False(t, claims.ExpiresAtTime().IsZero())
	})

	t.Run("subject fallback", func(t *testing.T) {
		token := makeToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u-2"}})
		claims, err := ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "u-2", claims.ViewerID())
		assert.True(t, claims.ExpiresAtTime().IsZero())
	})

	t.Run("no viewer", func(t *testing.T) {
		_, err := ParseToken(makeToken(t, Claims{Username: "x"}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token still parses", func(t *testing.T) {
		claims, err := ParseToken(tokenFor(t, "u-3", -time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "u-3", claims.ViewerID())
	})
}

func TestFile_NoSession(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "session.json"), testLogger())

	_, ok := f.Current()
	assert.False(t, ok)
	_, ok = f.AccessToken()
	assert.False(t, ok)
	assert.ErrorIs(t, f.Reload(), ErrNoSession)
	assert.NoError(t, f.Remove(), "Removing a missing session is fine")
}

func TestFile_SaveAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	f := NewFile(path, testLogger())

	rec := &recorder{}
	f.Watch(rec.fn)

	token := tokenFor(t, "viewer-9", time.Hour)
	require.NoError(t, f.Save(token))

	id, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "viewer-9", id)

	got, ok := f.AccessToken()
	require.True(t, ok)
	assert.Equal(t, token, got)

	exp, ok := f.ExpiresAt()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// новый экземпляр (другой процесс) видит ту же сессию
	other := NewFile(path, testLogger())
	id, ok = other.Current()
	assert.True(t, ok)
	assert.Equal(t, "viewer-9", id)

	require.NoError(t, f.Remove())
	_, ok = f.Current()
	assert.False(t, ok)

	assert.Equal(t, []state{{viewerID: "viewer-9", ok: true}, {}}, rec.events)
}

func TestFile_SaveRejectsInvalidToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	f := NewFile(path, testLogger())

	assert.ErrorIs(t, f.Save("garbage"), ErrInvalidToken)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFile_ExpiredTokenIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	f := NewFile(path, testLogger())

	require.NoError(t, f.Save(tokenFor(t, "viewer-1", -time.Minute)))

	_, ok := f.Current()
	assert.False(t, ok)
	_, ok = f.AccessToken()
	assert.False(t, ok)
}

func TestFile_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	f := NewFile(path, testLogger())
	_, ok := f.Current()
	assert.False(t, ok)
	assert.Error(t, f.Reload())
}

func TestFile_RunFollowsOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	f := NewFile(path, testLogger())
	writer := NewFile(path, testLogger())

	rec := &recorder{}
	f.Watch(rec.fn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	// даем наблюдателю подписаться на каталог
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, writer.Save(tokenFor(t, "viewer-2", time.Hour)))
	require.Eventually(t, func() bool {
		id, ok := f.Current()
		return ok && id == "viewer-2"
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, writer.Remove())
	require.Eventually(t, func() bool {
		_, ok := f.Current()
		return !ok
	}, 3*time.Second, 10*time.Millisecond)

	last, _ := rec.last()
	assert.Equal(t, state{}, last)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestFile_RunReportsExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	f := NewFile(path, testLogger())
	// NumericDate округляет до секунд
	require.NoError(t, f.Save(tokenFor(t, "viewer-3", 1500*time.Millisecond)))

	rec := &recorder{}
	f.Watch(rec.fn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	require.Eventually(t, func() bool {
		last, n := rec.last()
		return n > 0 && !last.ok
	}, 4*time.Second, 20*time.Millisecond)
}
