package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/iudanet/snapsync/pkg/api"
)

type staticToken string

func (s staticToken) AccessToken() (string, bool) {
	return string(s), s != ""
}

// fakePushServer эмулирует push-сервер: подтверждает аутентификацию,
// запоминает команды и отвечает событием refresh на каждую подписку.
type fakePushServer struct {
	commands    []api.PushEnvelope
	authHeaders []string
	mu          sync.Mutex
	// dropAfterSubscribe закрывает первое соединение сразу после подписки
	dropAfterSubscribe bool
	connections        int
	rejectAuth         bool
}

func (f *fakePushServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

		f.mu.Lock()
		f.connections++
		connNum := f.connections
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		reject := f.rejectAuth
		f.mu.Unlock()

		ctx := r.Context()
		if reject {
			writeFrame(ctx, conn, `{"Type":"error","Message":"invalid token"}`)
			return
		}
		// сервер отвечает в PascalCase, как и REST API
		writeFrame(ctx, conn, `{"Type":"authenticated"}`)

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var env api.PushEnvelope
			if err := json.Unmarshal(data, &env); err != nil {
				t.Errorf("client sent invalid frame: %v", err)
				return
			}

			f.mu.Lock()
			f.commands = append(f.commands, env)
			drop := f.dropAfterSubscribe && connNum == 1
			f.mu.Unlock()

			if env.Type != api.PushTypeSubscribe {
				continue
			}
			if drop {
				return
			}
			writeFrame(ctx, conn, `not json`)
			writeFrame(ctx, conn, `{"Type":"event","Channel":"`+env.Channel+`","Event":"refresh","Data":{"Count":1}}`)
		}
	}
}

func (f *fakePushServer) subscribes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var channels []string
	for _, c := range f.commands {
		if c.Type == api.PushTypeSubscribe {
			channels = append(channels, c.Channel)
		}
	}
	return channels
}

func (f *fakePushServer) hasCommand(typ, channel string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.commands {
		if c.Type == typ && c.Channel == channel {
			return true
		}
	}
	return false
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame string) {
	_ = conn.Write(ctx, websocket.MessageText, []byte(frame))
}

func startClient(t *testing.T, srv *httptest.Server, cfg WSConfig) (*WSClient, chan error) {
	t.Helper()

	cfg.URL = srv.URL
	if cfg.ReconnectBaseDelay == 0 {
		cfg.ReconnectBaseDelay = 10 * time.Millisecond
	}
	client := NewWSClient(cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})
	return client, done
}

func TestWSClient_DeliversEvents(t *testing.T) {
	fake := &fakePushServer{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, _ := startClient(t, srv, WSConfig{Tokens: staticToken("jwt-token")})

	received := make(chan json.RawMessage, 1)
	_, err := client.Subscribe("user.42", "refresh", func(data json.RawMessage) {
		select {
		case received <- data:
		default:
		}
	})
	require.NoError(t, err)

	select {
	case data := <-received:
		assert.JSONEq(t, `{"count":1}`, string(data), "Payload keys are normalized")
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	assert.Equal(t, StateConnected, client.State())
	fake.mu.Lock()
	assert.Equal(t, "Bearer jwt-token", fake.authHeaders[0])
	fake.mu.Unlock()
}

func TestWSClient_SubscribeBeforeConnect(t *testing.T) {
	fake := &fakePushServer{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := NewWSClient(WSConfig{URL: srv.URL}, testLogger())

	received := make(chan struct{}, 1)
	_, err := client.Subscribe("user.7", "refresh", func(json.RawMessage) {
		select {
		case received <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err, "Subscribing without a connection is allowed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = client.Run(ctx) }()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not sent on connect")
	}
	assert.Equal(t, []string{"user.7"}, fake.subscribes())
}

func TestWSClient_ResubscribesAfterReconnect(t *testing.T) {
	fake := &fakePushServer{dropAfterSubscribe: true}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, _ := startClient(t, srv, WSConfig{})

	received := make(chan struct{}, 1)
	_, err := client.Subscribe("user.1", "refresh", func(json.RawMessage) {
		select {
		case received <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	select {
	case <-received:
	case <-time.After(3 * time.Second):
		t.Fatal("event was not delivered after reconnect")
	}

	fake.mu.Lock()
	assert.GreaterOrEqual(t, fake.connections, 2)
	fake.mu.Unlock()
	assert.GreaterOrEqual(t, len(fake.subscribes()), 2)
}

func TestWSClient_UnsubscribeLastSendsCommand(t *testing.T) {
	fake := &fakePushServer{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, _ := startClient(t, srv, WSConfig{})

	require.Eventually(t, func() bool {
		return client.State() == StateConnected
	}, 2*time.Second, 5*time.Millisecond)

	noop := func(json.RawMessage) {}
	a, err := client.Subscribe("user.1", "refresh", noop)
	require.NoError(t, err)
	b, err := client.Subscribe("user.1", "refresh", noop)
	require.NoError(t, err)

	require.NoError(t, client.Unsubscribe(a))
	require.NoError(t, client.Unsubscribe(b))
	assert.ErrorIs(t, client.Unsubscribe(b), ErrNotSubscribed)

	require.Eventually(t, func() bool {
		return fake.hasCommand(api.PushTypeUnsubscribe, "user.1")
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"user.1"}, fake.subscribes(), "Second subscriber reuses the channel")
}

func TestWSClient_GivesUpAfterMaxAttempts(t *testing.T) {
	fake := &fakePushServer{rejectAuth: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := NewWSClient(WSConfig{
		URL:                  srv.URL,
		ReconnectBaseDelay:   time.Millisecond,
		ReconnectMaxDelay:    5 * time.Millisecond,
		MaxReconnectAttempts: 2,
	}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
	assert.Equal(t, StateDisconnected, client.State())

	fake.mu.Lock()
	assert.Equal(t, 3, fake.connections, "Initial attempt plus two reconnects")
	fake.mu.Unlock()
}

func TestReconnector_Backoff(t *testing.T) {
	r := &reconnector{baseDelay: 100 * time.Millisecond, maxDelay: time.Second, maxAttempts: 3}

	first := r.nextDelay()
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.Less(t, first, 200*time.Millisecond)

	second := r.nextDelay()
	assert.GreaterOrEqual(t, second, 200*time.Millisecond)

	third := r.nextDelay()
	assert.LessOrEqual(t, third, time.Second)
	assert.False(t, r.shouldReconnect())
}

// switchableIdentity меняет токен и оповещает наблюдателей, как файл сессии
type switchableIdentity struct {
	token    string
	watchers []func(string, bool)
	mu       sync.Mutex
}

func (s *switchableIdentity) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *switchableIdentity) Watch(fn func(viewerID string, ok bool)) func() {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
	return func() {}
}

func (s *switchableIdentity) set(token string) {
	s.mu.Lock()
	s.token = token
	watchers := append([]func(string, bool){}, s.watchers...)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(token, token != "")
	}
}

func (f *fakePushServer) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.authHeaders) == 0 {
		return ""
	}
	return f.authHeaders[len(f.authHeaders)-1]
}

func TestWSClient_RedialsOnIdentityChange(t *testing.T) {
	fake := &fakePushServer{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	ident := &switchableIdentity{token: "token-alice"}
	client, _ := startClient(t, srv, WSConfig{Tokens: ident, Identity: ident})
	require.Eventually(t, func() bool {
		return client.State() == StateConnected
	}, 2*time.Second, 5*time.Millisecond)

	_, err := client.Subscribe("user.alice", "refresh", func(json.RawMessage) {})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(fake.subscribes()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Bearer token-alice", fake.lastAuth())

	ident.set("token-bob")

	require.Eventually(t, func() bool {
		return fake.lastAuth() == "Bearer token-bob" && len(fake.subscribes()) == 2
	}, 2*time.Second, 5*time.Millisecond, "New handshake with the new bearer and resubscription")

	fake.mu.Lock()
	assert.Equal(t, 2, fake.connections)
	fake.mu.Unlock()
	assert.Equal(t, StateConnected, client.State())
}

func TestWSClient_ReconnectSkipsBackoff(t *testing.T) {
	fake := &fakePushServer{rejectAuth: true}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, _ := startClient(t, srv, WSConfig{
		Tokens:             staticToken("jwt-token"),
		ReconnectBaseDelay: time.Hour,
		ReconnectMaxDelay:  time.Hour,
	})

	require.Eventually(t, func() bool {
		return client.State() == StateReconnecting
	}, 2*time.Second, 5*time.Millisecond)

	fake.mu.Lock()
	fake.rejectAuth = false
	fake.mu.Unlock()

	client.Reconnect()

	require.Eventually(t, func() bool {
		return client.State() == StateConnected
	}, 2*time.Second, 5*time.Millisecond, "Reconnect must not wait for the backoff delay")
}
