package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/iudanet/snapsync/internal/normalize"
	"github.com/iudanet/snapsync/pkg/api"
)

// Compile-time check that WSClient implements Provider
var _ Provider = (*WSClient)(nil)

// TokenSource supplies the bearer token for the handshake
type TokenSource interface {
	AccessToken() (string, bool)
}

// IdentityWatcher reports viewer changes. WSClient redials on every change
// so the connection is authenticated as the current viewer.
type IdentityWatcher interface {
	Watch(fn func(viewerID string, ok bool)) (cancel func())
}

// State is the connection state of a WSClient.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// WSConfig configures a WSClient.
type WSConfig struct {
	Tokens               TokenSource
	Identity             IdentityWatcher // может быть nil
	HTTPClient           *http.Client
	URL                  string
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	WriteTimeout         time.Duration
	MaxReconnectAttempts int // 0 = без ограничения
}

func (c *WSConfig) defaults() {
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = 1 * time.Second
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
}

// reconnector считает экспоненциальную задержку с джиттером
type reconnector struct {
	connectedAt time.Time
	baseDelay   time.Duration
	maxDelay    time.Duration
	maxAttempts int
	attempt     int
}

func (r *reconnector) shouldReconnect() bool {
	return r.maxAttempts == 0 || r.attempt < r.maxAttempts
}

func (r *reconnector) markConnected() {
	r.connectedAt = time.Now()
}

func (r *reconnector) nextDelay() time.Duration {
	// соединение прожило достаточно долго: начинаем отсчет заново
	if !r.connectedAt.IsZero() && time.Since(r.connectedAt) > 60*time.Second {
		r.attempt = 0
	}
	jitter := time.Duration(rand.Float64() * float64(r.baseDelay) * 0.5)
	delay := time.Duration(math.Min(
		float64(r.baseDelay)*math.Pow(2, float64(r.attempt))+float64(jitter),
		float64(r.maxDelay),
	))
	r.attempt++
	return delay
}

// WSClient is a Provider backed by a WebSocket connection. Run keeps the
// connection alive and re-sends subscriptions after every reconnect, so
// subscribing before the first connect is fine.
type WSClient struct {
	conn *websocket.Conn
	// dropConn обрывает чтение текущего соединения
	dropConn context.CancelFunc
	hub      *Hub
	logger   *slog.Logger
	recon    *reconnector
	redial   chan struct{}
	config   WSConfig
	state    State
	mu       sync.Mutex
	writeMu  sync.Mutex
}

// NewWSClient creates a disconnected client. Call Run to connect.
func NewWSClient(config WSConfig, logger *slog.Logger) *WSClient {
	config.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &WSClient{
		config: config,
		hub:    NewHub(),
		logger: logger,
		redial: make(chan struct{}, 1),
		state:  StateDisconnected,
		recon: &reconnector{
			baseDelay:   config.ReconnectBaseDelay,
			maxDelay:    config.ReconnectMaxDelay,
			maxAttempts: config.MaxReconnectAttempts,
		},
	}
}

// State returns the current connection state.
func (c *WSClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *WSClient) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Subscribe registers handler and, for the first subscriber of a channel,
// asks the server to start delivering it.
func (c *WSClient) Subscribe(channel, event string, handler Handler) (Subscription, error) {
	sub, first, err := c.hub.add(channel, event, handler)
	if err != nil {
		return Subscription{}, err
	}
	if first {
		// без соединения команда уйдет при следующем подключении
		if err := c.send(context.Background(), api.PushEnvelope{Type: api.PushTypeSubscribe, Channel: channel}); err != nil && !errors.Is(err, ErrNotConnected) {
			c.logger.Warn("Failed to send subscribe", "channel", channel, "error", err)
		}
	}
	return sub, nil
}

// Unsubscribe removes a subscription; the server is told once the channel has
// no subscribers left.
func (c *WSClient) Unsubscribe(sub Subscription) error {
	last, err := c.hub.remove(sub)
	if err != nil {
		return err
	}
	if last {
		if err := c.send(context.Background(), api.PushEnvelope{Type: api.PushTypeUnsubscribe, Channel: sub.Channel}); err != nil && !errors.Is(err, ErrNotConnected) {
			c.logger.Warn("Failed to send unsubscribe", "channel", sub.Channel, "error", err)
		}
	}
	return nil
}

// Run connects and serves the connection until ctx is cancelled or the
// reconnect attempts are exhausted.
func (c *WSClient) Run(ctx context.Context) error {
	defer c.setState(StateDisconnected)

	if c.config.Identity != nil {
		cancel := c.config.Identity.Watch(func(string, bool) { c.Reconnect() })
		defer cancel()
	}

	for {
		c.setState(StateConnecting)
		conn, err := c.connect(ctx)
		if err == nil {
			c.recon.markConnected()
			connCtx, dropConn := context.WithCancel(ctx)
			c.attach(conn, dropConn)

			// зритель сменился, пока шел dial: соединение со старым токеном
			if c.takeRedial() {
				dropConn()
				c.detach(conn)
				continue
			}

			c.resubscribe(ctx)
			err = c.readLoop(connCtx, conn)
			dropConn()
			c.detach(conn)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.takeRedial() {
			c.logger.Info("Push channel reconnecting for new identity")
			continue
		}
		if !c.recon.shouldReconnect() {
			return fmt.Errorf("push channel gave up after %d attempts: %w", c.recon.attempt, err)
		}

		delay := c.recon.nextDelay()
		c.setState(StateReconnecting)
		c.logger.Warn("Push channel disconnected, reconnecting",
			"attempt", c.recon.attempt,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-c.redial:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Reconnect drops the current connection, or cuts a pending reconnect delay
// short, so the next handshake uses a fresh token.
func (c *WSClient) Reconnect() {
	select {
	case c.redial <- struct{}{}:
	default:
	}

	c.mu.Lock()
	drop := c.dropConn
	c.mu.Unlock()
	if drop != nil {
		drop()
	}
}

func (c *WSClient) takeRedial() bool {
	select {
	case <-c.redial:
		return true
	default:
		return false
	}
}

func (c *WSClient) connect(ctx context.Context) (*websocket.Conn, error) {
	wsURL := strings.Replace(c.config.URL, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)

	opts := &websocket.DialOptions{
		HTTPClient: c.config.HTTPClient,
		HTTPHeader: http.Header{},
	}
	if c.config.Tokens != nil {
		if token, ok := c.config.Tokens.AccessToken(); ok {
			opts.HTTPHeader.Set("Authorization", "Bearer "+token)
		}
	}

	conn, _, err := websocket.Dial(ctx, wsURL, opts)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	// первое сообщение сервера подтверждает аутентификацию
	env, err := readEnvelope(ctx, conn)
	if err != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		return nil, fmt.Errorf("read auth message: %w", err)
	}
	if env.Type != api.PushTypeAuthenticated {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		if env.Type == api.PushTypeError {
			return nil, fmt.Errorf("push handshake rejected: %s", env.Message)
		}
		return nil, fmt.Errorf("expected %q, got %q", api.PushTypeAuthenticated, env.Type)
	}

	c.logger.Info("Push channel connected", "url", wsURL)
	return conn, nil
}

func (c *WSClient) attach(conn *websocket.Conn, dropConn context.CancelFunc) {
	c.mu.Lock()
	c.conn = conn
	c.dropConn = dropConn
	c.state = StateConnected
	c.mu.Unlock()
}

func (c *WSClient) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.dropConn = nil
	}
	c.mu.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "client disconnect")
}

func (c *WSClient) resubscribe(ctx context.Context) {
	for _, channel := range c.hub.Channels() {
		if err := c.send(ctx, api.PushEnvelope{Type: api.PushTypeSubscribe, Channel: channel}); err != nil {
			c.logger.Warn("Failed to resubscribe", "channel", channel, "error", err)
		}
	}
}

func (c *WSClient) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var env api.PushEnvelope
		if err := normalize.Unmarshal(data, &env); err != nil {
			c.logger.Debug("Ignoring malformed push frame", "error", err)
			continue
		}

		switch env.Type {
		case api.PushTypeEvent:
			n := c.hub.Publish(env.Channel, env.Event, env.Data)
			c.logger.Debug("Push event", "channel", env.Channel, "event", env.Event, "handlers", n)
		case api.PushTypeError:
			c.logger.Warn("Push channel error", "message", env.Message)
		}
	}
}

func (c *WSClient) send(ctx context.Context, env api.PushEnvelope) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal push command: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.config.WriteTimeout)
	defer cancel()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

// readEnvelope reads one frame; keys are normalized like every other server JSON.
func readEnvelope(ctx context.Context, conn *websocket.Conn) (api.PushEnvelope, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return api.PushEnvelope{}, err
	}

	var env api.PushEnvelope
	if err := normalize.Unmarshal(data, &env); err != nil {
		return api.PushEnvelope{}, err
	}
	return env, nil
}
