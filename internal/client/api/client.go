package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/snapsync/internal/normalize"
	"github.com/iudanet/snapsync/pkg/api"
)

// TokenSource отдает access token текущего зрителя.
// ok=false означает, что зритель не аутентифицирован.
type TokenSource interface {
	AccessToken() (token string, ok bool)
}

// Client представляет HTTP клиент для взаимодействия с REST API
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	timeout    *time.Duration
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. A client passed with
// WithHTTPClient is copied, never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = &timeout }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger logs every request at debug level, failures at warn or error.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	// применяем после опций к копии: порядок опций не важен,
	// а переданный через WithHTTPClient клиент остается нетронутым
	if c.timeout != nil || c.logger != nil {
		configured := *c.httpClient
		if c.timeout != nil {
			configured.Timeout = *c.timeout
		}
		if c.logger != nil {
			configured.Transport = newLoggingTransport(configured.Transport, c.logger)
		}
		c.httpClient = &configured
	}
	return c
}

// Get performs GET path and decodes the normalized response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

// Post performs POST path with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

// Put performs PUT path with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPut, path, body, out)
}

// Delete performs DELETE path.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, out)
}

// ListConversations получает страницу сводок бесед зрителя
func (c *Client) ListConversations(ctx context.Context, page, limit int) (*api.ConversationPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var resp api.ConversationPage
	if err := c.Get(ctx, "/api/v1/conversations?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("list conversations request failed: %w", err)
	}
	return &resp, nil
}

// SendHeartbeat отмечает зрителя как активного
func (c *Client) SendHeartbeat(ctx context.Context, req api.HeartbeatRequest) error {
	if err := c.Post(ctx, "/api/v1/presence/heartbeat", req, nil); err != nil {
		return fmt.Errorf("heartbeat request failed: %w", err)
	}
	return nil
}

// GetReactions получает агрегат реакций на пост
func (c *Client) GetReactions(ctx context.Context, entityID string) (*api.ReactionSummary, error) {
	var resp api.ReactionSummary
	if err := c.Get(ctx, reactionsPath(entityID), &resp); err != nil {
		return nil, fmt.Errorf("get reactions request failed: %w", err)
	}
	return &resp, nil
}

// SetReaction ставит или меняет реакцию зрителя
func (c *Client) SetReaction(ctx context.Context, entityID, kind string) (*api.ReactionSummary, error) {
	var resp api.ReactionSummary
	if err := c.Put(ctx, reactionsPath(entityID), api.ReactionRequest{Kind: kind}, &resp); err != nil {
		return nil, fmt.Errorf("set reaction request failed: %w", err)
	}
	return &resp, nil
}

// ClearReaction снимает реакцию зрителя
func (c *Client) ClearReaction(ctx context.Context, entityID string) (*api.ReactionSummary, error) {
	var resp api.ReactionSummary
	if err := c.Delete(ctx, reactionsPath(entityID), &resp); err != nil {
		return nil, fmt.Errorf("clear reaction request failed: %w", err)
	}
	return &resp, nil
}

func reactionsPath(entityID string) string {
	return "/api/v1/posts/" + url.PathEscape(entityID) + "/reactions"
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := normalize.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Message
			if apiErr.Message == "" {
				apiErr.Message = errResp.Error
			}
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	// Декодируем успешный ответ, бэкенд отдает PascalCase ключи
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := normalize.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
