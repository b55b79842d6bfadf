package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_WithLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hc := &http.Client{}
	client := NewClient(server.URL, WithHTTPClient(hc), WithLogger(logger))

	assert.NotSame(t, hc, client.httpClient, "Caller's client must not be modified")
	assert.Nil(t, hc.Transport)

	require.NoError(t, client.Get(context.Background(), "/ok?token=secret", nil))
	err := client.Get(context.Background(), "/missing", nil)
	require.Error(t, err)

	out := logs.String()
	assert.Contains(t, out, "level=DEBUG msg=\"HTTP request\" method=GET path=/ok status=204")
	assert.Contains(t, out, "level=WARN msg=\"HTTP request\" method=GET path=/missing status=404")
	assert.NotContains(t, out, "secret")
}

func TestClient_WithLoggerNetworkError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	client := NewClient("http://127.0.0.1:1", WithLogger(logger))

	err := client.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.Contains(t, logs.String(), "HTTP request failed")
}

func TestSanitizePath(t *testing.T) {
	u, err := url.Parse("https://api.example.com/api/v1/posts/p%2F1/reactions?token=abc")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/posts/p%2F1/reactions", sanitizePath(u))
	assert.Equal(t, "", sanitizePath(nil))
}
