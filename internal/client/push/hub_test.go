package push

import (
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "user.42", UserChannel("42"))
}

func TestHub_PublishDeliversMatchingEvent(t *testing.T) {
	hub := NewHub()

	var refreshes, others atomic.Int32
	_, err := hub.Subscribe("user.1", "refresh", func(json.RawMessage) { refreshes.Add(1) })
	require.NoError(t, err)
	_, err = hub.Subscribe("user.1", "typing", func(json.RawMessage) { others.Add(1) })
	require.NoError(t, err)
	_, err = hub.Subscribe("user.2", "refresh", func(json.RawMessage) { others.Add(1) })
	require.NoError(t, err)

	n := hub.Publish("user.1", "refresh", json.RawMessage(`{"ignored":true}`))

	assert.Equal(t, 1, n)
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, int32(0), others.Load())
}

func TestHub_PassesPayloadThrough(t *testing.T) {
	hub := NewHub()

	var got json.RawMessage
	_, err := hub.Subscribe("user.1", "refresh", func(data json.RawMessage) { got = data })
	require.NoError(t, err)

	hub.Publish("user.1", "refresh", json.RawMessage(`{"x":1}`))
	assert.JSONEq(t, `{"x":1}`, string(got))
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()

	var calls atomic.Int32
	sub, err := hub.Subscribe("user.1", "refresh", func(json.RawMessage) { calls.Add(1) })
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, []string{"user.1"}, hub.Channels())

	require.NoError(t, hub.Unsubscribe(sub))
	assert.Empty(t, hub.Channels())

	assert.Equal(t, 0, hub.Publish("user.1", "refresh", nil))
	assert.Equal(t, int32(0), calls.Load())

	// повторная отписка
	assert.ErrorIs(t, hub.Unsubscribe(sub), ErrNotSubscribed)
	assert.ErrorIs(t, hub.Unsubscribe(Subscription{ID: "nope", Channel: "user.9"}), ErrNotSubscribed)
}

func TestHub_FirstAndLastSubscriber(t *testing.T) {
	hub := NewHub()
	noop := func(json.RawMessage) {}

	a, first, err := hub.add("user.1", "refresh", noop)
	require.NoError(t, err)
	assert.True(t, first)

	b, first, err := hub.add("user.1", "refresh", noop)
	require.NoError(t, err)
	assert.False(t, first)

	last, err := hub.remove(a)
	require.NoError(t, err)
	assert.False(t, last)

	last, err = hub.remove(b)
	require.NoError(t, err)
	assert.True(t, last)
}

func TestHub_InvalidSubscription(t *testing.T) {
	hub := NewHub()
	noop := func(json.RawMessage) {}

	tests := []struct {
		handler Handler
		name    string
		channel string
		event   string
	}{
		{name: "empty channel", event: "refresh", handler: noop},
		{name: "empty event", channel: "user.1", handler: noop},
		{name: "nil handler", channel: "user.1", event: "refresh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hub.Subscribe(tt.channel, tt.event, tt.handler)
			assert.ErrorIs(t, err, ErrInvalidSubscription)
		})
	}
	assert.Empty(t, hub.Channels())
}

func TestHub_HandlerMayUnsubscribeItself(t *testing.T) {
	hub := NewHub()

	var sub Subscription
	var err error
	sub, err = hub.Subscribe("user.1", "refresh", func(json.RawMessage) {
		_ = hub.Unsubscribe(sub)
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		hub.Publish("user.1", "refresh", nil)
	})
	assert.Empty(t, hub.Channels())
}
