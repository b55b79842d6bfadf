package push

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Compile-time check that Hub implements Provider
var _ Provider = (*Hub)(nil)

type subscriber struct {
	handler Handler
	event   string
}

// Hub is an in-process Provider. Publish delivers an event to every handler
// subscribed to the channel and event. WSClient uses a Hub for dispatch.
type Hub struct {
	// channel -> subscription id -> subscriber
	subs map[string]map[string]subscriber
	mu   sync.RWMutex
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[string]subscriber),
	}
}

// Subscribe registers handler for event on channel.
func (h *Hub) Subscribe(channel, event string, handler Handler) (Subscription, error) {
	sub, _, err := h.add(channel, event, handler)
	return sub, err
}

// Unsubscribe removes a subscription. Unknown subscriptions yield ErrNotSubscribed.
func (h *Hub) Unsubscribe(sub Subscription) error {
	_, err := h.remove(sub)
	return err
}

// add registers a subscriber and reports whether it is the first one on the channel.
func (h *Hub) add(channel, event string, handler Handler) (Subscription, bool, error) {
	if channel == "" || event == "" || handler == nil {
		return Subscription{}, false, fmt.Errorf("%w: channel=%q event=%q", ErrInvalidSubscription, channel, event)
	}

	sub := Subscription{
		ID:      uuid.New().String(),
		Channel: channel,
		Event:   event,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	byID, ok := h.subs[channel]
	if !ok {
		byID = make(map[string]subscriber)
		h.subs[channel] = byID
	}
	byID[sub.ID] = subscriber{event: event, handler: handler}

	return sub, !ok, nil
}

// remove drops a subscriber and reports whether the channel has no subscribers left.
func (h *Hub) remove(sub Subscription) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byID, ok := h.subs[sub.Channel]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotSubscribed, sub.ID)
	}
	if _, ok := byID[sub.ID]; !ok {
		return false, fmt.Errorf("%w: %s", ErrNotSubscribed, sub.ID)
	}

	delete(byID, sub.ID)
	if len(byID) == 0 {
		delete(h.subs, sub.Channel)
		return true, nil
	}
	return false, nil
}

// Publish delivers data to the handlers of event on channel and returns how
// many handlers were called.
func (h *Hub) Publish(channel, event string, data json.RawMessage) int {
	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.subs[channel]))
	for _, s := range h.subs[channel] {
		if s.event == event {
			handlers = append(handlers, s.handler)
		}
	}
	h.mu.RUnlock()

	// вызываем без блокировки: обработчик может сам отписаться
	for _, handler := range handlers {
		handler(data)
	}
	return len(handlers)
}

// Channels returns the channels that have at least one subscriber, sorted.
func (h *Hub) Channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	channels := make([]string, 0, len(h.subs))
	for channel := range h.subs {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	return channels
}
