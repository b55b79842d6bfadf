// Package push доставляет серверные события клиенту. События здесь только
// триггеры: полезная нагрузка не интерпретируется слоем синхронизации.
package push

import "encoding/json"

// Handler receives the payload of one event. Handlers are called on the
// delivering goroutine and must not block.
type Handler func(data json.RawMessage)

// Subscription identifies one registered handler.
type Subscription struct {
	ID      string
	Channel string
	Event   string
}

// Provider is a push channel the sync layer can subscribe to.
type Provider interface {
	Subscribe(channel, event string, handler Handler) (Subscription, error)
	Unsubscribe(sub Subscription) error
}

// UserChannel returns the per-viewer channel name
func UserChannel(viewerID string) string {
	return "user." + viewerID
}
