package api

import "encoding/json"

// Типы сообщений push-канала
const (
	PushTypeAuthenticated = "authenticated"
	PushTypeEvent         = "event"
	PushTypeSubscribe     = "subscribe"
	PushTypeUnsubscribe   = "unsubscribe"
	PushTypeError         = "error"
)

// PushEnvelope is the wire format of every push-channel frame in both
// directions. Data is never interpreted by the sync layer.
type PushEnvelope struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel,omitempty"`
	Event   string          `json:"event,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}
