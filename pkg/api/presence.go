package api

// HeartbeatRequest сигнал "зритель активен"
type HeartbeatRequest struct {
	ClientID string `json:"clientId"` // ClientID идентификатор процесса клиента (UUID)
	SentAt   int64  `json:"sentAt"`   // SentAt epoch ms
}
