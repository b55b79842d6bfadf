package api

// ReactionSummary агрегат реакций на пост, как его отдает сервер
type ReactionSummary struct {
	Counts         map[string]int `json:"counts"`
	EntityID       string         `json:"entityId"`
	ViewerReaction *string        `json:"viewerReaction"` // nil означает "нет реакции"
	UpdatedAt      int64          `json:"updatedAt"`
}

// ReactionRequest sets the viewer's reaction.
type ReactionRequest struct {
	Kind string `json:"kind"`
}
