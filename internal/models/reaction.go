package models

import "fmt"

// ReactionKind тип эмоциональной реакции зрителя на контент.
// Набор закрыт: любое значение вне AllReactionKinds считается ошибкой.
type ReactionKind string

const (
	ReactionNone  ReactionKind = ""
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionLaugh ReactionKind = "laugh"
	ReactionWow   ReactionKind = "wow"
	ReactionSad   ReactionKind = "sad"
	ReactionAngry ReactionKind = "angry"
)

// AllReactionKinds lists every kind the client recognizes, in display order.
var AllReactionKinds = []ReactionKind{
	ReactionLike,
	ReactionLove,
	ReactionLaugh,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

// Valid reports whether k is one of the known kinds. ReactionNone is not a kind.
func (k ReactionKind) Valid() bool {
	for _, known := range AllReactionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseReactionKind принимает имя реакции или "none".
func ParseReactionKind(s string) (ReactionKind, error) {
	if s == "none" || s == "" {
		return ReactionNone, nil
	}
	k := ReactionKind(s)
	if !k.Valid() {
		return ReactionNone, fmt.Errorf("unknown reaction kind %q", s)
	}
	return k, nil
}

// ReactionEntry is the cached aggregate of reactions on one content item.
type ReactionEntry struct {
	Counts         map[ReactionKind]int `json:"counts"`          // Counts количество по каждому виду, все виды заполнены
	EntityID       string               `json:"entity_id"`       // EntityID идентификатор поста или комментария
	ViewerReaction ReactionKind         `json:"viewer_reaction"` // ViewerReaction реакция текущего зрителя или ReactionNone
	UpdatedAt      int64                `json:"updated_at"`      // UpdatedAt время последней записи, epoch ms
}

// Stamp returns the last-write timestamp used for LWW ordering.
func (e ReactionEntry) Stamp() int64 {
	return e.UpdatedAt
}

// Total sums counts over all kinds.
func (e ReactionEntry) Total() int {
	total := 0
	for _, n := range e.Counts {
		total += n
	}
	return total
}

// Clone создает глубокую копию записи
func (e ReactionEntry) Clone() ReactionEntry {
	counts := make(map[ReactionKind]int, len(e.Counts))
	for k, v := range e.Counts {
		counts[k] = v
	}
	e.Counts = counts
	return e
}

// CompleteCounts returns a copy of counts with a zero for every missing kind.
func CompleteCounts(counts map[ReactionKind]int) map[ReactionKind]int {
	out := make(map[ReactionKind]int, len(AllReactionKinds))
	for _, k := range AllReactionKinds {
		out[k] = counts[k]
	}
	return out
}
