package crdt

// Versioned is anything carrying a last-write timestamp.
type Versioned interface {
	Stamp() int64
}

// Wins сообщает, должна ли входящая запись заменить существующую
// по правилу LWW (Last-Write-Wins). Равный timestamp НЕ побеждает:
// повторная или устаревшая запись никогда не перетирает сохраненную.
func Wins(incoming, existing int64) bool {
	return incoming > existing
}

// IsNewer is Wins over two versioned values. A nil existing always loses.
func IsNewer(incoming, existing Versioned) bool {
	if existing == nil {
		return true
	}
	return Wins(incoming.Stamp(), existing.Stamp())
}
