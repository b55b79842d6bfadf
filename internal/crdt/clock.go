package crdt

import (
	"sync"
	"time"
)

// Clock выдает монотонно возрастающие timestamps в миллисекундах.
// Это гибрид физического времени и счетчика Лампорта: значение не меньше
// текущего wall clock и всегда строго больше предыдущего выданного,
// поэтому две локальные записи в одну миллисекунду не конфликтуют.
type Clock struct {
	now  func() time.Time
	last int64
	mu   sync.Mutex
}

// NewClock creates a clock backed by time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockWithSource creates a clock with a custom wall time source.
// Используется в тестах.
func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns max(wall ms, last+1) and remembers it.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	wall := c.now().UnixMilli()
	if wall <= c.last {
		wall = c.last + 1
	}
	c.last = wall
	return wall
}

// Observe advances the clock past a timestamp seen from another writer
// (server response, another process), so the next Now is strictly newer.
// Согласно алгоритму Лампорта: last = max(last, remote)
func (c *Clock) Observe(remote int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote > c.last {
		c.last = remote
	}
}

// Last returns the last issued or observed timestamp without advancing.
func (c *Clock) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}
