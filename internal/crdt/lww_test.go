package crdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stamped int64

func (s stamped) Stamp() int64 { return int64(s) }

func TestWins(t *testing.T) {
	tests := []struct {
		name     string
		incoming int64
		existing int64
		want     bool
	}{
		{name: "newer wins", incoming: 100, existing: 50, want: true},
		{name: "older loses", incoming: 50, existing: 100, want: false},
		{name: "equal loses", incoming: 100, existing: 100, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wins(tt.incoming, tt.existing))
		})
	}
}

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer(stamped(1), nil), "Anything beats a missing entry")
	assert.True(t, IsNewer(stamped(2), stamped(1)))
	assert.False(t, IsNewer(stamped(1), stamped(1)))
	assert.False(t, IsNewer(stamped(1), stamped(2)))
}
