package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionKind_Valid(t *testing.T) {
	for _, k := range AllReactionKinds {
		assert.True(t, k.Valid(), "kind %q should be valid", k)
	}
	assert.False(t, ReactionNone.Valid())
	assert.False(t, ReactionKind("dislike").Valid())
}

func TestParseReactionKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ReactionKind
		wantErr bool
	}{
		{in: "like", want: ReactionLike},
		{in: "angry", want: ReactionAngry},
		{in: "none", want: ReactionNone},
		{in: "", want: ReactionNone},
		{in: "Like", wantErr: true},
		{in: "meh", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReactionKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompleteCounts(t *testing.T) {
	counts := CompleteCounts(map[ReactionKind]int{ReactionLove: 2})

	assert.Len(t, counts, len(AllReactionKinds))
	assert.Equal(t, 2, counts[ReactionLove])
	assert.Equal(t, 0, counts[ReactionLike])
}

func TestReactionEntry_CloneIsDeep(t *testing.T) {
	entry := ReactionEntry{
		EntityID:  "post-1",
		Counts:    CompleteCounts(map[ReactionKind]int{ReactionLike: 1}),
		UpdatedAt: 10,
	}

	clone := entry.Clone()
	clone.Counts[ReactionLike] = 99

	assert.Equal(t, 1, entry.Counts[ReactionLike])
	assert.Equal(t, int64(10), clone.Stamp())
	assert.Equal(t, 1, entry.Total())
}
