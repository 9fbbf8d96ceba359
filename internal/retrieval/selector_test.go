package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policylens/backend/internal/storage/models"
)

func scored(id string, base, final float64) ScoredCandidate {
	return ScoredCandidate{
		Candidate: Candidate{
			Chunk:     models.Chunk{ID: id, Text: "text"},
			BaseScore: base,
		},
		FinalScore: final,
	}
}

func ids(candidates []ScoredCandidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Chunk.ID
	}
	return out
}

func TestSelectOrdering(t *testing.T) {
	input := []ScoredCandidate{
		scored("low", 0.3, 0.5),
		scored("high", 0.4, 1.9),
		scored("mid", 0.5, 1.1),
	}

	got := Select(input, 5, 0)
	assert.Equal(t, []string{"high", "mid", "low"}, ids(got))
}

func TestSelectTieBreaks(t *testing.T) {
	t.Run("equal final score falls back to base score", func(t *testing.T) {
		input := []ScoredCandidate{
			scored("weaker", 0.4, 1.0),
			scored("stronger", 0.6, 1.0),
		}
		got := Select(input, 5, 0)
		assert.Equal(t, []string{"stronger", "weaker"}, ids(got))
	})

	t.Run("full tie orders by id ascending", func(t *testing.T) {
		input := []ScoredCandidate{
			scored("b", 0.5, 1.0),
			scored("c", 0.5, 1.0),
			scored("a", 0.5, 1.0),
		}
		got := Select(input, 5, 0)
		assert.Equal(t, []string{"a", "b", "c"}, ids(got))
	})
}

func TestSelectThreshold(t *testing.T) {
	input := []ScoredCandidate{
		scored("keep", 0.5, 0.9),
		scored("drop", 0.5, 0.19),
		scored("edge", 0.5, 0.2),
	}

	got := Select(input, 5, 0.2)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"keep", "edge"}, ids(got))
}

func TestSelectTopN(t *testing.T) {
	input := []ScoredCandidate{
		scored("a", 0.5, 0.9),
		scored("b", 0.5, 0.8),
		scored("c", 0.5, 0.7),
		scored("d", 0.5, 0.6),
	}

	got := Select(input, 2, 0)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestSelectEmptyResult(t *testing.T) {
	t.Run("nothing above threshold", func(t *testing.T) {
		input := []ScoredCandidate{
			scored("a", 0.1, 0.1),
		}
		got := Select(input, 3, 0.2)
		assert.Empty(t, got)
	})

	t.Run("empty input", func(t *testing.T) {
		got := Select(nil, 3, 0.2)
		assert.Empty(t, got)
	})
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	input := []ScoredCandidate{
		scored("b", 0.5, 0.5),
		scored("a", 0.5, 0.9),
	}

	Select(input, 5, 0)
	assert.Equal(t, "b", input[0].Chunk.ID)
	assert.Equal(t, "a", input[1].Chunk.ID)
}
