package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	keywords, _ := Extract("What is the waiting period for pre-existing diseases?")

	assert.Contains(t, keywords, "waiting")
	assert.Contains(t, keywords, "period")
	assert.Contains(t, keywords, "diseases")
	assert.NotContains(t, keywords, "what", "question words are stop words")
	assert.NotContains(t, keywords, "the", "short tokens are dropped")
	assert.NotContains(t, keywords, "for")
}

func TestExtractEmptyInput(t *testing.T) {
	t.Run("empty string", func(t *testing.T) {
		keywords, phrases := Extract("")
		assert.Empty(t, keywords)
		assert.Empty(t, phrases)
	})

	t.Run("whitespace only", func(t *testing.T) {
		keywords, phrases := Extract("   \t\n ")
		assert.Empty(t, keywords)
		assert.Empty(t, phrases)
	})

	t.Run("punctuation only", func(t *testing.T) {
		keywords, phrases := Extract("??? ... !!!")
		assert.Empty(t, keywords)
		assert.Empty(t, phrases)
	})
}

func TestExtractPhrases(t *testing.T) {
	t.Run("domain collocations", func(t *testing.T) {
		_, phrases := Extract("How long is the grace period for premium payment?")
		assert.Contains(t, phrases, "grace period")
	})

	t.Run("quoted span", func(t *testing.T) {
		_, phrases := Extract(`What does "room rent limit" mean in this policy?`)
		assert.Contains(t, phrases, "room rent limit")
	})

	t.Run("numeric expression", func(t *testing.T) {
		_, phrases := Extract("Is the 36 months waiting period reduced for renewals?")
		assert.Contains(t, phrases, "36 months")
		assert.Contains(t, phrases, "waiting period")
	})

	t.Run("capitalized multi-word term", func(t *testing.T) {
		_, phrases := Extract("Does the policy define Hospital Cash Benefit anywhere?")
		assert.Contains(t, phrases, "hospital cash benefit")
	})

	t.Run("order preserved and deduplicated", func(t *testing.T) {
		_, phrases := Extract("Is the waiting period shorter than the grace period? The waiting period matters.")
		require.NotEmpty(t, phrases)
		assert.Equal(t, "waiting period", phrases[0])
		counts := map[string]int{}
		for _, p := range phrases {
			counts[p]++
		}
		assert.Equal(t, 1, counts["waiting period"])
	})

	t.Run("single-word spans rejected", func(t *testing.T) {
		_, phrases := Extract(`The term "deductible" is unclear.`)
		assert.NotContains(t, phrases, "deductible")
	})
}

func TestExtractDeterministic(t *testing.T) {
	const question = "What is the maximum room rent limit for a Single Private Room?"

	k1, p1 := Extract(question)
	k2, p2 := Extract(question)

	assert.Equal(t, k1, k2)
	assert.Equal(t, p1, p2)
}
