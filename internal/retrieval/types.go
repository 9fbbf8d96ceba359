package retrieval

import "github.com/policylens/backend/internal/storage/models"

// Intent is the classified purpose of a question.
type Intent string

const (
	IntentDefinition Intent = "definition"
	IntentExclusion  Intent = "exclusion"
	IntentCoverage   Intent = "coverage"
	IntentLimit      Intent = "limit"
	IntentTimePeriod Intent = "time_period"
	IntentClaims     Intent = "claims"
	IntentGeneral    Intent = "general"
)

// NumericSensitive reports whether answers for this intent usually hinge
// on numbers (periods, amounts), which makes numeric chunks more valuable.
func (i Intent) NumericSensitive() bool {
	return i == IntentTimePeriod || i == IntentLimit
}

// Query is the analyzed form of one incoming question. It is built once
// per question and read-only afterwards.
type Query struct {
	Text     string
	Keywords map[string]struct{}
	Phrases  []string
	Intent   Intent
}

// NewQuery extracts keywords and phrases from text and classifies intent.
func NewQuery(text string) Query {
	keywords, phrases := Extract(text)
	return Query{
		Text:     text,
		Keywords: keywords,
		Phrases:  phrases,
		Intent:   Classify(text, keywords, phrases),
	}
}

// Candidate pairs a chunk with the similarity score the vector index
// reported for it against a specific query embedding.
type Candidate struct {
	Chunk     models.Chunk
	BaseScore float64
}

// BoostFactor records one multiplier applied during scoring, in order.
type BoostFactor struct {
	Name   string
	Factor float64
}

// ScoredCandidate is a candidate after hybrid scoring. FinalScore is
// BaseScore times the product of the recorded boost factors.
type ScoredCandidate struct {
	Candidate
	FinalScore float64
	Boosts     []BoostFactor
}
