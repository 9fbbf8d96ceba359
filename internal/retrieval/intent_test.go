package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func classifyText(text string) Intent {
	keywords, phrases := Extract(text)
	return Classify(text, keywords, phrases)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Intent
	}{
		{"definition by keyword", "What is the definition of Accident?", IntentDefinition},
		{"definition by meaning", "Explain the meaning of deductible", IntentDefinition},
		{"definition by mean", "What does Hospital mean in this policy?", IntentDefinition},
		{"exclusion", "What is excluded from this policy?", IntentExclusion},
		{"exclusion by not covered", "Is cosmetic surgery not covered?", IntentExclusion},
		{"coverage", "Does this policy cover maternity expenses?", IntentCoverage},
		{"coverage by benefit", "What benefits are available for day care treatment?", IntentCoverage},
		{"limit", "What is the maximum room rent payable?", IntentLimit},
		{"limit by up to", "Reimbursement is available up to what amount?", IntentLimit},
		{"time period", "What is the waiting period for pre-existing diseases?", IntentTimePeriod},
		{"time period by grace", "How long is the grace window after a missed premium?", IntentTimePeriod},
		{"claims", "What is the procedure to submit hospitalization bills?", IntentClaims},
		{"general fallback", "Tell me something about this document", IntentGeneral},
		{"empty text", "", IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyText(tt.question))
		})
	}
}

// Earlier rules win when several patterns match.
func TestClassifyPriority(t *testing.T) {
	t.Run("definition beats coverage", func(t *testing.T) {
		got := classifyText("What is the definition of covered expenses?")
		assert.Equal(t, IntentDefinition, got)
	})

	t.Run("exclusion beats coverage", func(t *testing.T) {
		got := classifyText("Which benefits are excluded from coverage?")
		assert.Equal(t, IntentExclusion, got)
	})

	t.Run("limit beats time period", func(t *testing.T) {
		got := classifyText("What is the maximum number of days of hospitalization allowed?")
		assert.Equal(t, IntentLimit, got)
	})
}

// Classification must be total: every input maps to exactly one member
// of the fixed enumeration.
func TestClassifyTotality(t *testing.T) {
	known := map[Intent]bool{
		IntentDefinition: true,
		IntentExclusion:  true,
		IntentCoverage:   true,
		IntentLimit:      true,
		IntentTimePeriod: true,
		IntentClaims:     true,
		IntentGeneral:    true,
	}

	inputs := []string{
		"", "?", "asdf qwerty", "12345", "claim claim claim",
		"What is the grace period for premium payment under this policy?",
		"ALL CAPS SHOUTING ABOUT NOTHING IN PARTICULAR",
		"ünïcödé quëstion with àccents",
	}

	for _, in := range inputs {
		got := classifyText(in)
		assert.True(t, known[got], "input %q produced unknown intent %q", in, got)
	}
}

func TestIntentNumericSensitive(t *testing.T) {
	assert.True(t, IntentTimePeriod.NumericSensitive())
	assert.True(t, IntentLimit.NumericSensitive())
	assert.False(t, IntentDefinition.NumericSensitive())
	assert.False(t, IntentGeneral.NumericSensitive())
}
