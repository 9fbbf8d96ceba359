package retrieval

import "strings"

// A boostFunc inspects one (query, candidate) pair and returns a
// multiplier. Implementations are pure and must return 1.0 when their
// signal is absent; the engine never penalizes below the base score.
type boostFunc func(cfg Config, q Query, c Candidate, chunkLower string) float64

type boost struct {
	name string
	fn   boostFunc
}

// defaultBoosts is the fixed application order. Factors are independent
// and commutative, so the order only matters for the recorded
// explainability trail.
func defaultBoosts() []boost {
	return []boost{
		{"metadata", metadataBoost},
		{"intent_alignment", intentAlignmentBoost},
		{"keyword_density", keywordDensityBoost},
		{"phrase_match", phraseMatchBoost},
		{"content_quality", contentQualityBoost},
	}
}

func metadataBoost(cfg Config, q Query, c Candidate, chunkLower string) float64 {
	if factor, ok := cfg.MetadataFactors[c.Chunk.Metadata.SectionType]; ok {
		return factor
	}
	return 1.0
}

var (
	coverageVocab  = []string{"covered", "coverage", "benefit", "include", "pay", "reimburse"}
	exclusionVocab = []string{"excluded", "exclusion", "not covered", "exception", "does not"}
	limitVocab     = []string{"limit", "amount", "maximum", "minimum", "sum", "usd", "inr", "$", "%"}
	periodVocab    = []string{"day", "month", "year", "hour"}
)

func intentAlignmentBoost(cfg Config, q Query, c Candidate, chunkLower string) float64 {
	switch q.Intent {
	case IntentDefinition:
		if strings.Contains(chunkLower, "means") || strings.Contains(chunkLower, "defined as") ||
			strings.Contains(chunkLower, "definition") {
			return cfg.DefinitionFactor
		}
	case IntentCoverage:
		if containsAny(chunkLower, coverageVocab...) {
			return cfg.CoverageFactor
		}
	case IntentExclusion:
		if containsAny(chunkLower, exclusionVocab...) {
			return cfg.ExclusionFactor
		}
	case IntentTimePeriod:
		if containsDigit(chunkLower) && containsAny(chunkLower, periodVocab...) {
			return cfg.TimePeriodFactor
		}
	case IntentLimit:
		if containsAny(chunkLower, limitVocab...) {
			return cfg.LimitFactor
		}
	}
	return 1.0
}

func keywordDensityBoost(cfg Config, q Query, c Candidate, chunkLower string) float64 {
	if len(q.Keywords) == 0 {
		return 1.0
	}

	matches := 0
	for kw := range q.Keywords {
		if strings.Contains(chunkLower, kw) {
			matches++
		}
	}

	density := float64(matches) / float64(len(q.Keywords))
	switch {
	case density >= cfg.DensityHighThreshold:
		return cfg.DensityHighFactor
	case density >= cfg.DensityMidThreshold:
		return cfg.DensityMidFactor
	}
	return 1.0
}

// phraseMatchBoost is binary: several matching phrases still count once.
func phraseMatchBoost(cfg Config, q Query, c Candidate, chunkLower string) float64 {
	normalized := strings.Join(strings.Fields(chunkLower), " ")
	for _, phrase := range q.Phrases {
		if strings.Contains(normalized, phrase) {
			return cfg.PhraseFactor
		}
	}
	return 1.0
}

func contentQualityBoost(cfg Config, q Query, c Candidate, chunkLower string) float64 {
	if c.Chunk.Metadata.HasNumbers && q.Intent.NumericSensitive() {
		return cfg.NumericFactor
	}
	return 1.0
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
