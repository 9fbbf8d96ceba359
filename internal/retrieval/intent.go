package retrieval

import "strings"

// intentRule pairs a predicate with the intent it selects. Rules are
// evaluated in order and the first match wins, so the slice encodes the
// classifier's priority contract explicitly.
type intentRule struct {
	intent Intent
	match  func(text string, words map[string]struct{}) bool
}

var intentRules = []intentRule{
	{IntentDefinition, func(text string, words map[string]struct{}) bool {
		return containsAny(text, "define", "definition", "meaning") || hasWord(words, "means", "mean")
	}},
	{IntentExclusion, func(text string, words map[string]struct{}) bool {
		return containsAny(text, "exclu", "not covered", "except")
	}},
	{IntentCoverage, func(text string, words map[string]struct{}) bool {
		return containsAny(text, "cover", "benefit", "eligib", "include")
	}},
	{IntentLimit, func(text string, words map[string]struct{}) bool {
		return containsAny(text, "maximum", "limit", "up to") || hasWord(words, "cap", "capped")
	}},
	{IntentTimePeriod, func(text string, words map[string]struct{}) bool {
		return containsAny(text, "period", "waiting", "grace") ||
			hasWord(words, "day", "days", "month", "months", "year", "years")
	}},
	{IntentClaims, func(text string, words map[string]struct{}) bool {
		return containsAny(text, "claim", "procedure", "process") || hasWord(words, "file", "filing", "submit")
	}},
}

// Classify maps a question to exactly one intent. Classification is
// total: anything the rules do not match falls back to IntentGeneral.
func Classify(raw string, keywords map[string]struct{}, phrases []string) Intent {
	text := strings.ToLower(raw)

	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	}) {
		words[w] = struct{}{}
	}
	for kw := range keywords {
		words[kw] = struct{}{}
	}
	for _, phrase := range phrases {
		for _, w := range strings.Fields(phrase) {
			words[w] = struct{}{}
		}
	}

	for _, rule := range intentRules {
		if rule.match(text, words) {
			return rule.intent
		}
	}
	return IntentGeneral
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func hasWord(words map[string]struct{}, candidates ...string) bool {
	for _, c := range candidates {
		if _, ok := words[c]; ok {
			return true
		}
	}
	return false
}
