package retrieval

import (
	"regexp"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// Stop words are dropped before keyword matching. Short tokens are
// filtered separately, so this list only needs entries longer than
// three characters.
var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "been": {}, "being": {},
	"between": {}, "both": {}, "could": {}, "does": {}, "during": {},
	"each": {}, "from": {}, "have": {}, "having": {}, "into": {},
	"many": {}, "much": {}, "over": {}, "please": {}, "shall": {},
	"should": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "those": {}, "under": {}, "until": {},
	"upon": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "will": {}, "with": {}, "would": {}, "your": {},
}

// Insurance collocations worth exact-matching even when the question
// does not quote them. Mirrors the term list policy analysts actually
// search for.
var domainPhrases = []string{
	"grace period",
	"waiting period",
	"cooling period",
	"pre-existing disease",
	"pre existing disease",
	"sum insured",
	"room rent",
	"no claim bonus",
	"cumulative bonus",
	"maternity expenses",
	"policy period",
	"co-payment",
	"day care",
}

var (
	quotedRe     = regexp.MustCompile(`["']([^"']{3,80})["']`)
	numericRe    = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:%|percent|days?|months?|years?|hours?|lakhs?)\b`)
	titleCaseRe  = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)+\b`)
	punctTrimSet = "\"'.,;:!?()[]{}"
)

// Extract derives the normalized keyword set and the ordered phrase list
// from raw question text. Empty or blank input yields empty containers,
// never an error.
func Extract(text string) (map[string]struct{}, []string) {
	keywords := make(map[string]struct{})
	if strings.TrimSpace(text) == "" {
		return keywords, nil
	}

	for _, tok := range tokenize(text) {
		word := strings.ToLower(strings.Trim(tok, punctTrimSet))
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords[word] = struct{}{}
	}

	return keywords, extractPhrases(text)
}

// tokenize prefers prose tokenization and falls back to whitespace
// splitting when the tagger rejects the input.
func tokenize(text string) []string {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return strings.Fields(text)
	}

	tokens := doc.Tokens()
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, tok.Text)
	}
	return words
}

type phraseSpan struct {
	offset int
	text   string
}

// extractPhrases collects quoted spans, numeric expressions, capitalized
// multi-word terms, and known insurance collocations, ordered by where
// they appear in the question, normalized and deduplicated.
func extractPhrases(text string) []string {
	var spans []phraseSpan

	for _, m := range quotedRe.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, phraseSpan{m[2], text[m[2]:m[3]]})
	}
	for _, m := range numericRe.FindAllStringIndex(text, -1) {
		spans = append(spans, phraseSpan{m[0], text[m[0]:m[1]]})
	}
	for _, m := range titleCaseRe.FindAllStringIndex(text, -1) {
		spans = append(spans, phraseSpan{m[0], text[m[0]:m[1]]})
	}

	lower := strings.ToLower(text)
	for _, phrase := range domainPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			spans = append(spans, phraseSpan{idx, phrase})
		}
	}

	// Insertion sort keeps equal offsets in discovery order.
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].offset < spans[j-1].offset; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}

	seen := make(map[string]struct{}, len(spans))
	var phrases []string
	for _, span := range spans {
		phrase := normalizePhrase(span.text)
		if phrase == "" || len(strings.Fields(phrase)) < 2 {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		phrases = append(phrases, phrase)
	}

	return phrases
}

func normalizePhrase(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.Trim(s, punctTrimSet))), " ")
}
