package retrieval

import "sort"

// Select orders scored candidates for answer synthesis: descending by
// final score, ties broken by base score descending, then chunk id
// ascending so the ranking is fully deterministic. Candidates under
// minScore are dropped; at most topN survivors are returned. An empty
// result is valid and means the caller should produce a "not found"
// style answer.
func Select(candidates []ScoredCandidate, topN int, minScore float64) []ScoredCandidate {
	kept := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.FinalScore >= minScore {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].FinalScore != kept[j].FinalScore {
			return kept[i].FinalScore > kept[j].FinalScore
		}
		if kept[i].BaseScore != kept[j].BaseScore {
			return kept[i].BaseScore > kept[j].BaseScore
		}
		return kept[i].Chunk.ID < kept[j].Chunk.ID
	})

	if topN > 0 && len(kept) > topN {
		kept = kept[:topN]
	}
	return kept
}
