package retrieval

import "strings"

// Scorer combines the base similarity score with domain boosts. A
// Scorer is immutable after construction and safe for concurrent use;
// Score is a pure function of its inputs.
type Scorer struct {
	cfg    Config
	boosts []boost
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{
		cfg:    cfg,
		boosts: defaultBoosts(),
	}
}

// Score applies every registered boost to the candidate's base score as
// a strict product, so a chunk matching on several axes compounds its
// advantage. Factors below 1.0 are clamped up: boosting never drops a
// candidate under its base score. When Config.MaxBoost is positive the
// combined product is capped there. Only factors that fired are
// recorded, in application order.
func (s *Scorer) Score(q Query, c Candidate) (ScoredCandidate, error) {
	if c.Chunk.ID == "" {
		return ScoredCandidate{}, &ScoringError{Reason: "candidate chunk has no id"}
	}
	if c.Chunk.Text == "" {
		return ScoredCandidate{}, &ScoringError{Reason: "candidate chunk " + c.Chunk.ID + " has no text"}
	}

	chunkLower := strings.ToLower(c.Chunk.Text)

	product := 1.0
	var applied []BoostFactor
	for _, b := range s.boosts {
		factor := b.fn(s.cfg, q, c, chunkLower)
		if factor < 1.0 {
			factor = 1.0
		}
		if factor > 1.0 {
			applied = append(applied, BoostFactor{Name: b.name, Factor: factor})
			product *= factor
		}
	}

	if s.cfg.MaxBoost > 0 && product > s.cfg.MaxBoost {
		product = s.cfg.MaxBoost
	}

	return ScoredCandidate{
		Candidate:  c,
		FinalScore: c.BaseScore * product,
		Boosts:     applied,
	}, nil
}

// ScoreAll scores a candidate slice, failing on the first contract
// violation.
func (s *Scorer) ScoreAll(q Query, candidates []Candidate) ([]ScoredCandidate, error) {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		sc, err := s.Score(q, c)
		if err != nil {
			return nil, err
		}
		scored = append(scored, sc)
	}
	return scored, nil
}
