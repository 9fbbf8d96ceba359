package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/policylens/backend/internal/storage/models"
)

// SearchRecord is one nearest-neighbor hit as reported by the vector
// index, before normalization into a Candidate.
type SearchRecord struct {
	ChunkID  string
	Text     string
	Score    float64
	Metadata models.ChunkMetadata
}

// Searcher is the boundary to the external vector index. The similarity
// metric belongs to the index, not to this package.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]SearchRecord, error)
}

// Retriever adapts the vector index into the engine's candidate shape.
// It over-fetches so the hybrid scorer has room to re-rank beyond pure
// semantic similarity.
type Retriever struct {
	searcher  Searcher
	overFetch int
	timeout   time.Duration
}

func NewRetriever(searcher Searcher, overFetch int, timeout time.Duration) *Retriever {
	if overFetch <= 0 {
		overFetch = DefaultConfig().OverFetch
	}
	return &Retriever{
		searcher:  searcher,
		overFetch: overFetch,
		timeout:   timeout,
	}
}

// Retrieve fetches the over-fetched candidate pool for a query
// embedding. Index failures and malformed records come back as a
// *RetrievalError so the caller can fail that question loudly instead
// of answering from nothing.
func (r *Retriever) Retrieve(ctx context.Context, embedding []float32) ([]Candidate, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	records, err := r.searcher.Search(ctx, embedding, r.overFetch)
	if err != nil {
		return nil, &RetrievalError{Op: "search", Err: err}
	}

	candidates := make([]Candidate, 0, len(records))
	for i, rec := range records {
		if rec.ChunkID == "" || rec.Text == "" {
			return nil, &RetrievalError{
				Op:  "decode",
				Err: fmt.Errorf("malformed record at position %d: empty chunk id or text", i),
			}
		}
		candidates = append(candidates, Candidate{
			Chunk: models.Chunk{
				ID:       rec.ChunkID,
				Text:     rec.Text,
				Metadata: rec.Metadata,
			},
			BaseScore: rec.Score,
		})
	}

	return candidates, nil
}
