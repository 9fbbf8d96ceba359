package retrieval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policylens/backend/internal/storage/models"
)

type fakeSearcher struct {
	records   []SearchRecord
	err       error
	lastLimit int
}

func (f *fakeSearcher) Search(ctx context.Context, embedding []float32, limit int) ([]SearchRecord, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestRetrieveNormalizesRecords(t *testing.T) {
	searcher := &fakeSearcher{
		records: []SearchRecord{
			{ChunkID: "c1", Text: "first", Score: 0.9, Metadata: models.ChunkMetadata{SectionType: models.SectionDefinition}},
			{ChunkID: "c2", Text: "second", Score: 0.4},
		},
	}

	retriever := NewRetriever(searcher, 15, time.Second)
	candidates, err := retriever.Retrieve(context.Background(), []float32{0.1, 0.2})
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "c1", candidates[0].Chunk.ID)
	assert.Equal(t, 0.9, candidates[0].BaseScore)
	assert.Equal(t, models.SectionDefinition, candidates[0].Chunk.Metadata.SectionType)
	assert.Equal(t, "c2", candidates[1].Chunk.ID)
}

func TestRetrieveOverFetches(t *testing.T) {
	searcher := &fakeSearcher{}

	retriever := NewRetriever(searcher, 15, time.Second)
	_, err := retriever.Retrieve(context.Background(), []float32{0.1})
	require.NoError(t, err)

	assert.Equal(t, 15, searcher.lastLimit)
}

func TestRetrieveDefaultOverFetch(t *testing.T) {
	searcher := &fakeSearcher{}

	retriever := NewRetriever(searcher, 0, time.Second)
	_, err := retriever.Retrieve(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().OverFetch, searcher.lastLimit)
}

func TestRetrieveSearchFailure(t *testing.T) {
	cause := fmt.Errorf("index unreachable")
	searcher := &fakeSearcher{err: cause}

	retriever := NewRetriever(searcher, 15, time.Second)
	_, err := retriever.Retrieve(context.Background(), nil)

	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.ErrorIs(t, err, cause)
}

func TestRetrieveMalformedRecord(t *testing.T) {
	tests := []struct {
		name   string
		record SearchRecord
	}{
		{"empty chunk id", SearchRecord{Text: "text", Score: 0.5}},
		{"empty text", SearchRecord{ChunkID: "c1", Score: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{records: []SearchRecord{tt.record}}
			retriever := NewRetriever(searcher, 15, time.Second)

			_, err := retriever.Retrieve(context.Background(), nil)
			var retrievalErr *RetrievalError
			require.ErrorAs(t, err, &retrievalErr)
		})
	}
}

type blockingSearcher struct{}

func (b *blockingSearcher) Search(ctx context.Context, embedding []float32, limit int) ([]SearchRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRetrieveTimeout(t *testing.T) {
	retriever := NewRetriever(&blockingSearcher{}, 15, 10*time.Millisecond)

	_, err := retriever.Retrieve(context.Background(), nil)

	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
