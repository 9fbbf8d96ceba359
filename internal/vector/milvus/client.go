package milvus

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/policylens/backend/internal/retrieval"
	"github.com/policylens/backend/internal/storage/models"
	"github.com/policylens/backend/pkg/logger"
)

// Client stores policy chunk embeddings in a Milvus collection. One
// collection holds every document; per-document search filters on the
// doc_id field.
type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

func NewClient(ctx context.Context, endpoint, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Policy document chunk embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "doc_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "section_type",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "section",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "word_count",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "has_numbers",
				DataType: entity.FieldTypeBool,
			},
			{
				Name:     "has_definitions",
				DataType: entity.FieldTypeBool,
			},
			{
				Name:     "is_heading",
				DataType: entity.FieldTypeBool,
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.IP, 1024)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

// Insert writes a document's chunks. Embeddings must already be set.
func (m *Client) Insert(ctx context.Context, docID string, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	chunkIDs := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	texts := make([]string, len(chunks))
	docIDs := make([]string, len(chunks))
	sectionTypes := make([]string, len(chunks))
	sections := make([]string, len(chunks))
	chunkIndexes := make([]int64, len(chunks))
	wordCounts := make([]int64, len(chunks))
	hasNumbers := make([]bool, len(chunks))
	hasDefinitions := make([]bool, len(chunks))
	isHeadings := make([]bool, len(chunks))

	for i, chunk := range chunks {
		if len(chunk.Embedding) != m.vectorDim {
			return fmt.Errorf("chunk %s has embedding dim %d, want %d", chunk.ID, len(chunk.Embedding), m.vectorDim)
		}
		chunkIDs[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		texts[i] = truncate(chunk.Text, 4096)
		docIDs[i] = docID
		sectionTypes[i] = string(chunk.Metadata.SectionType)
		sections[i] = truncate(chunk.Metadata.Section, 256)
		chunkIndexes[i] = int64(chunk.Metadata.ChunkIndex)
		wordCounts[i] = int64(chunk.Metadata.WordCount)
		hasNumbers[i] = chunk.Metadata.HasNumbers
		hasDefinitions[i] = chunk.Metadata.HasDefinitions
		isHeadings[i] = chunk.Metadata.IsHeading
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("doc_id", docIDs),
		entity.NewColumnVarChar("section_type", sectionTypes),
		entity.NewColumnVarChar("section", sections),
		entity.NewColumnInt64("chunk_index", chunkIndexes),
		entity.NewColumnInt64("word_count", wordCounts),
		entity.NewColumnBool("has_numbers", hasNumbers),
		entity.NewColumnBool("has_definitions", hasDefinitions),
		entity.NewColumnBool("is_heading", isHeadings),
	)

	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Chunks inserted into vector store",
		zap.String("doc_id", docID),
		zap.Int("count", len(chunks)),
	)

	return nil
}

// DeleteDocument removes all chunks of a document.
func (m *Client) DeleteDocument(ctx context.Context, docID string) error {
	expr := fmt.Sprintf(`doc_id == "%s"`, escapeExpr(docID))
	if err := m.client.Delete(ctx, m.collectionName, "", expr); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return nil
}

// ForDocument returns a searcher scoped to one document's chunks.
func (m *Client) ForDocument(docID string) retrieval.Searcher {
	return &docSearcher{
		client: m,
		expr:   fmt.Sprintf(`doc_id == "%s"`, escapeExpr(docID)),
	}
}

type docSearcher struct {
	client *Client
	expr   string
}

func (s *docSearcher) Search(ctx context.Context, embedding []float32, limit int) ([]retrieval.SearchRecord, error) {
	return s.client.search(ctx, embedding, limit, s.expr)
}

var outputFields = []string{
	"chunk_id", "text", "section_type", "section",
	"chunk_index", "word_count", "has_numbers", "has_definitions", "is_heading",
}

func (m *Client) search(ctx context.Context, embedding []float32, limit int, expr string) ([]retrieval.SearchRecord, error) {
	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		expr,
		outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		"embedding",
		entity.IP,
		limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	records := make([]retrieval.SearchRecord, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			record, err := recordAt(sr, i)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("limit", limit),
		zap.Int("results", len(records)),
		zap.String("expr", expr),
	)

	return records, nil
}

func recordAt(sr client.SearchResult, i int) (retrieval.SearchRecord, error) {
	chunkID, err := stringAt(sr, "chunk_id", i)
	if err != nil {
		return retrieval.SearchRecord{}, err
	}
	text, err := stringAt(sr, "text", i)
	if err != nil {
		return retrieval.SearchRecord{}, err
	}
	sectionType, err := stringAt(sr, "section_type", i)
	if err != nil {
		return retrieval.SearchRecord{}, err
	}
	section, err := stringAt(sr, "section", i)
	if err != nil {
		return retrieval.SearchRecord{}, err
	}

	return retrieval.SearchRecord{
		ChunkID: chunkID,
		Text:    text,
		Score:   float64(sr.Scores[i]),
		Metadata: models.ChunkMetadata{
			SectionType:    models.SectionType(sectionType),
			Section:        section,
			ChunkIndex:     int(int64At(sr, "chunk_index", i)),
			WordCount:      int(int64At(sr, "word_count", i)),
			HasNumbers:     boolAt(sr, "has_numbers", i),
			HasDefinitions: boolAt(sr, "has_definitions", i),
			IsHeading:      boolAt(sr, "is_heading", i),
		},
	}, nil
}

func stringAt(sr client.SearchResult, field string, i int) (string, error) {
	col := sr.Fields.GetColumn(field)
	if col == nil {
		return "", fmt.Errorf("search result missing field %s", field)
	}
	v, err := col.Get(i)
	if err != nil {
		return "", fmt.Errorf("failed to read field %s: %w", field, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s is not a string", field)
	}
	return s, nil
}

func int64At(sr client.SearchResult, field string, i int) int64 {
	col := sr.Fields.GetColumn(field)
	if col == nil {
		return 0
	}
	v, err := col.Get(i)
	if err != nil {
		return 0
	}
	n, _ := v.(int64)
	return n
}

func boolAt(sr client.SearchResult, field string, i int) bool {
	col := sr.Fields.GetColumn(field)
	if col == nil {
		return false
	}
	v, err := col.Get(i)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

func escapeExpr(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
