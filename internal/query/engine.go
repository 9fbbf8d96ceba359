package query

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/policylens/backend/internal/llm"
	"github.com/policylens/backend/internal/metrics"
	"github.com/policylens/backend/internal/retrieval"
	"github.com/policylens/backend/internal/storage/models"
	"github.com/policylens/backend/pkg/logger"
	"github.com/policylens/backend/pkg/utils"
)

// DocumentProcessor turns a document URL into chunks.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, url string) ([]models.Chunk, error)
}

// Embedder produces vector embeddings for text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore persists embedded chunks and serves per-document search.
type VectorStore interface {
	Insert(ctx context.Context, docID string, chunks []models.Chunk) error
	ForDocument(docID string) retrieval.Searcher
}

// Synthesizer composes the final answer from selected evidence.
type Synthesizer interface {
	SynthesizeAnswer(ctx context.Context, question string, evidence []llm.Passage) (string, error)
}

// Cache holds previously computed embeddings and answers. Nil disables
// caching.
type Cache interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, text string, embedding []float32) error
	GetAnswer(ctx context.Context, docURL, question string) (string, bool, error)
	SetAnswer(ctx context.Context, docURL, question, answer string) error
}

// History records processed documents and answered questions. Nil
// disables recording.
type History interface {
	GetDocumentByURL(url string) (*models.DocumentRecord, error)
	InsertDocument(doc *models.DocumentRecord) error
	InsertQuestionRecord(record *models.QuestionRecord) error
}

type Deps struct {
	Processor   DocumentProcessor
	Embedder    Embedder
	Store       VectorStore
	Synthesizer Synthesizer
	Cache       Cache
	History     History
}

type Config struct {
	Retrieval        retrieval.Config
	MaxParallel      int
	RetrievalTimeout time.Duration
}

// Engine runs the full pipeline: document preparation, hybrid
// retrieval, and answer synthesis.
type Engine struct {
	deps   Deps
	cfg    Config
	scorer *retrieval.Scorer
}

func NewEngine(deps Deps, cfg Config) *Engine {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	return &Engine{
		deps:   deps,
		cfg:    cfg,
		scorer: retrieval.NewScorer(cfg.Retrieval),
	}
}

// PrepareDocument downloads, chunks, embeds, and indexes a document.
// A URL already present in history is not reprocessed.
func (e *Engine) PrepareDocument(ctx context.Context, docURL string) (string, error) {
	if e.deps.History != nil {
		existing, err := e.deps.History.GetDocumentByURL(docURL)
		if err != nil {
			logger.Warn("Document lookup failed", zap.Error(err))
		} else if existing != nil {
			logger.Info("Document already indexed",
				zap.String("doc_id", existing.ID),
				zap.String("url", docURL),
			)
			return existing.ID, nil
		}
	}

	chunks, err := e.deps.Processor.ProcessDocument(ctx, docURL)
	if err != nil {
		return "", fmt.Errorf("failed to process document: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := e.deps.Embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return "", fmt.Errorf("failed to embed document: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return "", fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	docID := uuid.New().String()
	if err := e.deps.Store.Insert(ctx, docID, chunks); err != nil {
		return "", fmt.Errorf("failed to index document: %w", err)
	}

	if e.deps.History != nil {
		record := &models.DocumentRecord{
			ID:          docID,
			URL:         docURL,
			Title:       documentTitle(docURL),
			ChunkCount:  len(chunks),
			ProcessedAt: time.Now(),
		}
		if err := e.deps.History.InsertDocument(record); err != nil {
			logger.Warn("Failed to record document", zap.Error(err))
		}
	}

	metrics.DocumentsProcessed.Inc()
	metrics.DocumentChunks.Observe(float64(len(chunks)))

	logger.Info("Document prepared",
		zap.String("doc_id", docID),
		zap.String("url", docURL),
		zap.Int("chunks", len(chunks)),
	)

	return docID, nil
}

// AnswerQuestion answers one question against a prepared document.
func (e *Engine) AnswerQuestion(ctx context.Context, docID, docURL, question string) (string, error) {
	start := time.Now()

	if e.deps.Cache != nil {
		answer, ok, err := e.deps.Cache.GetAnswer(ctx, docURL, question)
		if err != nil {
			logger.Warn("Answer cache lookup failed", zap.Error(err))
		} else if ok {
			metrics.CacheHits.WithLabelValues("answer").Inc()
			return answer, nil
		}
		metrics.CacheMisses.WithLabelValues("answer").Inc()
	}

	q := retrieval.NewQuery(question)
	metrics.IntentClassified.WithLabelValues(string(q.Intent)).Inc()

	embedding, err := e.embedText(ctx, question)
	if err != nil {
		metrics.QuestionTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	retriever := retrieval.NewRetriever(
		e.deps.Store.ForDocument(docID),
		e.cfg.Retrieval.OverFetch,
		e.cfg.RetrievalTimeout,
	)
	candidates, err := retriever.Retrieve(ctx, embedding)
	if err != nil {
		metrics.QuestionTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.CandidatesRetrieved.Observe(float64(len(candidates)))

	scored, err := e.scorer.ScoreAll(q, candidates)
	if err != nil {
		metrics.QuestionTotal.WithLabelValues("error").Inc()
		return "", err
	}

	selected := retrieval.Select(scored, e.cfg.Retrieval.TopN, e.cfg.Retrieval.MinScore)
	metrics.CandidatesSelected.Observe(float64(len(selected)))
	for _, sc := range selected {
		metrics.FinalScore.Observe(sc.FinalScore)
	}

	evidence := make([]llm.Passage, len(selected))
	for i, sc := range selected {
		evidence[i] = llm.Passage{
			Text:    sc.Chunk.Text,
			Section: sc.Chunk.Metadata.Section,
		}
	}

	answer, err := e.deps.Synthesizer.SynthesizeAnswer(ctx, question, evidence)
	if err != nil {
		metrics.QuestionTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}

	latency := time.Since(start)
	metrics.QuestionDuration.WithLabelValues(string(q.Intent)).Observe(latency.Seconds())
	metrics.QuestionTotal.WithLabelValues("success").Inc()

	if e.deps.Cache != nil {
		if err := e.deps.Cache.SetAnswer(ctx, docURL, question, answer); err != nil {
			logger.Warn("Answer cache write failed", zap.Error(err))
		}
	}

	if e.deps.History != nil {
		record := &models.QuestionRecord{
			ID:                  uuid.New().String(),
			DocID:               docID,
			Question:            question,
			Answer:              answer,
			Intent:              string(q.Intent),
			CandidatesRetrieved: len(candidates),
			CandidatesSelected:  len(selected),
			LatencyMS:           int(latency.Milliseconds()),
			CreatedAt:           time.Now(),
		}
		if err := e.deps.History.InsertQuestionRecord(record); err != nil {
			logger.Warn("Failed to record question", zap.Error(err))
		}
	}

	logger.Info("Question answered",
		zap.String("doc_id", docID),
		zap.String("intent", string(q.Intent)),
		zap.Int("retrieved", len(candidates)),
		zap.Int("selected", len(selected)),
		zap.Duration("latency", latency),
	)

	return answer, nil
}

// Run prepares the document and answers all questions, in the order
// given. Questions run concurrently; one question failing produces an
// error answer in its slot without aborting the batch.
func (e *Engine) Run(ctx context.Context, docURL string, questions []string) ([]string, error) {
	docID, err := e.PrepareDocument(ctx, docURL)
	if err != nil {
		return nil, err
	}

	answers := make([]string, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxParallel)

	for i, question := range questions {
		i, question := i, question
		g.Go(func() error {
			answer, err := e.AnswerQuestion(gctx, docID, docURL, question)
			if err != nil {
				logger.Error("Question failed",
					zap.String("question", question),
					zap.Error(err),
				)
				answers[i] = fmt.Sprintf("Error processing question: %v", err)
				return nil
			}
			answers[i] = answer
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return answers, nil
}

func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	if e.deps.Cache != nil {
		embedding, ok, err := e.deps.Cache.GetEmbedding(ctx, text)
		if err != nil {
			logger.Warn("Embedding cache lookup failed", zap.Error(err))
		} else if ok {
			metrics.CacheHits.WithLabelValues("embedding").Inc()
			return embedding, nil
		}
		metrics.CacheMisses.WithLabelValues("embedding").Inc()
	}

	embedding, err := e.deps.Embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if e.deps.Cache != nil {
		if err := e.deps.Cache.SetEmbedding(ctx, text, embedding); err != nil {
			logger.Warn("Embedding cache write failed", zap.Error(err))
		}
	}

	return embedding, nil
}

func documentTitle(docURL string) string {
	u, err := url.Parse(docURL)
	if err != nil || u.Path == "" {
		return utils.HashString(docURL)
	}
	if name := path.Base(u.Path); name != "/" && name != "." {
		return name
	}
	return u.Host
}
