package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/policylens/backend/internal/storage/models"
	"github.com/policylens/backend/pkg/logger"
)

// Client keeps a durable record of processed documents and answered
// questions, independently of the vector store and cache.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		title TEXT,
		chunk_count INTEGER NOT NULL,
		processed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(url);
	CREATE INDEX IF NOT EXISTS idx_documents_processed ON documents(processed_at);

	CREATE TABLE IF NOT EXISTS question_history (
		id TEXT PRIMARY KEY,
		doc_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT,
		intent TEXT,
		candidates_retrieved INTEGER,
		candidates_selected INTEGER,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (doc_id) REFERENCES documents(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_questions_doc ON question_history(doc_id);
	CREATE INDEX IF NOT EXISTS idx_questions_created ON question_history(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertDocument(doc *models.DocumentRecord) error {
	query := `
		INSERT INTO documents (id, url, title, chunk_count, processed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			chunk_count = excluded.chunk_count,
			processed_at = excluded.processed_at
	`

	_, err := c.db.Exec(
		query,
		doc.ID,
		doc.URL,
		doc.Title,
		doc.ChunkCount,
		doc.ProcessedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	logger.Debug("Document recorded", zap.String("doc_id", doc.ID), zap.String("url", doc.URL))
	return nil
}

// GetDocumentByURL returns the record for a previously processed
// document, or nil when the URL has never been seen.
func (c *Client) GetDocumentByURL(url string) (*models.DocumentRecord, error) {
	query := `SELECT id, url, title, chunk_count, processed_at FROM documents WHERE url = ?`

	var doc models.DocumentRecord
	var processedAt int64

	err := c.db.QueryRow(query, url).Scan(
		&doc.ID,
		&doc.URL,
		&doc.Title,
		&doc.ChunkCount,
		&processedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.ProcessedAt = time.Unix(processedAt, 0)
	return &doc, nil
}

func (c *Client) InsertQuestionRecord(record *models.QuestionRecord) error {
	query := `
		INSERT INTO question_history (id, doc_id, question, answer, intent,
			candidates_retrieved, candidates_selected, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.DocID,
		record.Question,
		record.Answer,
		record.Intent,
		record.CandidatesRetrieved,
		record.CandidatesSelected,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert question record: %w", err)
	}

	logger.Debug("Question recorded",
		zap.String("question_id", record.ID),
		zap.String("intent", record.Intent),
	)

	return nil
}

func (c *Client) GetQuestionHistory(docID string, limit int) ([]models.QuestionRecord, error) {
	query := `
		SELECT id, doc_id, question, answer, intent,
			candidates_retrieved, candidates_selected, latency_ms, created_at
		FROM question_history
		WHERE doc_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, docID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get question history: %w", err)
	}
	defer rows.Close()

	var records []models.QuestionRecord
	for rows.Next() {
		var r models.QuestionRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.DocID, &r.Question, &r.Answer, &r.Intent,
			&r.CandidatesRetrieved, &r.CandidatesSelected, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return records, nil
}
