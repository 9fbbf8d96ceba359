package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/policylens/backend/internal/storage/sqlite"
	"github.com/policylens/backend/pkg/logger"
)

type HistoryHandler struct {
	db *sqlite.Client
}

func NewHistoryHandler(db *sqlite.Client) *HistoryHandler {
	return &HistoryHandler{db: db}
}

// GetDocumentHistory returns the answered questions for one document.
func (h *HistoryHandler) GetDocumentHistory(c *fiber.Ctx) error {
	docID := c.Params("id")
	if docID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document id is required",
		})
	}

	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}

	records, err := h.db.GetQuestionHistory(docID, limit)
	if err != nil {
		logger.Error("Failed to fetch question history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch history",
		})
	}

	items := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		items = append(items, fiber.Map{
			"id":                   r.ID,
			"question":             r.Question,
			"answer":               r.Answer,
			"intent":               r.Intent,
			"candidates_retrieved": r.CandidatesRetrieved,
			"candidates_selected":  r.CandidatesSelected,
			"latency_ms":           r.LatencyMS,
			"created_at":           r.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"doc_id":  docID,
		"history": items,
	})
}
