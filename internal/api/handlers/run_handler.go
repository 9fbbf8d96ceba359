package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/policylens/backend/internal/query"
	"github.com/policylens/backend/pkg/logger"
)

// RunRequest is the submission endpoint's payload: one document URL and
// the questions to answer against it.
type RunRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

type RunResponse struct {
	Answers []string `json:"answers"`
}

type RunHandler struct {
	engine *query.Engine
}

func NewRunHandler(engine *query.Engine) *RunHandler {
	return &RunHandler{engine: engine}
}

// HandleRun processes a document and answers every question, returning
// answers in the same order as the questions.
func (h *RunHandler) HandleRun(c *fiber.Ctx) error {
	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse run request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Documents == "" || len(req.Questions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "documents and questions are required",
		})
	}

	logger.Info("Run request received",
		zap.String("documents", req.Documents),
		zap.Int("questions", len(req.Questions)),
	)

	answers, err := h.engine.Run(c.Context(), req.Documents, req.Questions)
	if err != nil {
		logger.Error("Failed to process run request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process document",
		})
	}

	return c.JSON(RunResponse{Answers: answers})
}
