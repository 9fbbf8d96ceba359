package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/policylens/backend/internal/query"
	"github.com/policylens/backend/pkg/logger"
)

// WebSocketHandler streams answers one question at a time, so a client
// with many questions sees results as they complete instead of waiting
// for the whole batch.
type WebSocketHandler struct {
	engine *query.Engine
}

func NewWebSocketHandler(engine *query.Engine) *WebSocketHandler {
	return &WebSocketHandler{engine: engine}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type      string   `json:"type"`
			Documents string   `json:"documents"`
			Questions []string `json:"questions"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "run" {
			continue
		}

		if msg.Documents == "" || len(msg.Questions) == 0 {
			h.sendError(c, "documents and questions are required")
			continue
		}

		if err := h.streamAnswers(c, msg.Documents, msg.Questions); err != nil {
			logger.Error("Failed to stream answers", zap.Error(err))
			h.sendError(c, "Failed to process document")
		}
	}
}

func (h *WebSocketHandler) streamAnswers(c *websocket.Conn, docURL string, questions []string) error {
	ctx := context.Background()

	if err := h.send(c, map[string]interface{}{
		"type":    "status",
		"content": "Processing document...",
	}); err != nil {
		return err
	}

	docID, err := h.engine.PrepareDocument(ctx, docURL)
	if err != nil {
		return err
	}

	for i, question := range questions {
		answer, err := h.engine.AnswerQuestion(ctx, docID, docURL, question)
		if err != nil {
			logger.Error("Question failed",
				zap.String("question", question),
				zap.Error(err),
			)
			answer = "Error processing question."
		}

		if err := h.send(c, map[string]interface{}{
			"type":     "answer",
			"index":    i,
			"question": question,
			"answer":   answer,
		}); err != nil {
			return err
		}
	}

	return h.send(c, map[string]interface{}{
		"type":  "complete",
		"total": len(questions),
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msg map[string]interface{}) error {
	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	h.send(c, map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
