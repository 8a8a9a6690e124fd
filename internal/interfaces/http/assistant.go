package http

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"flowfunds/internal/domain/assistant"
	"flowfunds/internal/shared/logger"
	"flowfunds/internal/shared/middleware"
)

// AssistantHandler serves the finance chat.
type AssistantHandler struct {
	assistant *assistant.Service
	logger    *zap.Logger
}

func NewAssistantHandler(svc *assistant.Service, l *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: svc, logger: l}
}

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// HandleChat answers a question about the caller's finances.
func (h *AssistantHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.assistant.Chat(r.Context(), userID, req.Question)
	if err != nil {
		if errors.Is(err, assistant.ErrInvalidQuestion) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.WithTrace(r.Context(), h.logger).Error("failed to answer question",
			zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to process your question", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Question:  reply.Question,
		Answer:    reply.Answer,
		Timestamp: reply.Timestamp,
	})
}
