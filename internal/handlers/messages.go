package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/quest-engine/internal/services/queue"
)

// MessagesResponse carries drained system messages in queue order.
type MessagesResponse struct {
	Messages []string `json:"messages"`
}

// MessagesHandler drains queued system messages for a game.
// Routes:
// GET /v1/gamestate/{id}/messages
type MessagesHandler struct {
	messages *queue.MessageQueue
	logger   *slog.Logger
}

func NewMessagesHandler(logger *slog.Logger, messages *queue.MessageQueue) *MessagesHandler {
	return &MessagesHandler{
		messages: messages,
		logger:   logger,
	}
}

func (h *MessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	id, ok := parseGameID(w, r, h.logger)
	if !ok {
		return
	}

	messages, err := h.messages.Drain(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to drain system messages", "game_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to drain messages")
		return
	}
	if messages == nil {
		messages = []string{}
	}

	writeJSON(w, h.logger, http.StatusOK, MessagesResponse{Messages: messages})
}
