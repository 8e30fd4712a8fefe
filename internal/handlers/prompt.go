package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/quest-engine/internal/services"
	"github.com/jwebster45206/quest-engine/pkg/chat"
)

// PromptResponse carries the assembled narrator messages.
type PromptResponse struct {
	Messages []chat.ChatMessage `json:"messages"`
}

// PromptHandler builds the narrator LLM prompt for a game, so external
// hosts can run their own model against the engine's state.
// Routes:
// GET /v1/gamestate/{id}/prompt
type PromptHandler struct {
	svc    *services.GameService
	logger *slog.Logger
}

func NewPromptHandler(logger *slog.Logger, svc *services.GameService) *PromptHandler {
	return &PromptHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *PromptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	id, ok := parseGameID(w, r, h.logger)
	if !ok {
		return
	}

	userMessage := r.URL.Query().Get("message")

	messages, err := h.svc.NarratorPrompt(r.Context(), id, userMessage)
	if err != nil {
		h.logger.Error("Failed to build narrator prompt", "game_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to build prompt")
		return
	}
	if messages == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, PromptResponse{Messages: messages})
}
