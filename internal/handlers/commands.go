package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/quest-engine/internal/services"
	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// CommandRequest carries one raw LLM command line.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse returns the dispatch outcome plus the updated game
// state.
type CommandResponse struct {
	Result    command.Result   `json:"result"`
	GameState *state.GameState `json:"gamestate,omitempty"`
}

// CommandsHandler applies LLM command envelopes synchronously.
// Routes:
// POST /v1/gamestate/{id}/commands
type CommandsHandler struct {
	svc    *services.GameService
	logger *slog.Logger
}

func NewCommandsHandler(logger *slog.Logger, svc *services.GameService) *CommandsHandler {
	return &CommandsHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *CommandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	id, ok := parseGameID(w, r, h.logger)
	if !ok {
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in command body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Command == "" {
		writeError(w, h.logger, http.StatusBadRequest, "command field is required")
		return
	}

	result, gs, err := h.svc.ApplyCommand(r.Context(), id, req.Command)
	if err != nil {
		h.logger.Error("Failed to apply command", "game_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to apply command")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found")
		return
	}

	// A rejected command is still a 200: the rejection reason is the
	// payload, not a transport failure.
	writeJSON(w, h.logger, http.StatusOK, CommandResponse{
		Result:    *result,
		GameState: gs,
	})
}
