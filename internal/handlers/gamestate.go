package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/services"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// parseGameID extracts and validates the {id} path value.
func parseGameID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		logger.Warn("Invalid game state ID", "id", idStr, "error", err)
		writeError(w, logger, http.StatusBadRequest, "Invalid game state ID format")
		return uuid.Nil, false
	}
	return id, true
}

// GameStateHandler handles game session CRUD.
// Routes:
// POST /v1/gamestate        - Create new game state from a quest pack
// GET /v1/gamestate/{id}    - Read game state by ID
// DELETE /v1/gamestate/{id} - Delete game state by ID
type GameStateHandler struct {
	svc    *services.GameService
	logger *slog.Logger
}

func NewGameStateHandler(logger *slog.Logger, svc *services.GameService) *GameStateHandler {
	return &GameStateHandler{
		svc:    svc,
		logger: logger,
	}
}

// CreateGameStateRequest defines the request body for creating a new game state
type CreateGameStateRequest struct {
	QuestPack string `json:"quest_pack"` // Required: quest pack filename
}

// Normalize ensures the pack filename carries a .json extension.
func (req *CreateGameStateRequest) Normalize() {
	req.QuestPack = strings.TrimSpace(req.QuestPack)
	if req.QuestPack != "" && !strings.HasSuffix(req.QuestPack, ".json") {
		req.QuestPack += ".json"
	}
}

func (h *GameStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleRead(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *GameStateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new game state")

	var req CreateGameStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	req.Normalize()

	if req.QuestPack == "" {
		writeError(w, h.logger, http.StatusBadRequest, "quest_pack field is required")
		return
	}
	if strings.Contains(req.QuestPack, "..") || strings.Contains(req.QuestPack, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid quest pack filename")
		return
	}

	gs, err := h.svc.CreateGame(r.Context(), req.QuestPack)
	if err != nil {
		h.logger.Warn("Failed to create game", "quest_pack", req.QuestPack, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Failed to create game: "+err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, gs)
}

func (h *GameStateHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseGameID(w, r, h.logger)
	if !ok {
		return
	}

	gs, err := h.svc.LoadGame(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load gamestate", "game_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game state")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *GameStateHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseGameID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.svc.DeleteGame(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete gamestate", "game_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game state")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
