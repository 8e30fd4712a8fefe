package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/quest-engine/internal/services"
	"github.com/jwebster45206/quest-engine/pkg/event"
)

// EventsHandler records gameplay facts against a game session. Quest
// evaluation runs synchronously before the response is written, so the
// returned game state already reflects any objective transitions.
// Routes:
// POST /v1/gamestate/{id}/events
type EventsHandler struct {
	svc    *services.GameService
	logger *slog.Logger
}

func NewEventsHandler(logger *slog.Logger, svc *services.GameService) *EventsHandler {
	return &EventsHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	id, ok := parseGameID(w, r, h.logger)
	if !ok {
		return
	}

	var ev event.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.logger.Warn("Invalid JSON in event body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if ev.Kind == "" {
		writeError(w, h.logger, http.StatusBadRequest, "kind field is required")
		return
	}

	gs, err := h.svc.RecordEvent(r.Context(), id, ev)
	if err != nil {
		if strings.Contains(err.Error(), "unsupported event kind") {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to record event", "game_id", id, "kind", ev.Kind, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to record event")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, gs)
}
