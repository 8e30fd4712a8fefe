package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/quest-engine/internal/storage"
)

// QuestPackHandler serves quest pack listings and individual packs.
// Routes:
// GET /v1/questpacks            - list packs (name -> filename)
// GET /v1/questpacks/{filename} - fetch one pack
type QuestPackHandler struct {
	logger  *slog.Logger
	storage storage.Storage
}

func NewQuestPackHandler(logger *slog.Logger, st storage.Storage) *QuestPackHandler {
	return &QuestPackHandler{
		logger:  logger,
		storage: st,
	}
}

func (h *QuestPackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/questpacks")
	filename := strings.Trim(path, "/")

	if filename == "" {
		h.handleList(w, r)
		return
	}
	h.handleGet(w, r, filename)
}

func (h *QuestPackHandler) handleList(w http.ResponseWriter, r *http.Request) {
	packs, err := h.storage.ListQuestPacks(r.Context())
	if err != nil {
		h.logger.Error("Failed to list quest packs", "error", err)
		http.Error(w, "Failed to list quest packs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(packs); err != nil {
		h.logger.Error("Failed to encode quest pack list", "error", err)
	}
}

func (h *QuestPackHandler) handleGet(w http.ResponseWriter, r *http.Request, filename string) {
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	pack, err := h.storage.GetQuestPack(r.Context(), filename)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Quest pack not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get quest pack", "error", err, "filename", filename)
		http.Error(w, "Failed to retrieve quest pack", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pack); err != nil {
		h.logger.Error("Failed to encode quest pack", "error", err, "filename", filename)
	}
}
