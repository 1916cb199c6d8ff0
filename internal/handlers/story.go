package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/gamebook-engine/internal/storage"
)

// StoryHandler lists and serves story documents.
//
// Routes:
//
//	GET /v1/stories        - map of story title to filename
//	GET /v1/stories/{file} - the raw story document
type StoryHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewStoryHandler(logger *slog.Logger, storage storage.Storage) *StoryHandler {
	return &StoryHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported at /v1/stories.")
		return
	}

	filename := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/stories"), "/")
	if filename == "" {
		stories, err := h.storage.ListStories(r.Context())
		if err != nil {
			h.logger.Error("Failed to list stories", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list stories")
			return
		}
		writeJSON(w, h.logger, stories)
		return
	}

	doc, err := h.storage.GetStory(r.Context(), filename)
	if err != nil || doc == nil {
		h.logger.Warn("Story not found", "story", filename, "error", err)
		writeError(w, h.logger, http.StatusNotFound, "Story not found: "+filename)
		return
	}
	writeJSON(w, h.logger, doc)
}
