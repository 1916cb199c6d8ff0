package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/gamebook-engine/internal/storage"
	"github.com/jwebster45206/gamebook-engine/pkg/session"
)

// SavesHandler manages save slots for a session's story.
//
// Routes:
//
//	GET    /v1/sessions/{id}/saves             - list slots
//	POST   /v1/sessions/{id}/saves             - save into a slot (auto-picked unless given)
//	POST   /v1/sessions/{id}/saves/{slot}/load - restore a slot into the session
//	DELETE /v1/sessions/{id}/saves/{slot}      - delete a slot
type SavesHandler struct {
	sessions *SessionHandler
	storage  storage.Storage
	logger   *slog.Logger
}

func NewSavesHandler(logger *slog.Logger, st storage.Storage, sessions *SessionHandler) *SavesHandler {
	return &SavesHandler{
		sessions: sessions,
		storage:  st,
		logger:   logger,
	}
}

type saveRequest struct {
	Slot int    `json:"slot,omitempty"`
	Name string `json:"name,omitempty"`
}

// SaveListResponse wraps the slot listing.
type SaveListResponse struct {
	Saves []session.SaveSlot `json:"saves"`
}

func (h *SavesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Path shape: /v1/sessions/{id}/saves[/{slot}[/load]]
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[1] != "saves" {
		writeError(w, h.logger, http.StatusNotFound, "Unknown saves path")
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	engine, ok := h.sessions.loadEngine(w, r, id)
	if !ok {
		return
	}
	storyID := engine.Document().Metadata.ID

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.handleList(w, r, storyID)

	case len(parts) == 2 && r.Method == http.MethodPost:
		h.handleSave(w, r, engine, storyID)

	case len(parts) == 4 && parts[3] == "load" && r.Method == http.MethodPost:
		h.handleLoad(w, r, engine, storyID, parts[2])

	case len(parts) == 3 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, storyID, parts[2])

	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed for this saves endpoint.")
	}
}

func (h *SavesHandler) handleList(w http.ResponseWriter, r *http.Request, storyID string) {
	slots, err := h.storage.ListSaves(r.Context(), storyID)
	if err != nil {
		h.logger.Error("Failed to list saves", "story", storyID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list saves")
		return
	}
	writeJSON(w, h.logger, SaveListResponse{Saves: slots})
}

func (h *SavesHandler) handleSave(w http.ResponseWriter, r *http.Request, engine *session.Engine, storyID string) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}

	slotID := req.Slot
	if slotID == 0 {
		existing, err := h.storage.ListSaves(r.Context(), storyID)
		if err != nil {
			h.logger.Error("Failed to list saves", "story", storyID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to pick a save slot")
			return
		}
		slotID = session.NextSlot(existing)
	}
	if slotID < 1 || slotID > session.MaxSaveSlots {
		writeError(w, h.logger, http.StatusBadRequest, "Save slot out of range")
		return
	}

	slot, err := engine.Save(slotID, req.Name)
	if err != nil {
		writeError(w, h.logger, http.StatusForbidden, err.Error())
		return
	}

	if err := h.storage.PutSave(r.Context(), storyID, *slot); err != nil {
		h.logger.Error("Failed to write save slot", "story", storyID, "slot", slotID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to write save slot")
		return
	}

	h.logger.Info("Game saved", "story", storyID, "slot", slotID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, h.logger, slot)
}

func (h *SavesHandler) handleLoad(w http.ResponseWriter, r *http.Request, engine *session.Engine, storyID, slotStr string) {
	slotID, err := strconv.Atoi(slotStr)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid save slot")
		return
	}

	slots, err := h.storage.ListSaves(r.Context(), storyID)
	if err != nil {
		h.logger.Error("Failed to list saves", "story", storyID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load save slot")
		return
	}

	var found *session.SaveSlot
	for i := range slots {
		if slots[i].Slot == slotID {
			found = &slots[i]
			break
		}
	}
	if found == nil {
		writeError(w, h.logger, http.StatusNotFound, "Save slot not found")
		return
	}

	// Restoration keeps the live session's identity so the client's
	// handle stays valid.
	sessionID := engine.State().ID
	storyFile := engine.State().StoryFile
	engine.LoadSave(found)
	engine.State().ID = sessionID
	engine.State().StoryFile = storyFile

	if err := h.storage.SaveSession(r.Context(), engine.State()); err != nil {
		h.logger.Error("Failed to persist restored session", "session", sessionID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to persist restored session")
		return
	}

	writeJSON(w, h.logger, NewSessionView(engine))
}

func (h *SavesHandler) handleDelete(w http.ResponseWriter, r *http.Request, storyID, slotStr string) {
	slotID, err := strconv.Atoi(slotStr)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid save slot")
		return
	}

	if err := h.storage.DeleteSave(r.Context(), storyID, slotID); err != nil {
		h.logger.Error("Failed to delete save slot", "story", storyID, "slot", slotID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete save slot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
