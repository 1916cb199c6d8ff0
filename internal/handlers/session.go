package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/gamebook-engine/internal/storage"
	"github.com/jwebster45206/gamebook-engine/pkg/session"
	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

// SessionHandler serves play sessions. Sessions are stateless on the wire:
// every action loads the persisted state, rebuilds the engine over the
// story document, applies exactly one operation and persists the result.
//
// Routes:
//
//	POST   /v1/sessions                    - create a session from a story
//	GET    /v1/sessions/{id}               - read the session view
//	DELETE /v1/sessions/{id}               - discard a session
//	POST   /v1/sessions/{id}/choice        - take a plain choice
//	POST   /v1/sessions/{id}/input         - take an input choice with a typed answer
//	POST   /v1/sessions/{id}/combat        - take a combat choice with an adjudicated outcome
//	POST   /v1/sessions/{id}/jump          - reposition onto a page in history
//	POST   /v1/sessions/{id}/restart       - reset to a fresh state
//	POST   /v1/sessions/{id}/shop          - buy an item on a shop page
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(logger *slog.Logger, storage storage.Storage) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

type createSessionRequest struct {
	Story      string `json:"story"`
	PlayerName string `json:"player_name,omitempty"`
}

type choiceRequest struct {
	Choice int `json:"choice"`
}

type inputRequest struct {
	Choice int    `json:"choice"`
	Answer string `json:"answer"`
}

type combatRequest struct {
	Choice     int            `json:"choice"`
	Won        bool           `json:"won"`
	FinalStats map[string]int `json:"final_stats,omitempty"`
}

type jumpRequest struct {
	PageID string `json:"page_id"`
}

type shopRequest struct {
	Item string `json:"item"`
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	parts := strings.SplitN(rest, "/", 2)

	if parts[0] == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Use POST to create a session.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	case action != "" && r.Method == http.MethodPost:
		h.handleAction(w, r, id, action)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed for this session endpoint.")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Story == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'story' field.")
		return
	}

	doc, err := h.storage.GetStory(r.Context(), req.Story)
	if err != nil || doc == nil {
		h.logger.Warn("Story not found", "story", req.Story, "error", err)
		writeError(w, h.logger, http.StatusNotFound, "Story not found: "+req.Story)
		return
	}

	engine, err := session.NewEngine(doc)
	if err != nil {
		writeError(w, h.logger, http.StatusUnprocessableEntity, "Story has no pages and cannot be played.")
		return
	}

	state := engine.State()
	state.StoryFile = req.Story
	if req.PlayerName != "" {
		state.PlayerName = req.PlayerName
	}

	if err := h.storage.SaveSession(r.Context(), state); err != nil {
		h.logger.Error("Failed to persist session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Info("Session created", "session", state.ID, "story", req.Story)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, h.logger, NewSessionView(engine))
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	engine, ok := h.loadEngine(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, h.logger, NewSessionView(engine))
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "session", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleAction(w http.ResponseWriter, r *http.Request, id uuid.UUID, action string) {
	engine, ok := h.loadEngine(w, r, id)
	if !ok {
		return
	}

	switch action {
	case "choice":
		var req choiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'choice' index.")
			return
		}
		choice, ok := h.choiceAt(w, engine, req.Choice)
		if !ok {
			return
		}
		if choice.Combat != nil || choice.Input != nil {
			writeError(w, h.logger, http.StatusConflict, "Choice requires a combat or input resolution. Use the matching endpoint.")
			return
		}
		engine.MakeChoice(choice)

	case "input":
		var req inputRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'choice' and 'answer'.")
			return
		}
		choice, ok := h.choiceAt(w, engine, req.Choice)
		if !ok {
			return
		}
		if choice.Input == nil {
			writeError(w, h.logger, http.StatusBadRequest, "Choice has no input puzzle.")
			return
		}
		engine.MakeChoice(choice)
		engine.ResolveInput(choice.Input.Matches(req.Answer))

	case "combat":
		var req combatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'choice' and 'won'.")
			return
		}
		choice, ok := h.choiceAt(w, engine, req.Choice)
		if !ok {
			return
		}
		if choice.Combat == nil {
			writeError(w, h.logger, http.StatusBadRequest, "Choice has no combat encounter.")
			return
		}
		engine.MakeChoice(choice)
		engine.ResolveCombat(req.Won, req.FinalStats)

	case "jump":
		var req jumpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'page_id'.")
			return
		}
		engine.JumpToPage(storybook.PageID(req.PageID))

	case "restart":
		engine.Restart()

	case "shop":
		var req shopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'item'.")
			return
		}
		if !engine.Purchase(req.Item) {
			h.logger.Debug("Purchase refused", "session", id, "item", req.Item)
		}

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session action: "+action)
		return
	}

	if err := h.storage.SaveSession(r.Context(), engine.State()); err != nil {
		h.logger.Error("Failed to persist session", "session", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to persist session")
		return
	}

	writeJSON(w, h.logger, NewSessionView(engine))
}

// loadEngine reconstructs an engine from the persisted state and its story
// document. Responds with the appropriate status on failure.
func (h *SessionHandler) loadEngine(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*session.Engine, bool) {
	state, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	if state == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return nil, false
	}

	doc, err := h.storage.GetStory(r.Context(), state.StoryFile)
	if err != nil || doc == nil {
		h.logger.Error("Story missing for session", "session", id, "story", state.StoryFile, "error", err)
		writeError(w, h.logger, http.StatusConflict, "Story document for this session is unavailable")
		return nil, false
	}

	engine, err := session.ResumeEngine(doc, state)
	if err != nil {
		writeError(w, h.logger, http.StatusConflict, "Story document for this session has no pages")
		return nil, false
	}
	return engine, true
}

// choiceAt resolves a choice index on the current page. Locked choices are
// refused here, at the collaborator boundary; the engine itself does not
// re-check eligibility.
func (h *SessionHandler) choiceAt(w http.ResponseWriter, engine *session.Engine, index int) (*storybook.Choice, bool) {
	choices := engine.Choices()
	if index < 0 || index >= len(choices) {
		writeError(w, h.logger, http.StatusBadRequest, "Choice index out of range")
		return nil, false
	}
	choice := &choices[index]
	if available, hints := engine.EvaluateChoice(choice); !available {
		writeError(w, h.logger, http.StatusConflict, "Choice is locked: "+strings.Join(hints, "; "))
		return nil, false
	}
	return choice, true
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
