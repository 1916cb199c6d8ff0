package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/gamebook-engine/internal/storage"
	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testStory() *storybook.Document {
	return &storybook.Document{
		Metadata: storybook.Metadata{ID: "gate_story", Title: "The Gate"},
		Presets: storybook.Presets{
			Stats: []storybook.StatPreset{
				{Name: "SKILL", Default: 7},
				{Name: "GOLD", Default: 10},
			},
			Enemies: []storybook.Enemy{{ID: "warden", Name: "Gate Warden", Skill: 6, Stamina: 8}},
		},
		RawPages: []storybook.Page{
			{
				ID:   "1",
				Text: "You stand before the gate.",
				Choices: []storybook.Choice{
					{Text: "Slip through the postern", NextPageID: "2"},
					{
						Text:         "Unlock the main gate",
						NextPageID:   "2",
						RequiresItem: "iron_key",
					},
					{
						Text: "Challenge the warden",
						Combat: &storybook.Combat{
							EnemyID:    "warden",
							WinPageID:  "2",
							LosePageID: "3",
						},
					},
					{
						Text:       "Whisper the pass-phrase",
						NextPageID: "2",
						Input:      &storybook.Input{Answer: "nightingale", FailurePageID: "3"},
					},
				},
			},
			{
				ID:      "2",
				Text:    "You are inside the walls.",
				Effects: &storybook.Effect{Stats: map[string]int{"GOLD": -1}},
				Choices: []storybook.Choice{{Text: "Rest", NextPageID: "2"}},
			},
			{ID: "3", Text: "The warden drags you to the cells.", Ending: storybook.EndingHard},
		},
	}
}

func setupSessionHandler() (*SessionHandler, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	store.AddStory("gate.json", testStory())
	return NewSessionHandler(testLogger(), store), store
}

func createSession(t *testing.T, handler *SessionHandler) *SessionView {
	t.Helper()
	body, _ := json.Marshal(createSessionRequest{Story: "gate.json"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return &view
}

func postAction(t *testing.T, handler *SessionHandler, sessionID, action string, payload any) (*httptest.ResponseRecorder, *SessionView) {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/"+action, bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var view SessionView
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		return w, &view
	}
	return w, nil
}

func TestSessionHandler_Create(t *testing.T) {
	handler, _ := setupSessionHandler()
	view := createSession(t, handler)

	assert.Equal(t, "gate_story", view.StoryID)
	assert.Equal(t, "1", view.Page.ID)
	assert.Len(t, view.Choices, 4)
	assert.True(t, view.Choices[0].Available)
	assert.False(t, view.Choices[1].Available, "locked choice should be reported unavailable")
	assert.NotEmpty(t, view.Choices[1].Hints)
	assert.NotNil(t, view.Choices[2].Combat)
	assert.Equal(t, "Gate Warden", view.Choices[2].Combat.Enemy.Name)
	assert.NotNil(t, view.Choices[3].Input)
	assert.Equal(t, 7, view.State.Stats["SKILL"])
}

func TestSessionHandler_CreateUnknownStory(t *testing.T) {
	handler, _ := setupSessionHandler()
	body, _ := json.Marshal(createSessionRequest{Story: "missing.json"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Choice(t *testing.T) {
	handler, _ := setupSessionHandler()
	view := createSession(t, handler)

	w, after := postAction(t, handler, view.SessionID, "choice", choiceRequest{Choice: 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2", after.Page.ID)
	assert.Equal(t, 9, after.State.Stats["GOLD"], "page effects fire on first visit")
}

func TestSessionHandler_ChoiceLocked(t *testing.T) {
	handler, _ := setupSessionHandler()
	view := createSession(t, handler)

	w, _ := postAction(t, handler, view.SessionID, "choice", choiceRequest{Choice: 1})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_ChoiceOutOfRange(t *testing.T) {
	handler, _ := setupSessionHandler()
	view := createSession(t, handler)

	w, _ := postAction(t, handler, view.SessionID, "choice", choiceRequest{Choice: 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_ChoiceNeedsCombatEndpoint(t *testing.T) {
	handler, _ := setupSessionHandler()
	view := createSession(t, handler)

	w, _ := postAction(t, handler, view.SessionID, "choice", choiceRequest{Choice: 2})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_Combat(t *testing.T) {
	handler, _ := setupSessionHandler()
	view := createSession(t, handler)

	w, after := postAction(t, handler, view.SessionID, "combat", combatRequest{
		Choice:     2,
		Won:        true,
		FinalStats: map[string]int{"SKILL": 7, "GOLD": 10, "STAMINA": 3},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2", after.Page.ID)
	assert.Equal(t, 3, after.State.Stats["STAMINA"], "adjudicated stats overwrite")
	assert.Equal(t, 9, after.State.Stats["GOLD"], "page effects fire after the redirect")
}

func TestSessionHandler_InputCorrectAndIncorrect(t *testing.T) {
	handler, _ := setupSessionHandler()

	t.Run("correct answer", func(t *testing.T) {
		view := createSession(t, handler)
		w, after := postAction(t, handler, view.SessionID, "input", inputRequest{Choice: 3, Answer: " Nightingale "})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "2", after.Page.ID)
	})

	t.Run("incorrect answer", func(t *testing.T) {
		view := createSession(t, handler)
		w, after := postAction(t, handler, view.SessionID, "input", inputRequest{Choice: 3, Answer: "wren"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "3", after.Page.ID, "incorrect answers redirect to the failure page")
		assert.True(t, after.IsEnding)
		assert.False(t, after.CanSave, "hard endings forbid saving")
	})
}

func TestSessionHandler_JumpAndRestart(t *testing.T) {
	handler, _ := setupSessionHandler()
	view := createSession(t, handler)

	_, after := postAction(t, handler, view.SessionID, "choice", choiceRequest{Choice: 0})
	require.Equal(t, "2", after.Page.ID)

	w, jumped := postAction(t, handler, view.SessionID, "jump", jumpRequest{PageID: "1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", jumped.Page.ID)
	assert.Equal(t, 9, jumped.State.Stats["GOLD"], "jump never re-applies effects")

	w, restarted := postAction(t, handler, view.SessionID, "restart", struct{}{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", restarted.Page.ID)
	assert.Equal(t, 10, restarted.State.Stats["GOLD"], "restart resets to a fresh state")
}

func TestSessionHandler_ReadAndDelete(t *testing.T) {
	handler, _ := setupSessionHandler()
	view := createSession(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+view.SessionID, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+view.SessionID, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+view.SessionID, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_InvalidID(t *testing.T) {
	handler, _ := setupSessionHandler()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
