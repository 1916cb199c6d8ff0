package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSavesHandler() (*SavesHandler, *SessionHandler) {
	sessions, store := setupSessionHandler()
	return NewSavesHandler(testLogger(), store, sessions), sessions
}

func listSaves(t *testing.T, handler *SavesHandler, sessionID string) SaveListResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID+"/saves", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SaveListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSavesHandler_SaveAndList(t *testing.T) {
	saves, sessions := setupSavesHandler()
	view := createSession(t, sessions)

	body, _ := json.Marshal(saveRequest{Name: "Before the gate"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+view.SessionID+"/saves", bytes.NewReader(body))
	w := httptest.NewRecorder()
	saves.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := listSaves(t, saves, view.SessionID)
	require.Len(t, resp.Saves, 1)
	assert.Equal(t, 1, resp.Saves[0].Slot, "auto-picked slot starts at 1")
	assert.Equal(t, "Before the gate", resp.Saves[0].Name)
	assert.Equal(t, "The Gate", resp.Saves[0].StoryTitle)
}

func TestSavesHandler_SlotOutOfRange(t *testing.T) {
	saves, sessions := setupSavesHandler()
	view := createSession(t, sessions)

	body, _ := json.Marshal(saveRequest{Slot: 6})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+view.SessionID+"/saves", bytes.NewReader(body))
	w := httptest.NewRecorder()
	saves.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSavesHandler_SaveAtHardEndingForbidden(t *testing.T) {
	saves, sessions := setupSavesHandler()
	view := createSession(t, sessions)

	// Fail the pass-phrase to land on the hard ending.
	_, after := postAction(t, sessions, view.SessionID, "input", inputRequest{Choice: 3, Answer: "wrong"})
	require.True(t, after.IsEnding)

	body, _ := json.Marshal(saveRequest{Slot: 1})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+view.SessionID+"/saves", bytes.NewReader(body))
	w := httptest.NewRecorder()
	saves.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSavesHandler_LoadRestoresState(t *testing.T) {
	saves, sessions := setupSavesHandler()
	view := createSession(t, sessions)

	body, _ := json.Marshal(saveRequest{Slot: 2, Name: "start"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+view.SessionID+"/saves", bytes.NewReader(body))
	w := httptest.NewRecorder()
	saves.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	_, after := postAction(t, sessions, view.SessionID, "choice", choiceRequest{Choice: 0})
	require.Equal(t, "2", after.Page.ID)

	req = httptest.NewRequest(http.MethodPost, "/v1/sessions/"+view.SessionID+"/saves/2/load", nil)
	w = httptest.NewRecorder()
	saves.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var restored SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &restored))
	assert.Equal(t, "1", restored.Page.ID)
	assert.Equal(t, 10, restored.State.Stats["GOLD"])
	assert.Equal(t, view.SessionID, restored.SessionID, "the live session handle survives restoration")
}

func TestSavesHandler_LoadMissingSlot(t *testing.T) {
	saves, sessions := setupSavesHandler()
	view := createSession(t, sessions)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+view.SessionID+"/saves/4/load", nil)
	w := httptest.NewRecorder()
	saves.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSavesHandler_Delete(t *testing.T) {
	saves, sessions := setupSavesHandler()
	view := createSession(t, sessions)

	body, _ := json.Marshal(saveRequest{Slot: 3})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+view.SessionID+"/saves", bytes.NewReader(body))
	w := httptest.NewRecorder()
	saves.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+view.SessionID+"/saves/3", nil)
	w = httptest.NewRecorder()
	saves.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	resp := listSaves(t, saves, view.SessionID)
	assert.Empty(t, resp.Saves)
}
