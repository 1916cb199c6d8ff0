package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/gamebook-engine/internal/storage"
	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

func TestStoryHandler_List(t *testing.T) {
	store := storage.NewMemoryStorage()
	store.AddStory("gate.json", testStory())
	handler := NewStoryHandler(testLogger(), store)

	req := httptest.NewRequest(http.MethodGet, "/v1/stories", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stories map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stories))
	assert.Equal(t, map[string]string{"The Gate": "gate.json"}, stories)
}

func TestStoryHandler_Get(t *testing.T) {
	store := storage.NewMemoryStorage()
	store.AddStory("gate.json", testStory())
	handler := NewStoryHandler(testLogger(), store)

	req := httptest.NewRequest(http.MethodGet, "/v1/stories/gate.json", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc storybook.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "The Gate", doc.Metadata.Title)
	assert.Len(t, doc.Pages(), 3)
}

func TestStoryHandler_NotFound(t *testing.T) {
	store := storage.NewMemoryStorage()
	handler := NewStoryHandler(testLogger(), store)

	req := httptest.NewRequest(http.MethodGet, "/v1/stories/nope.json", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStoryHandler_MethodNotAllowed(t *testing.T) {
	store := storage.NewMemoryStorage()
	handler := NewStoryHandler(testLogger(), store)

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthHandler(t *testing.T) {
	store := storage.NewMemoryStorage()
	handler := NewHealthHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Components["storage"])
}
