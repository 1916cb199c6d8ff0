package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/jwebster45206/gamebook-engine/internal/handlers"
	"github.com/jwebster45206/gamebook-engine/pkg/session"
)

type apiClient struct {
	client  *http.Client
	baseURL string
}

func (a *apiClient) testConnection() bool {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (a *apiClient) listStories() ([]string, map[string]string, error) {
	resp, err := a.client.Get(a.baseURL + "/v1/stories")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var storyMap map[string]string
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal(body, &storyMap); err != nil {
		return nil, nil, err
	}

	var titles []string
	for title := range storyMap {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, storyMap, nil
}

// decodeSession turns an API response into a SessionView, surfacing the
// error payload on non-2xx statuses.
func decodeSession(resp *http.Response, wantStatus int) (*handlers.SessionView, error) {
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%s", errorResp.Error)
	}

	var view handlers.SessionView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &view, nil
}

func (a *apiClient) createSession(storyFile, playerName string) (*handlers.SessionView, error) {
	reqBody := map[string]string{"story": storyFile}
	if playerName != "" {
		reqBody["player_name"] = playerName
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := a.client.Post(a.baseURL+"/v1/sessions", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return decodeSession(resp, http.StatusCreated)
}

func (a *apiClient) getSession(sessionID string) (*handlers.SessionView, error) {
	resp, err := a.client.Get(a.baseURL + "/v1/sessions/" + sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return decodeSession(resp, http.StatusOK)
}

// postAction posts one session action (choice, input, combat, jump,
// restart, shop) and returns the refreshed view.
func (a *apiClient) postAction(sessionID, action string, payload any) (*handlers.SessionView, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := a.client.Post(
		a.baseURL+"/v1/sessions/"+sessionID+"/"+action,
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return decodeSession(resp, http.StatusOK)
}

func (a *apiClient) makeChoice(sessionID string, choice int) (*handlers.SessionView, error) {
	return a.postAction(sessionID, "choice", map[string]int{"choice": choice})
}

func (a *apiClient) submitInput(sessionID string, choice int, answer string) (*handlers.SessionView, error) {
	return a.postAction(sessionID, "input", map[string]any{"choice": choice, "answer": answer})
}

func (a *apiClient) submitCombat(sessionID string, choice int, won bool, finalStats map[string]int) (*handlers.SessionView, error) {
	return a.postAction(sessionID, "combat", map[string]any{
		"choice":      choice,
		"won":         won,
		"final_stats": finalStats,
	})
}

func (a *apiClient) jump(sessionID, pageID string) (*handlers.SessionView, error) {
	return a.postAction(sessionID, "jump", map[string]string{"page_id": pageID})
}

func (a *apiClient) restart(sessionID string) (*handlers.SessionView, error) {
	return a.postAction(sessionID, "restart", struct{}{})
}

func (a *apiClient) buyItem(sessionID, itemID string) (*handlers.SessionView, error) {
	return a.postAction(sessionID, "shop", map[string]string{"item": itemID})
}

func (a *apiClient) listSaves(sessionID string) ([]session.SaveSlot, error) {
	resp, err := a.client.Get(a.baseURL + "/v1/sessions/" + sessionID + "/saves")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var listResp handlers.SaveListResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("failed to parse saves response: %w", err)
	}
	return listResp.Saves, nil
}

func (a *apiClient) saveGame(sessionID string, slot int, name string) error {
	reqBody := map[string]any{}
	if slot > 0 {
		reqBody["slot"] = slot
	}
	if name != "" {
		reqBody["name"] = name
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := a.client.Post(
		a.baseURL+"/v1/sessions/"+sessionID+"/saves",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}
	return nil
}

func (a *apiClient) loadSave(sessionID string, slot int) (*handlers.SessionView, error) {
	resp, err := a.client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/saves/%d/load", a.baseURL, sessionID, slot),
		"application/json",
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return decodeSession(resp, http.StatusOK)
}
