package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/chatstore"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/middleware"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/storage/memory"
)

func newChatTestServer(t *testing.T) (*chi.Mux, uuid.UUID) {
	t.Helper()

	docs := memory.NewStore()
	manager := chatstore.NewManager(docs, nil)
	handler := NewChatHandler(manager, nil, nil, nil, nil, nil, t.TempDir())

	userID := uuid.New()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/chat/sessions", handler.ListSessions)
	r.Post("/chat/sessions", handler.CreateSession)
	r.Delete("/chat/sessions/{id}", handler.DeleteSession)
	r.Get("/chat/sessions/{id}/messages", handler.GetMessages)
	r.Put("/chat/sessions/{id}/title", handler.UpdateTitle)
	r.Put("/chat/current-session", handler.SetCurrentSession)
	r.Get("/chat/current-session", handler.GetCurrentSession)

	return r, userID
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateSessionEndpoint(t *testing.T) {
	r, _ := newChatTestServer(t)

	rr := doJSON(t, r, http.MethodPost, "/chat/sessions", models.CreateSessionRequest{})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var info models.SessionInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.ID == "" {
		t.Error("Expected a server-assigned session id")
	}
	if info.Title != models.DefaultSessionTitle {
		t.Errorf("Expected default title, got %q", info.Title)
	}
	if info.MessageCount != 0 {
		t.Errorf("New session must be empty, got %d messages", info.MessageCount)
	}
}

func TestListSessionsEndpoint(t *testing.T) {
	r, _ := newChatTestServer(t)

	doJSON(t, r, http.MethodPost, "/chat/sessions", models.CreateSessionRequest{Title: "First"})
	doJSON(t, r, http.MethodPost, "/chat/sessions", models.CreateSessionRequest{Title: "Second"})

	rr := doJSON(t, r, http.MethodGet, "/chat/sessions", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Sessions         []models.SessionInfo `json:"sessions"`
		CurrentSessionID string               `json:"current_session_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(resp.Sessions))
	}
	if resp.CurrentSessionID != resp.Sessions[0].ID {
		t.Error("Current session must be the first listed session after a fetch")
	}
}

func TestDeleteSessionEndpoint_NotFound(t *testing.T) {
	r, _ := newChatTestServer(t)

	// The mirror has no such session, so the not-found comes from the local
	// check before any remote call.
	doJSON(t, r, http.MethodPost, "/chat/sessions", nil)
	rr := doJSON(t, r, http.MethodGet, "/chat/sessions/missing/messages", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND error code, got %q", resp.Error.Code)
	}
}

func TestUpdateTitleEndpoint(t *testing.T) {
	r, _ := newChatTestServer(t)

	rr := doJSON(t, r, http.MethodPost, "/chat/sessions", nil)
	var info models.SessionInfo
	json.Unmarshal(rr.Body.Bytes(), &info)

	rr = doJSON(t, r, http.MethodPut, "/chat/sessions/"+info.ID+"/title", models.UpdateTitleRequest{Title: "Dharma talk"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var updated models.SessionInfo
	json.Unmarshal(rr.Body.Bytes(), &updated)
	if updated.Title != "Dharma talk" {
		t.Errorf("Expected renamed session, got %q", updated.Title)
	}
}

func TestUpdateTitleEndpoint_EmptyTitle(t *testing.T) {
	r, _ := newChatTestServer(t)

	rr := doJSON(t, r, http.MethodPost, "/chat/sessions", nil)
	var info models.SessionInfo
	json.Unmarshal(rr.Body.Bytes(), &info)

	rr = doJSON(t, r, http.MethodPut, "/chat/sessions/"+info.ID+"/title", models.UpdateTitleRequest{Title: "   "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for blank title, got %d", rr.Code)
	}
}

func TestCurrentSessionEndpoints(t *testing.T) {
	r, _ := newChatTestServer(t)

	rr := doJSON(t, r, http.MethodPost, "/chat/sessions", nil)
	var info models.SessionInfo
	json.Unmarshal(rr.Body.Bytes(), &info)

	// New session becomes current automatically.
	rr = doJSON(t, r, http.MethodGet, "/chat/current-session", nil)
	var current struct {
		Session *models.SessionInfo `json:"session"`
	}
	json.Unmarshal(rr.Body.Bytes(), &current)
	if current.Session == nil || current.Session.ID != info.ID {
		t.Fatal("Expected the new session to be current")
	}

	// Clearing the selection.
	rr = doJSON(t, r, http.MethodPut, "/chat/current-session", models.SelectSessionRequest{SessionID: nil})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, r, http.MethodGet, "/chat/current-session", nil)
	json.Unmarshal(rr.Body.Bytes(), &current)
	if current.Session != nil {
		t.Error("Expected no current session after clearing")
	}
}

func TestDeleteSessionEndpoint(t *testing.T) {
	r, _ := newChatTestServer(t)

	rr := doJSON(t, r, http.MethodPost, "/chat/sessions", nil)
	var info models.SessionInfo
	json.Unmarshal(rr.Body.Bytes(), &info)

	rr = doJSON(t, r, http.MethodDelete, "/chat/sessions/"+info.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		CurrentSessionID string `json:"current_session_id"`
	}
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.CurrentSessionID != "" {
		t.Errorf("Deleting the only session must clear current, got %q", resp.CurrentSessionID)
	}
}
