package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipnote/config"
	"clipnote/storage"
)

type fakeHistory struct {
	items []string
}

func (f *fakeHistory) History() []string { return f.items }

type fakeStatus struct {
	running bool
}

func (f *fakeStatus) Running() bool { return f.running }

func setupTestServer(t *testing.T) (*Server, *fakeHistory) {
	t.Helper()

	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Clipboard: config.ClipboardConfig{HistorySize: 10, PollIntervalMs: 500},
		Hotkeys:   config.HotkeyConfig{ToggleDashboard: "ctrl+alt+s"},
		OpenAI:    config.OpenAIConfig{APIKey: "secret-key", Model: "gpt-4o-mini"},
		Web:       config.WebConfig{Enabled: true, Port: 8765, RefreshIntervalMs: 500},
	}

	history := &fakeHistory{items: []string{"newest", "older"}}
	return NewServer(db, cfg, history, &fakeStatus{running: true}), history
}

func TestHandleHistory(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Items []string `json:"items"`
		Count int      `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 || resp.Items[0] != "newest" {
		t.Errorf("unexpected history: %+v", resp)
	}
}

func TestHandleHistoryRejectsPost(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleHistory(rec, httptest.NewRequest(http.MethodPost, "/api/history", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestNotesCRUDOverHTTP(t *testing.T) {
	srv, _ := setupTestServer(t)

	// Create
	body, _ := json.Marshal(map[string]string{"content": "first note"})
	rec := httptest.NewRecorder()
	srv.handleNotes(rec, httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}

	var created storage.Note
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode created note: %v", err)
	}

	// Update
	body, _ = json.Marshal(map[string]string{"content": "revised"})
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notes/1", bytes.NewReader(body))
	srv.handleNoteByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", rec.Code)
	}

	// List
	rec = httptest.NewRecorder()
	srv.handleNotes(rec, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	var list struct {
		Notes []storage.Note `json:"notes"`
		Count int            `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.Count != 1 || list.Notes[0].Content != "revised" {
		t.Errorf("unexpected list: %+v", list)
	}

	// Delete
	rec = httptest.NewRecorder()
	srv.handleNoteByID(rec, httptest.NewRequest(http.MethodDelete, "/api/notes/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}

	// Deleting again reports not found.
	rec = httptest.NewRecorder()
	srv.handleNoteByID(rec, httptest.NewRequest(http.MethodDelete, "/api/notes/1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreateNoteRejectsBlank(t *testing.T) {
	srv, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"content": "   "})
	rec := httptest.NewRecorder()
	srv.handleNotes(rec, httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleConfigHidesAPIKey(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	raw := rec.Body.String()
	if bytes.Contains([]byte(raw), []byte("secret-key")) {
		t.Fatal("API key leaked into config response")
	}

	var resp struct {
		HasAPIKey bool `json:"hasApiKey"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.HasAPIKey {
		t.Error("hasApiKey = false, want true")
	}
}

func TestHandleStatus(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var resp struct {
		Tracking  bool `json:"tracking"`
		Dashboard bool `json:"dashboard"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Tracking {
		t.Error("tracking = false, want true")
	}
	if resp.Dashboard {
		t.Error("dashboard visible before any toggle")
	}

	if visible := srv.ToggleDashboard(); !visible {
		t.Error("ToggleDashboard returned false after first toggle")
	}
	if !srv.Visible() {
		t.Error("Visible() = false after toggle")
	}
}
