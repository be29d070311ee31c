package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"clipnote/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleHistory returns the in-memory clipboard history, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	items := s.history.History()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// handleNotes handles listing and creating notes.
func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListNotes(w, r)
	case http.MethodPost:
		s.handleCreateNote(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.db.Notes()
	if err != nil {
		slog.Error("Failed to list notes", "error", err)
		http.Error(w, "Failed to list notes", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
		"count": len(notes),
	})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.db.AddNote(req.Content)
	if err != nil {
		slog.Error("Failed to create note", "error", err)
		http.Error(w, "Failed to create note", http.StatusBadRequest)
		return
	}

	note, err := s.db.Note(id)
	if err != nil {
		slog.Error("Failed to read back note", "error", err, "id", id)
		http.Error(w, "Failed to create note", http.StatusInternalServerError)
		return
	}

	s.BroadcastNote(note)
	writeJSON(w, http.StatusCreated, note)
}

// handleNoteByID handles GET, PUT and DELETE for /api/notes/{id}.
func (s *Server) handleNoteByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/notes/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid note ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		note, err := s.db.Note(id)
		if errors.Is(err, storage.ErrNoteNotFound) {
			http.Error(w, "Note not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Failed to get note", "error", err, "id", id)
			http.Error(w, "Failed to get note", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, note)

	case http.MethodPut:
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		err := s.db.UpdateNote(id, req.Content)
		if errors.Is(err, storage.ErrNoteNotFound) {
			http.Error(w, "Note not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Failed to update note", "error", err, "id", id)
			http.Error(w, "Failed to update note", http.StatusBadRequest)
			return
		}

		note, err := s.db.Note(id)
		if err != nil {
			slog.Error("Failed to read back note", "error", err, "id", id)
			http.Error(w, "Failed to update note", http.StatusInternalServerError)
			return
		}
		s.BroadcastNote(note)
		writeJSON(w, http.StatusOK, note)

	case http.MethodDelete:
		err := s.db.DeleteNote(id)
		if errors.Is(err, storage.ErrNoteNotFound) {
			http.Error(w, "Note not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Failed to delete note", "error", err, "id", id)
			http.Error(w, "Failed to delete note", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleConfig returns a sanitized view of the configuration. API keys are
// reported as present or absent, never echoed.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.GetConfig()

	sanitized := struct {
		HistorySize       int    `json:"historySize"`
		PollIntervalMs    int    `json:"pollIntervalMs"`
		ToggleDashboard   string `json:"toggleDashboard"`
		SaveNote          string `json:"saveNote"`
		EnhanceClipboard  string `json:"enhanceClipboard"`
		Model             string `json:"model"`
		HasAPIKey         bool   `json:"hasApiKey"`
		WebPort           int    `json:"webPort"`
		RefreshIntervalMs int    `json:"refreshIntervalMs"`
	}{
		HistorySize:       cfg.Clipboard.HistorySize,
		PollIntervalMs:    cfg.Clipboard.PollIntervalMs,
		ToggleDashboard:   cfg.Hotkeys.ToggleDashboard,
		SaveNote:          cfg.Hotkeys.SaveNote,
		EnhanceClipboard:  cfg.Hotkeys.EnhanceClipboard,
		Model:             cfg.OpenAI.Model,
		HasAPIKey:         cfg.OpenAI.APIKey != "",
		WebPort:           cfg.Web.Port,
		RefreshIntervalMs: cfg.Web.RefreshIntervalMs,
	}

	writeJSON(w, http.StatusOK, sanitized)
}

// handleStatus reports tracker state and note count.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, err := s.db.NoteCount()
	if err != nil {
		slog.Error("Failed to count notes", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tracking":  s.status.Running(),
		"dashboard": s.Visible(),
		"notes":     count,
	})
}
