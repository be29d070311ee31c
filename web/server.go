// Package web serves the local dashboard API and pushes live updates to
// connected browsers over WebSockets.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clipnote/config"
	"clipnote/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local-only server
	},
}

// HistorySource provides a snapshot of the clipboard history.
type HistorySource interface {
	History() []string
}

// StatusSource reports whether background tracking is running.
type StatusSource interface {
	Running() bool
}

// Server is the dashboard HTTP server.
type Server struct {
	db      *storage.DB
	history HistorySource
	status  StatusSource
	port    int
	hub     *Hub
	httpSrv *http.Server

	mu      sync.RWMutex
	config  *config.Config
	visible bool
}

// NewServer creates a dashboard server. The hub starts immediately; the
// listener starts on Start.
func NewServer(db *storage.DB, cfg *config.Config, history HistorySource, status StatusSource) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		db:      db,
		config:  cfg,
		history: history,
		status:  status,
		port:    cfg.Web.Port,
		hub:     hub,
	}
}

// Start starts the HTTP listener. Blocks until the server stops.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/notes", s.handleNotes)
	mux.HandleFunc("/api/notes/", s.handleNoteByID)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}

	slog.Info("Starting dashboard server", "url", fmt.Sprintf("http://localhost:%d", s.port))

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// GetConfig returns the current configuration (thread-safe).
func (s *Server) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// ToggleDashboard flips the dashboard-visible flag and notifies clients.
// Returns the new visibility.
func (s *Server) ToggleDashboard() bool {
	s.mu.Lock()
	s.visible = !s.visible
	visible := s.visible
	s.mu.Unlock()

	s.hub.BroadcastMessage(Message{
		Type: MessageTypeDashboard,
		Data: map[string]bool{"visible": visible},
	})
	return visible
}

// Visible reports whether the dashboard is currently shown.
func (s *Server) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// BroadcastHistory pushes the current clipboard history to all clients.
func (s *Server) BroadcastHistory(history []string) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeHistory,
		Data: map[string]any{
			"items":     history,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// BroadcastNote pushes a saved note to all clients.
func (s *Server) BroadcastNote(n storage.Note) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeNote,
		Data: n,
	})
}

// BroadcastStatus pushes a status string to all clients.
func (s *Server) BroadcastStatus(status string) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: map[string]string{"status": status},
	})
}

// handleWebSocket upgrades the connection and registers it with the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
