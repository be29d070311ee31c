package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipnote/bridge"
	"clipnote/clipboard"
	"clipnote/config"
	"clipnote/enhance"
	"clipnote/hotkey"
	"clipnote/platform"
	"clipnote/service"
	"clipnote/storage"
	"clipnote/systray"
	"clipnote/web"
)

// Bridge action names. Hotkey and tray callbacks enqueue these; the
// application loop executes the matching handlers.
const (
	actionToggleDashboard  = "toggle_dashboard"
	actionSaveNote         = "save_note"
	actionEnhanceClipboard = "enhance_clipboard"
	actionEnhanceDone      = "enhance_done"
	actionRefresh          = "refresh"
)

// App owns every subsystem and wires them together.
type App struct {
	cfg         *config.Config
	db          *storage.DB
	tracker     *clipboard.Tracker
	dispatcher  *hotkey.Dispatcher
	coordinator *service.Coordinator
	bridge      *bridge.Bridge
	enhancer    enhance.Enhancer
	server      *web.Server
	tray        *systray.Manager
	keys        platform.Keys

	enhanceMu     sync.Mutex
	enhanceResult string
}

// NewApp builds the application from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	dbDir := cfg.Database.Dir
	if dbDir == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dbDir = dir
	}

	db, err := storage.Open(dbDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	tracker := clipboard.New(platform.NewClipboard(), clipboard.Options{
		HistorySize:  cfg.Clipboard.HistorySize,
		PollInterval: cfg.PollInterval(),
		ErrorRetry:   cfg.ErrorRetry(),
	})

	dispatcher := hotkey.New(platform.NewHook(), hotkey.Options{})
	coordinator := service.New(tracker, dispatcher, service.Options{})

	app := &App{
		cfg:         cfg,
		db:          db,
		tracker:     tracker,
		dispatcher:  dispatcher,
		coordinator: coordinator,
		bridge:      bridge.New(0),
		keys:        platform.NewKeys(),
		enhancer: enhance.NewOpenAI(enhance.Options{
			APIKey:         cfg.OpenAI.APIKey,
			Model:          cfg.OpenAI.Model,
			SystemPrompt:   cfg.OpenAI.SystemPrompt,
			MaxTokens:      cfg.OpenAI.MaxTokens,
			Temperature:    cfg.OpenAI.Temperature,
			MaxInputLength: cfg.OpenAI.MaxInputLength,
		}),
	}

	if cfg.Web.Enabled {
		app.server = web.NewServer(db, cfg, tracker, coordinator)
	}

	app.tray = systray.NewManager(cfg.Web.Port, nil, systray.Actions{
		ToggleTracking: app.toggleTracking,
		ClearHistory:   app.clearHistory,
	})

	return app, nil
}

// Run wires handlers, starts the background service, and drives the bridge
// loop on the calling goroutine until ctx is canceled or the user quits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.registerHandlers()
	a.registerHotkeys()

	a.tracker.AddCallback(func(text string) {
		// Runs on the poller; hand the UI refresh to the application loop.
		a.bridge.TryTrigger(actionRefresh)
	})

	a.coordinator.Start()

	if a.server != nil {
		go func() {
			if err := a.server.Start(); err != nil {
				slog.Error("Dashboard server stopped", "error", err)
			}
		}()
	}

	go a.tray.Run()
	go func() {
		select {
		case <-a.tray.WaitForQuit():
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("clipnote started",
		"history_size", a.cfg.Clipboard.HistorySize,
		"hotkeys", a.dispatcher.Bindings())

	a.bridge.Run(ctx)

	a.shutdown()
	return nil
}

func (a *App) registerHandlers() {
	a.bridge.Handle(actionToggleDashboard, a.onToggleDashboard)
	a.bridge.Handle(actionSaveNote, a.onSaveNote)
	a.bridge.Handle(actionEnhanceClipboard, a.onEnhanceClipboard)
	a.bridge.Handle(actionEnhanceDone, a.onEnhanceDone)
	a.bridge.Handle(actionRefresh, a.onRefresh)
}

// registerHotkeys binds the configured chords. Callbacks run on the hook's
// goroutine and must only enqueue, never block.
func (a *App) registerHotkeys() {
	chords := map[string]struct {
		action      string
		description string
	}{
		a.cfg.Hotkeys.ToggleDashboard:  {actionToggleDashboard, "show or hide the dashboard"},
		a.cfg.Hotkeys.SaveNote:         {actionSaveNote, "save current selection as a note"},
		a.cfg.Hotkeys.EnhanceClipboard: {actionEnhanceClipboard, "enhance clipboard text with AI"},
	}

	for chord, h := range chords {
		if chord == "" {
			continue
		}
		if !a.dispatcher.Validate(chord) {
			slog.Warn("configured hotkey is not a valid chord, skipping", "chord", chord)
			continue
		}
		action := h.action
		a.dispatcher.Register(chord, func() {
			a.bridge.TryTrigger(action)
		}, h.description)
	}
}

// onToggleDashboard flips dashboard visibility.
func (a *App) onToggleDashboard() {
	if a.server == nil {
		slog.Warn("dashboard toggle requested but web server is disabled")
		return
	}
	visible := a.server.ToggleDashboard()
	slog.Info("dashboard toggled", "visible", visible)
}

// onSaveNote captures the current selection via a forced copy and persists
// it as a note. Falls back to the existing clipboard content when the copy
// produces nothing new.
func (a *App) onSaveNote() {
	text := a.captureSelection()
	if strings.TrimSpace(text) == "" {
		slog.Warn("nothing to save, selection and clipboard are empty")
		return
	}

	id, err := a.db.AddNote(text)
	if err != nil {
		slog.Error("Failed to save note", "error", err)
		return
	}
	slog.Info("note saved", "id", id, "chars", len(text))

	if a.server != nil {
		if note, err := a.db.Note(id); err == nil {
			a.server.BroadcastNote(note)
		}
	}
}

// captureSelection simulates Ctrl+C in the focused application, waits the
// configured best-effort delay, and reads the clipboard. The pre-capture
// clipboard content is the fallback when the selection was empty, and is
// restored afterwards so the capture leaves no trace.
func (a *App) captureSelection() string {
	original, err := a.tracker.Current()
	if err != nil {
		slog.Warn("failed to read clipboard before capture", "error", err)
		original = ""
	}

	if err := a.keys.SendCopy(); err != nil {
		slog.Warn("failed to send copy keystroke, using clipboard content", "error", err)
		return original
	}

	// Best-effort window for the target application to service the copy.
	time.Sleep(a.cfg.CopyDelay())

	captured, err := a.tracker.Current()
	if err != nil || strings.TrimSpace(captured) == "" {
		return original
	}

	if captured != original && original != "" {
		time.Sleep(time.Duration(a.cfg.Capture.RestoreDelayMs) * time.Millisecond)
		if err := a.tracker.Copy(original); err != nil {
			slog.Warn("failed to restore clipboard after capture", "error", err)
		}
	}

	return captured
}

// onEnhanceClipboard sends the clipboard text to the enhancer on its own
// goroutine so the bridge loop stays responsive during the network call. The
// result comes back through the bridge like any other background event.
func (a *App) onEnhanceClipboard() {
	text, err := a.tracker.Current()
	if err != nil {
		slog.Error("Failed to read clipboard for enhancement", "error", err)
		return
	}

	reqID := uuid.NewString()
	slog.Info("enhancement requested", "request_id", reqID, "chars", len(text))
	if a.server != nil {
		a.server.BroadcastStatus("enhancing")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()

		enhanced, err := a.enhancer.Enhance(ctx, text)
		if err != nil {
			slog.Error("Enhancement failed", "request_id", reqID, "error", err)
			if a.server != nil {
				a.server.BroadcastStatus("enhance_failed")
			}
			return
		}

		slog.Info("enhancement finished", "request_id", reqID, "provider", a.enhancer.Name(), "chars", len(enhanced))

		a.enhanceMu.Lock()
		a.enhanceResult = enhanced
		a.enhanceMu.Unlock()
		a.bridge.Trigger(actionEnhanceDone)
	}()
}

// onEnhanceDone applies the latest enhancement result on the application
// loop.
func (a *App) onEnhanceDone() {
	a.enhanceMu.Lock()
	enhanced := a.enhanceResult
	a.enhanceResult = ""
	a.enhanceMu.Unlock()

	if enhanced == "" {
		return
	}

	if err := a.tracker.Copy(enhanced); err != nil {
		slog.Error("Failed to write enhanced text to clipboard", "error", err)
		return
	}

	if a.server != nil {
		a.server.BroadcastStatus("enhanced")
	}
}

// onRefresh pushes the current history snapshot to dashboard clients.
func (a *App) onRefresh() {
	if a.server == nil {
		return
	}
	a.server.BroadcastHistory(a.tracker.History())
}

// toggleTracking is called from the tray menu goroutine.
func (a *App) toggleTracking() bool {
	if a.coordinator.Running() {
		a.coordinator.Stop()
	} else {
		a.coordinator.Start()
	}
	return a.coordinator.Running()
}

// clearHistory is called from the tray menu goroutine.
func (a *App) clearHistory() {
	a.tracker.ClearHistory()
	a.bridge.TryTrigger(actionRefresh)
}

func (a *App) shutdown() {
	slog.Info("clipnote shutting down")

	a.coordinator.Stop()

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Warn("dashboard server shutdown failed", "error", err)
		}
	}

	a.tray.Stop()

	if err := a.db.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}

	slog.Info("clipnote stopped")
}
