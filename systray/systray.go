// Package systray puts clipnote in the notification area with a small
// control menu. Actions are reported through the Actions callbacks so the
// menu goroutine never touches application state directly.
package systray

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/getlantern/systray"
)

// Actions are invoked from the menu goroutine when the user clicks an item.
// All callbacks are optional.
type Actions struct {
	// ToggleTracking pauses or resumes clipboard tracking and returns
	// whether tracking is now running.
	ToggleTracking func() bool
	// ClearHistory wipes the in-memory clipboard history.
	ClearHistory func()
}

// Manager manages the system tray icon and menu.
type Manager struct {
	webPort  int
	iconData []byte
	actions  Actions
	quit     chan struct{}
}

// NewManager creates a tray manager. Run must be called from the main
// goroutine on platforms that require it.
func NewManager(webPort int, iconData []byte, actions Actions) *Manager {
	return &Manager{
		webPort:  webPort,
		iconData: iconData,
		actions:  actions,
		quit:     make(chan struct{}),
	}
}

// Run starts the system tray (blocking call).
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop removes the tray icon.
func (m *Manager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel closed when the user clicks Quit.
func (m *Manager) WaitForQuit() <-chan struct{} {
	return m.quit
}

func (m *Manager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}

	systray.SetTitle("Clipnote")
	systray.SetTooltip("Clipnote - Clipboard History & Notes")

	mOpenDashboard := systray.AddMenuItem("Open Dashboard", "Open the clipnote dashboard")
	mToggleTracking := systray.AddMenuItem("Pause Tracking", "Pause clipboard tracking")
	mClearHistory := systray.AddMenuItem("Clear Clipboard History", "Forget all tracked clipboard entries")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit clipnote")

	go func() {
		for {
			select {
			case <-mOpenDashboard.ClickedCh:
				m.openDashboard()
			case <-mToggleTracking.ClickedCh:
				if m.actions.ToggleTracking == nil {
					continue
				}
				if m.actions.ToggleTracking() {
					mToggleTracking.SetTitle("Pause Tracking")
				} else {
					mToggleTracking.SetTitle("Resume Tracking")
				}
			case <-mClearHistory.ClickedCh:
				if m.actions.ClearHistory != nil {
					m.actions.ClearHistory()
				}
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

func (m *Manager) onExit() {
	slog.Info("System tray exited")
}

// openDashboard opens the dashboard in the default browser.
func (m *Manager) openDashboard() {
	url := fmt.Sprintf("http://localhost:%d", m.webPort)
	slog.Info("Opening dashboard", "url", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open dashboard", "error", err)
	}
}
