package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Clipboard.HistorySize != 10 {
		t.Errorf("history_size = %d, want 10", cfg.Clipboard.HistorySize)
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Errorf("poll interval = %v, want 500ms", cfg.PollInterval())
	}
	if cfg.Hotkeys.ToggleDashboard != "ctrl+alt+s" {
		t.Errorf("toggle_dashboard = %q", cfg.Hotkeys.ToggleDashboard)
	}
	if cfg.Hotkeys.SaveNote != "ctrl+alt+n" {
		t.Errorf("save_note = %q", cfg.Hotkeys.SaveNote)
	}
	if cfg.OpenAI.Model == "" || cfg.OpenAI.SystemPrompt == "" {
		t.Error("OpenAI defaults not populated")
	}
	if !cfg.Web.Enabled || cfg.Web.Port != 8765 {
		t.Errorf("web defaults = %v port %d", cfg.Web.Enabled, cfg.Web.Port)
	}
}

func TestClampOutOfRangeValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.Clipboard.HistorySize = 0
	cfg.Clipboard.PollIntervalMs = 1
	cfg.Capture.CopyDelayMs = 99999
	cfg.Web.Port = -1

	cfg.clamp()

	def := defaultConfig()
	if cfg.Clipboard.HistorySize != def.Clipboard.HistorySize {
		t.Errorf("history_size = %d, want default %d", cfg.Clipboard.HistorySize, def.Clipboard.HistorySize)
	}
	if cfg.Clipboard.PollIntervalMs != def.Clipboard.PollIntervalMs {
		t.Errorf("poll_interval_ms = %d, want default %d", cfg.Clipboard.PollIntervalMs, def.Clipboard.PollIntervalMs)
	}
	if cfg.Capture.CopyDelayMs != def.Capture.CopyDelayMs {
		t.Errorf("copy_delay_ms = %d, want default %d", cfg.Capture.CopyDelayMs, def.Capture.CopyDelayMs)
	}
	if cfg.Web.Port != def.Web.Port {
		t.Errorf("web port = %d, want default %d", cfg.Web.Port, def.Web.Port)
	}
}

func TestClampLeavesValidValuesAlone(t *testing.T) {
	cfg := defaultConfig()
	cfg.Clipboard.HistorySize = 25
	cfg.Clipboard.PollIntervalMs = 250
	cfg.Clipboard.ErrorRetryMs = 2000

	cfg.clamp()

	if cfg.Clipboard.HistorySize != 25 {
		t.Errorf("history_size = %d, want 25", cfg.Clipboard.HistorySize)
	}
	if cfg.Clipboard.PollIntervalMs != 250 {
		t.Errorf("poll_interval_ms = %d, want 250", cfg.Clipboard.PollIntervalMs)
	}
	if cfg.Clipboard.ErrorRetryMs != 2000 {
		t.Errorf("error_retry_ms = %d, want 2000", cfg.Clipboard.ErrorRetryMs)
	}
}

func TestErrorRetryNeverShorterThanPoll(t *testing.T) {
	cfg := defaultConfig()
	cfg.Clipboard.PollIntervalMs = 1000
	cfg.Clipboard.ErrorRetryMs = 200

	cfg.clamp()

	if cfg.Clipboard.ErrorRetryMs < cfg.Clipboard.PollIntervalMs {
		t.Errorf("error_retry_ms = %d shorter than poll %d", cfg.Clipboard.ErrorRetryMs, cfg.Clipboard.PollIntervalMs)
	}
}
