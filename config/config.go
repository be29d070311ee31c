// Package config loads and persists the clipnote TOML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Clipboard ClipboardConfig `toml:"clipboard"`
	Hotkeys   HotkeyConfig    `toml:"hotkeys"`
	Capture   CaptureConfig   `toml:"capture"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Web       WebConfig       `toml:"web"`
	Database  DatabaseConfig  `toml:"database"`
	Log       LogConfig       `toml:"log"`
}

type ClipboardConfig struct {
	HistorySize    int `toml:"history_size"`
	PollIntervalMs int `toml:"poll_interval_ms"`
	ErrorRetryMs   int `toml:"error_retry_ms"`
}

type HotkeyConfig struct {
	ToggleDashboard  string `toml:"toggle_dashboard"`
	SaveNote         string `toml:"save_note"`
	EnhanceClipboard string `toml:"enhance_clipboard"`
}

// CaptureConfig tunes the forced-copy selection capture. CopyDelayMs is a
// best-effort upper bound for the simulated Ctrl+C to land in the clipboard,
// not a guarantee; slow targets may still miss the window.
type CaptureConfig struct {
	CopyDelayMs    int `toml:"copy_delay_ms"`
	RestoreDelayMs int `toml:"restore_delay_ms"`
}

type OpenAIConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	MaxInputLength int     `toml:"max_input_length"`
	SystemPrompt   string  `toml:"system_prompt"`
}

type WebConfig struct {
	Enabled           bool `toml:"enabled"`
	Port              int  `toml:"port"`
	RefreshIntervalMs int  `toml:"refresh_interval_ms"`
}

type DatabaseConfig struct {
	Dir string `toml:"dir"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const defaultSystemPrompt = "You are a prompt enhancement assistant. Rewrite the user's prompt to be " +
	"clearer, more specific, and more effective, while preserving its intent. " +
	"Return only the enhanced prompt with no commentary."

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Clipboard: ClipboardConfig{
			HistorySize:    10,
			PollIntervalMs: 500,
			ErrorRetryMs:   1000,
		},
		Hotkeys: HotkeyConfig{
			ToggleDashboard:  "ctrl+alt+s",
			SaveNote:         "ctrl+alt+n",
			EnhanceClipboard: "ctrl+alt+e",
		},
		Capture: CaptureConfig{
			CopyDelayMs:    100,
			RestoreDelayMs: 100,
		},
		OpenAI: OpenAIConfig{
			APIKey:         "",
			Model:          "gpt-4o-mini",
			MaxTokens:      500,
			Temperature:    0.7,
			MaxInputLength: 2000,
			SystemPrompt:   defaultSystemPrompt,
		},
		Web: WebConfig{
			Enabled:           true,
			Port:              8765,
			RefreshIntervalMs: 500,
		},
		Database: DatabaseConfig{
			Dir: "",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Dir returns the clipnote configuration directory, creating it if needed.
func Dir() (string, error) {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}

	dir := filepath.Join(base, "clipnote")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the TOML file.
// If the file doesn't exist, it creates it with default values.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := save(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Load existing config
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.clamp()
	return cfg, nil
}

// Save writes the configuration back to the TOML file.
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return save(configPath, c)
}

func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// clamp pulls out-of-range values back to their defaults so a hand-edited
// config cannot put the poller into a busy loop or grow history unbounded.
func (c *Config) clamp() {
	def := defaultConfig()

	if c.Clipboard.HistorySize < 1 || c.Clipboard.HistorySize > 50 {
		slog.Warn("clipboard.history_size out of range, using default",
			"value", c.Clipboard.HistorySize, "default", def.Clipboard.HistorySize)
		c.Clipboard.HistorySize = def.Clipboard.HistorySize
	}
	if c.Clipboard.PollIntervalMs < 100 || c.Clipboard.PollIntervalMs > 5000 {
		slog.Warn("clipboard.poll_interval_ms out of range, using default",
			"value", c.Clipboard.PollIntervalMs, "default", def.Clipboard.PollIntervalMs)
		c.Clipboard.PollIntervalMs = def.Clipboard.PollIntervalMs
	}
	if c.Clipboard.ErrorRetryMs < c.Clipboard.PollIntervalMs {
		c.Clipboard.ErrorRetryMs = def.Clipboard.ErrorRetryMs
	}
	if c.Capture.CopyDelayMs < 10 || c.Capture.CopyDelayMs > 2000 {
		c.Capture.CopyDelayMs = def.Capture.CopyDelayMs
	}
	if c.Web.RefreshIntervalMs < 100 || c.Web.RefreshIntervalMs > 10000 {
		c.Web.RefreshIntervalMs = def.Web.RefreshIntervalMs
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		c.Web.Port = def.Web.Port
	}
}

// PollInterval returns the clipboard polling interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Clipboard.PollIntervalMs) * time.Millisecond
}

// ErrorRetry returns the sleep applied after a failed clipboard read.
func (c *Config) ErrorRetry() time.Duration {
	return time.Duration(c.Clipboard.ErrorRetryMs) * time.Millisecond
}

// CopyDelay returns the wait applied after a simulated copy keystroke.
func (c *Config) CopyDelay() time.Duration {
	return time.Duration(c.Capture.CopyDelayMs) * time.Millisecond
}
