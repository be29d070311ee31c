// Package enhance rewrites text through an LLM to make it a clearer, more
// effective prompt. Calls are blocking network I/O and must be made from
// short-lived worker goroutines, never the clipboard or hotkey workers.
package enhance

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("enhancement provider not configured")
	// ErrEmptyInput is returned for blank input text.
	ErrEmptyInput = errors.New("empty text provided for enhancement")
	// ErrInputTooLong is returned when input exceeds the configured limit.
	ErrInputTooLong = errors.New("text too long for enhancement")
)

// Enhancer turns a rough prompt into an enhanced one.
type Enhancer interface {
	Enhance(ctx context.Context, text string) (string, error)
	Name() string
}
