// Package platform abstracts the OS clipboard, the global keyboard hook, and
// synthetic key injection behind small interfaces so the tracking and dispatch
// layers can be exercised without a desktop session.
package platform

import "errors"

// ErrUnsupported is returned by operations that have no implementation on the
// current platform.
var ErrUnsupported = errors.New("operation not supported on this platform")

// ErrNoText is returned when the clipboard holds no textual content.
var ErrNoText = errors.New("clipboard does not contain text")

// Clipboard provides access to the system clipboard. Both calls may fail
// transiently when another process holds the clipboard open.
type Clipboard interface {
	Get() (string, error)
	Set(text string) error
}

// Hook is a system-wide keyboard hook matching a dynamic set of key combos.
// onFire runs on the hook's own goroutine, never the application loop.
type Hook interface {
	// Install activates the OS-level hook. Combos added before Install are
	// armed as part of the call.
	Install(onFire func(Combo)) error
	// Add arms a combo. Safe to call before or after Install.
	Add(combo Combo) error
	// Remove disarms a combo. No-op if the combo was never added.
	Remove(combo Combo)
	// Uninstall deactivates the hook and disarms every combo.
	Uninstall()
}

// Keys simulates keyboard chords in the focused application.
type Keys interface {
	// SendCopy injects Ctrl+C to copy the current selection.
	SendCopy() error
	// SendPaste injects Ctrl+V.
	SendPaste() error
}
