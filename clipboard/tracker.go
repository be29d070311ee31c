// Package clipboard polls the system clipboard and maintains a bounded
// most-recent-first history of unique text values.
package clipboard

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"clipnote/lifecycle"
	"clipnote/platform"
)

// Callback receives the new clipboard text on every observed change. It runs
// on the polling goroutine; UI mutations must be routed through the bridge.
type Callback func(text string)

type callbackEntry struct {
	id int
	fn Callback
}

// Options tunes the tracker. Zero values fall back to sensible defaults.
type Options struct {
	// HistorySize bounds the history; older entries are evicted.
	HistorySize int
	// PollInterval is the sleep between clipboard reads. Shorter intervals
	// lower change-detection latency at the cost of CPU; this is the
	// tunable trade-off, not a hidden constant.
	PollInterval time.Duration
	// ErrorRetry is the longer sleep applied after a failed read.
	ErrorRetry time.Duration
	// JoinTimeout bounds how long Stop waits for the poller to exit.
	JoinTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.HistorySize <= 0 {
		o.HistorySize = 10
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	if o.ErrorRetry <= 0 {
		o.ErrorRetry = time.Second
	}
	if o.JoinTimeout <= 0 {
		o.JoinTimeout = time.Second
	}
}

// Tracker watches the OS clipboard on a dedicated goroutine. The poller is
// the sole writer of history; other goroutines read through snapshot copies.
type Tracker struct {
	clip platform.Clipboard
	opts Options

	mu      sync.Mutex // guards history and current
	history []string
	current string

	cbMu      sync.Mutex // guards callbacks; never held across an invocation
	callbacks []callbackEntry
	nextCBID  int

	stateMu sync.Mutex
	state   lifecycle.State
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a tracker over the given clipboard.
func New(clip platform.Clipboard, opts Options) *Tracker {
	opts.applyDefaults()
	return &Tracker{clip: clip, opts: opts}
}

// AddCallback registers fn to be invoked on every clipboard change, after
// any previously registered callbacks. It returns a token for RemoveCallback.
func (t *Tracker) AddCallback(fn Callback) int {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.nextCBID++
	t.callbacks = append(t.callbacks, callbackEntry{id: t.nextCBID, fn: fn})
	return t.nextCBID
}

// RemoveCallback unregisters the callback identified by id. Unknown ids are
// ignored.
func (t *Tracker) RemoveCallback(id int) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = slices.DeleteFunc(t.callbacks, func(e callbackEntry) bool {
		return e.id == id
	})
}

// Start begins polling on a new goroutine. Calling Start while the tracker
// is already running is a no-op.
func (t *Tracker) Start() {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if t.state != lifecycle.Stopped {
		return
	}
	t.state = lifecycle.Starting
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})

	go t.run(t.stopCh, t.doneCh)

	t.state = lifecycle.Running
	slog.Info("clipboard tracking started", "poll_interval", t.opts.PollInterval)
}

// Stop asks the poller to exit and waits up to JoinTimeout for it. A poller
// stuck in a slow OS call is abandoned rather than force-killed; it will
// exit on its next iteration. Safe to call repeatedly or before Start.
func (t *Tracker) Stop() {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if t.state != lifecycle.Running {
		return
	}
	t.state = lifecycle.Stopping
	close(t.stopCh)

	select {
	case <-t.doneCh:
	case <-time.After(t.opts.JoinTimeout):
		slog.Warn("clipboard poller did not stop in time, abandoning")
	}

	t.state = lifecycle.Stopped
	slog.Info("clipboard tracking stopped")
}

// State returns the tracker's lifecycle state.
func (t *Tracker) State() lifecycle.State {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	return t.state
}

// History returns a snapshot copy of the history, most recent first.
func (t *Tracker) History() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.history)
}

// HistoryItem returns the history entry at index i (0 = most recent).
func (t *Tracker) HistoryItem(i int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.history) {
		return "", false
	}
	return t.history[i], true
}

// ClearHistory drops all history entries. The last-observed value is kept so
// clearing does not re-trigger a change for the current clipboard content.
func (t *Tracker) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
}

// Current reads the OS clipboard directly, bypassing the history.
func (t *Tracker) Current() (string, error) {
	text, err := t.clip.Get()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

// Copy writes text to the OS clipboard and mirrors it into the last-observed
// value so the next poll does not report the programmatic write as an
// external change.
func (t *Tracker) Copy(text string) error {
	if err := t.clip.Set(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	t.mu.Lock()
	t.current = text
	t.mu.Unlock()
	return nil
}

// run is the polling loop. All failures are terminal only to the current
// iteration, never to the loop.
func (t *Tracker) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	t.seed()

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		text, err := t.clip.Get()
		if err != nil {
			if errors.Is(err, platform.ErrNoText) {
				// Non-text content reads as empty; not an error condition.
				text = ""
			} else {
				slog.Warn("clipboard read failed", "error", err)
				if !t.sleep(stopCh, t.opts.ErrorRetry) {
					return
				}
				continue
			}
		}

		t.observe(text)

		if !t.sleep(stopCh, t.opts.PollInterval) {
			return
		}
	}
}

// seed initializes the last-observed value with the current clipboard
// contents so the next external change, not the pre-existing value, triggers
// the first notification. Non-blank initial content still lands in history.
func (t *Tracker) seed() {
	text, err := t.clip.Get()
	if err != nil {
		if !errors.Is(err, platform.ErrNoText) {
			slog.Warn("failed to read initial clipboard content", "error", err)
		}
		return
	}

	t.mu.Lock()
	t.current = text
	if strings.TrimSpace(text) != "" {
		t.pushLocked(text)
	}
	t.mu.Unlock()
}

// observe compares text against the last-observed value and updates history
// and subscribers accordingly.
func (t *Tracker) observe(text string) {
	t.mu.Lock()
	if text == t.current {
		t.mu.Unlock()
		return
	}
	t.current = text

	notify := strings.TrimSpace(text) != ""
	if notify {
		t.pushLocked(text)
	}
	t.mu.Unlock()

	// The lock is released before callbacks run so a callback may call back
	// into History or Current without deadlocking.
	if notify {
		t.notify(text)
	}
}

// pushLocked applies the dedupe-prepend-truncate rule. Caller holds t.mu.
func (t *Tracker) pushLocked(text string) {
	if i := slices.Index(t.history, text); i >= 0 {
		t.history = slices.Delete(t.history, i, i+1)
	}
	t.history = slices.Insert(t.history, 0, text)
	if len(t.history) > t.opts.HistorySize {
		t.history = t.history[:t.opts.HistorySize]
	}
}

// notify invokes callbacks in registration order. A panicking callback is
// logged and must not prevent the remaining callbacks from running.
func (t *Tracker) notify(text string) {
	t.cbMu.Lock()
	callbacks := slices.Clone(t.callbacks)
	t.cbMu.Unlock()

	for _, entry := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("clipboard callback panicked", "callback_id", entry.id, "panic", r)
				}
			}()
			entry.fn(text)
		}()
	}
}

// sleep waits for d or until stop is requested. Returns false on stop.
func (t *Tracker) sleep(stopCh <-chan struct{}, d time.Duration) bool {
	select {
	case <-stopCh:
		return false
	case <-time.After(d):
		return true
	}
}
