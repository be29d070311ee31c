// Package hotkey registers system-wide key chords and dispatches their
// callbacks when they fire, independent of which application has focus.
package hotkey

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"clipnote/lifecycle"
	"clipnote/platform"
)

type binding struct {
	combo       platform.Combo
	callback    func()
	description string
}

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	// KeepAliveTick is the cadence of the keep-alive loop that holds the
	// dispatcher's worker goroutine open while hooks are live.
	KeepAliveTick time.Duration
	// JoinTimeout bounds how long Stop waits for the worker to exit.
	JoinTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.KeepAliveTick <= 0 {
		o.KeepAliveTick = time.Second
	}
	if o.JoinTimeout <= 0 {
		o.JoinTimeout = time.Second
	}
}

// Dispatcher maintains a chord→callback binding table over a platform hook.
// Callbacks run on the hook's goroutine, never the application loop.
type Dispatcher struct {
	hook platform.Hook
	opts Options

	mu       sync.Mutex // guards bindings; never held across a callback
	bindings map[string]binding

	stateMu sync.Mutex
	state   lifecycle.State
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a dispatcher over the given hook.
func New(hook platform.Hook, opts Options) *Dispatcher {
	opts.applyDefaults()
	return &Dispatcher{
		hook:     hook,
		opts:     opts,
		bindings: make(map[string]binding),
	}
}

// Register adds or overwrites a binding for chord. While the dispatcher is
// running the binding is armed immediately; otherwise it is queued for
// arming at Start. A malformed or OS-rejected chord is logged and leaves the
// binding table unchanged — callers wanting early feedback should Validate
// first.
func (d *Dispatcher) Register(chord string, callback func(), description string) {
	combo, err := platform.ParseCombo(chord)
	if err != nil {
		slog.Error("invalid hotkey chord, not registered", "chord", chord, "error", err)
		return
	}
	key := combo.String()

	d.stateMu.Lock()
	running := d.state == lifecycle.Running
	d.stateMu.Unlock()

	if running {
		if err := d.hook.Add(combo); err != nil {
			slog.Error("failed to arm hotkey", "chord", key, "error", err)
			return
		}
	}

	d.mu.Lock()
	if _, exists := d.bindings[key]; exists {
		slog.Warn("hotkey already registered, overwriting", "chord", key)
	}
	d.bindings[key] = binding{combo: combo, callback: callback, description: description}
	d.mu.Unlock()

	slog.Info("hotkey registered", "chord", key, "description", description, "armed", running)
}

// Unregister removes a binding and disarms its hook if active. Unknown or
// malformed chords are a no-op.
func (d *Dispatcher) Unregister(chord string) {
	combo, err := platform.ParseCombo(chord)
	if err != nil {
		return
	}
	key := combo.String()

	d.mu.Lock()
	_, exists := d.bindings[key]
	if exists {
		delete(d.bindings, key)
	}
	d.mu.Unlock()

	if !exists {
		return
	}

	d.hook.Remove(combo)
	slog.Info("hotkey unregistered", "chord", key)
}

// Validate reports whether chord parses as a well-formed key combination,
// without registering anything.
func (d *Dispatcher) Validate(chord string) bool {
	_, err := platform.ParseCombo(chord)
	return err == nil
}

// Bindings returns a snapshot of registered chords and their descriptions.
func (d *Dispatcher) Bindings() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.bindings))
	for chord, b := range d.bindings {
		out[chord] = b.description
	}
	return out
}

// Start installs the OS hook, arms every queued binding, and begins the
// keep-alive loop on a worker goroutine. Idempotent. A binding the OS
// rejects is dropped from the table and logged; it does not prevent other
// bindings or the dispatcher itself from starting.
func (d *Dispatcher) Start() {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if d.state != lifecycle.Stopped {
		return
	}
	d.state = lifecycle.Starting

	if err := d.hook.Install(d.fire); err != nil {
		slog.Error("failed to install keyboard hook, hotkeys disabled", "error", err)
		d.state = lifecycle.Stopped
		return
	}

	d.mu.Lock()
	queued := maps.Clone(d.bindings)
	d.mu.Unlock()

	for chord, b := range queued {
		if err := d.hook.Add(b.combo); err != nil {
			slog.Error("failed to arm hotkey, dropping binding", "chord", chord, "error", err)
			d.mu.Lock()
			delete(d.bindings, chord)
			d.mu.Unlock()
			continue
		}
		slog.Info("hotkey armed", "chord", chord, "description", b.description)
	}

	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	go d.keepAlive(d.stopCh, d.doneCh)

	d.state = lifecycle.Running
	slog.Info("hotkey dispatching started")
}

// Stop disarms every hook and halts the keep-alive loop. Individual hook
// removal failures are logged, never raised. Safe to call repeatedly or
// before Start.
func (d *Dispatcher) Stop() {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if d.state != lifecycle.Running {
		return
	}
	d.state = lifecycle.Stopping

	close(d.stopCh)
	select {
	case <-d.doneCh:
	case <-time.After(d.opts.JoinTimeout):
		slog.Warn("hotkey keep-alive loop did not stop in time, abandoning")
	}

	d.hook.Uninstall()

	d.state = lifecycle.Stopped
	slog.Info("hotkey dispatching stopped")
}

// State returns the dispatcher's lifecycle state.
func (d *Dispatcher) State() lifecycle.State {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	return d.state
}

// fire runs on the hook's goroutine when an armed chord is pressed.
func (d *Dispatcher) fire(combo platform.Combo) {
	key := combo.String()

	d.mu.Lock()
	b, ok := d.bindings[key]
	d.mu.Unlock()

	if !ok {
		// Chord disarmed between fire and dispatch; stale event.
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("hotkey callback panicked", "chord", key, "panic", r)
		}
	}()
	b.callback()
}

// keepAlive ticks until Stop so the hook has a live owner for its lifetime.
func (d *Dispatcher) keepAlive(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(d.opts.KeepAliveTick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}
	}
}
