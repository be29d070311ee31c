// Package service supervises the background workers — the clipboard tracker
// and the hotkey dispatcher — as a single start/stop unit whose lifecycle is
// independent of the application loop.
package service

import (
	"log/slog"
	"sync"
	"time"

	"clipnote/lifecycle"
)

// Worker is a background service the coordinator owns. Both calls must be
// idempotent.
type Worker interface {
	Start()
	Stop()
}

// Options tunes the coordinator. Zero values fall back to defaults.
type Options struct {
	// SuperviseTick is the cadence of the supervisory keep-alive loop.
	SuperviseTick time.Duration
	// JoinTimeout bounds how long Stop waits for the supervisor to exit.
	JoinTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.SuperviseTick <= 0 {
		o.SuperviseTick = time.Second
	}
	if o.JoinTimeout <= 0 {
		o.JoinTimeout = time.Second
	}
}

// Coordinator starts and stops its workers together and guarantees both are
// asked to clean up on shutdown. It exposes only a coarse Running/Stopped
// view; the workers keep their own fine-grained states.
type Coordinator struct {
	tracker    Worker
	dispatcher Worker
	opts       Options

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a coordinator owning the given workers.
func New(tracker, dispatcher Worker, opts Options) *Coordinator {
	opts.applyDefaults()
	return &Coordinator{tracker: tracker, dispatcher: dispatcher, opts: opts}
}

// Start brings up the clipboard tracker, then the hotkey dispatcher, then
// the supervisory loop. Start order is for log clarity only; the workers
// tolerate either ordering. No-op while already running.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}

	slog.Info("background service starting")

	c.tracker.Start()
	c.dispatcher.Start()

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	go c.supervise(c.stopCh, c.doneCh)

	c.running = true
	slog.Info("background service started")
}

// Stop halts the supervisor with a bounded wait, then stops the tracker and
// dispatcher in turn. Idempotent, and safe before any Start.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.running = false

	slog.Info("background service stopping")

	close(c.stopCh)
	select {
	case <-c.doneCh:
	case <-time.After(c.opts.JoinTimeout):
		slog.Warn("supervisor did not stop in time, abandoning")
	}

	c.tracker.Stop()
	c.dispatcher.Stop()

	slog.Info("background service stopped")
}

// Running reports the coordinator's coarse state.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// State maps the coarse running flag onto the shared lifecycle states.
func (c *Coordinator) State() lifecycle.State {
	if c.Running() {
		return lifecycle.Running
	}
	return lifecycle.Stopped
}

// supervise keeps the coordinator's goroutine alive while running. The
// workers own their loops; this tick exists only so shutdown has a single
// join point.
func (c *Coordinator) supervise(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(c.opts.SuperviseTick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}
	}
}
