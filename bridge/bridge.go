// Package bridge hands events from background goroutines to the application
// loop. Background code triggers named actions; the loop goroutine executes
// the matching handlers one at a time, in enqueue order.
package bridge

import (
	"context"
	"log/slog"
	"sync"
)

// Handler runs on the goroutine driving Run — the application loop — never
// on the goroutine that triggered it.
type Handler func()

const defaultBuffer = 64

// Bridge is the queued hand-off between background goroutines and the
// application loop. Triggers from a single goroutine are dispatched in call
// order; no ordering is promised across concurrent triggering goroutines.
type Bridge struct {
	mu       sync.Mutex
	handlers map[string]Handler
	queue    chan string
}

// New creates a bridge with the given queue capacity (<=0 uses the default).
func New(buffer int) *Bridge {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bridge{
		handlers: make(map[string]Handler),
		queue:    make(chan string, buffer),
	}
}

// Handle registers the handler for a named action, replacing any previous
// registration.
func (b *Bridge) Handle(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = h
}

// Trigger enqueues the named action for execution on the application loop.
// Callable from any goroutine. When the queue is full the call blocks until
// the loop catches up; actions are never dropped.
func (b *Bridge) Trigger(name string) {
	b.queue <- name
}

// TryTrigger enqueues the named action without blocking, reporting whether
// it was accepted. Intended for callers that must not stall, such as OS
// hook threads.
func (b *Bridge) TryTrigger(name string) bool {
	select {
	case b.queue <- name:
		return true
	default:
		slog.Warn("bridge queue full, action dropped", "action", name)
		return false
	}
}

// Run drains the queue on the calling goroutine until ctx is canceled. Each
// handler runs to completion before the next queued action is dispatched;
// a panicking handler is logged and must not prevent subsequently queued
// actions from running.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case name := <-b.queue:
			b.dispatch(name)
		}
	}
}

func (b *Bridge) dispatch(name string) {
	b.mu.Lock()
	h, ok := b.handlers[name]
	b.mu.Unlock()

	if !ok {
		slog.Warn("no handler for bridged action", "action", name)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("bridged handler panicked", "action", name, "panic", r)
		}
	}()
	h()
}
