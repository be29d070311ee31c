package bridge

import (
	"context"
	"sync"
	"testing"
	"time"
)

// runBridge drives b.Run on a dedicated goroutine, standing in for the
// application loop, and returns a cancel to tear it down.
func runBridge(t *testing.T, b *Bridge) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestTriggerRunsHandlerOnLoopGoroutine(t *testing.T) {
	b := New(0)

	var mu sync.Mutex
	var count int
	b.Handle("toggle", func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	runBridge(t, b)

	// Two sequential triggers from one background goroutine run the
	// handler exactly twice.
	go func() {
		b.Trigger("toggle")
		b.Trigger("toggle")
	}()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 2
	}, "two handler executions")

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Errorf("handler ran %d times, want exactly 2", count)
	}
}

func TestTriggersPreserveOrder(t *testing.T) {
	b := New(0)

	var mu sync.Mutex
	var order []string
	record := func(name string) Handler {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}
	b.Handle("first", record("first"))
	b.Handle("second", record("second"))
	b.Handle("third", record("third"))

	// Enqueue before the loop starts so ordering cannot depend on timing.
	b.Trigger("first")
	b.Trigger("second")
	b.Trigger("third")
	b.Trigger("first")

	runBridge(t, b)

	want := []string{"first", "second", "third", "first"}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == len(want)
	}, "all handlers")

	mu.Lock()
	defer mu.Unlock()
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order = %v, want %v", order, want)
		}
	}
}

func TestPanickingHandlerDoesNotDropQueuedActions(t *testing.T) {
	b := New(0)

	var mu sync.Mutex
	var survived bool
	b.Handle("explode", func() { panic("boom") })
	b.Handle("after", func() {
		mu.Lock()
		survived = true
		mu.Unlock()
	})

	b.Trigger("explode")
	b.Trigger("after")

	runBridge(t, b)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return survived
	}, "handler queued after the panicking one")
}

func TestUnknownActionIsIgnored(t *testing.T) {
	b := New(0)

	var mu sync.Mutex
	var ran bool
	b.Handle("known", func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	})

	b.Trigger("unknown")
	b.Trigger("known")

	runBridge(t, b)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ran
	}, "known action after unknown one")
}

func TestTryTriggerReportsFullQueue(t *testing.T) {
	b := New(2)
	b.Handle("tick", func() {})

	// No loop running; fill the queue.
	if !b.TryTrigger("tick") || !b.TryTrigger("tick") {
		t.Fatal("TryTrigger rejected with queue capacity available")
	}
	if b.TryTrigger("tick") {
		t.Error("TryTrigger accepted beyond queue capacity")
	}
}

func TestHandlerReplacement(t *testing.T) {
	b := New(0)

	var mu sync.Mutex
	var got string
	b.Handle("act", func() {
		mu.Lock()
		got = "old"
		mu.Unlock()
	})
	b.Handle("act", func() {
		mu.Lock()
		got = "new"
		mu.Unlock()
	})

	b.Trigger("act")
	runBridge(t, b)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != ""
	}, "handler execution")

	mu.Lock()
	defer mu.Unlock()
	if got != "new" {
		t.Errorf("replaced handler ran %q, want %q", got, "new")
	}
}
