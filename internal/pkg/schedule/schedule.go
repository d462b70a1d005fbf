// internal/pkg/schedule/schedule.go
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task runs fn immediately and then every interval until stopped.
// Runs never overlap; a slow run delays the next tick.
type Task struct {
	interval time.Duration
	fn       func(context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask creates a stopped task
func NewTask(interval time.Duration, fn func(context.Context)) *Task {
	return &Task{interval: interval, fn: fn}
}

// Start launches the task. Starting a running task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go func() {
		defer close(done)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		t.fn(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				t.fn(ctx)
			}
		}
	}()
}

// Stop cancels the task and waits for an in-flight run to return
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the task has been started and not stopped
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// After runs fn once after delay unless ctx ends first.
// The returned function cancels a pending run.
func After(ctx context.Context, delay time.Duration, fn func(context.Context)) (cancel func()) {
	ctx, stop := context.WithCancel(ctx)
	timer := time.NewTimer(delay)

	go func() {
		defer stop()
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
			fn(ctx)
		}
	}()

	return stop
}
