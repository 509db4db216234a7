package jemput

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Throttle returns a wrapper that limits fn to at most one execution per
// window. The first call in a window executes fn immediately in the caller's
// stack (leading edge). Calls arriving inside the window collapse into exactly
// one trailing execution scheduled for the window boundary, carrying the
// argument of the latest call seen (trailing edge). A trailing execution opens
// a new window.
//
// Only one trailing timer is ever pending per wrapper; overlapping windows do
// not stack. A non-positive window degenerates to invoking fn on every call.
//
// The wrapper is safe for concurrent use.
func Throttle[T any](fn func(T), window time.Duration, opts ...CadenceOption) func(T) {
	cfg := newCadenceConfig("throttle", opts)
	if window < 0 {
		window = 0
	}

	t := &throttler[T]{
		fn:     fn,
		window: window,
		cfg:    cfg,
	}
	return t.call
}

type throttler[T any] struct {
	fn     func(T)
	window time.Duration
	cfg    cadenceConfig

	mu       sync.Mutex
	started  bool
	lastRun  time.Time
	trailing clockz.Timer
	pending  T
}

func (t *throttler[T]) call(v T) {
	t.mu.Lock()
	now := t.cfg.clock.Now()

	// Leading edge only when no trailing execution is queued; otherwise the
	// queued execution absorbs this call's argument.
	if t.trailing == nil && (!t.started || now.Sub(t.lastRun) >= t.window) {
		t.started = true
		t.lastRun = now
		t.mu.Unlock()

		t.cfg.metrics.RecordThrottleExecution(t.cfg.name, "leading")
		t.fn(v)
		return
	}

	t.pending = v
	if t.trailing == nil {
		remaining := t.window - now.Sub(t.lastRun)
		t.trailing = t.cfg.clock.AfterFunc(remaining, t.fireTrailing)
	}
	t.mu.Unlock()
}

// fireTrailing runs at the window boundary with the latest pending argument.
func (t *throttler[T]) fireTrailing() {
	t.mu.Lock()
	v := t.pending
	var zero T
	t.pending = zero
	t.trailing = nil
	t.lastRun = t.cfg.clock.Now()
	t.mu.Unlock()

	t.cfg.metrics.RecordThrottleExecution(t.cfg.name, "trailing")
	if t.cfg.logger != nil {
		t.cfg.logger.Debug("Throttle trailing fired", "name", t.cfg.name, "window", t.window)
	}

	t.fn(v)
}
