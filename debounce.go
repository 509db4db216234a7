package jemput

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Debounce returns a wrapper that delays invoking fn until delay has elapsed
// with no further calls to the wrapper. Each call replaces the pending argument
// and restarts the timer, so a burst of calls collapses into a single
// invocation with the argument of the last call.
//
// A non-positive delay still defers execution to the timer callback; fn is
// never invoked synchronously from the wrapper. Panics from fn surface on the
// timer goroutine, not in the caller's stack.
//
// The wrapper is safe for concurrent use. It holds its timer for as long as a
// call is pending; callers tearing down earlier should stop calling the
// wrapper and let the final invocation fire (or discard its effect).
func Debounce[T any](fn func(T), delay time.Duration, opts ...CadenceOption) func(T) {
	cfg := newCadenceConfig("debounce", opts)
	if delay < 0 {
		delay = 0
	}

	d := &debouncer[T]{
		fn:    fn,
		delay: delay,
		cfg:   cfg,
	}
	return d.call
}

type debouncer[T any] struct {
	fn    func(T)
	delay time.Duration
	cfg   cadenceConfig

	mu      sync.Mutex
	timer   clockz.Timer
	seq     uint64
	pending T
}

func (d *debouncer[T]) call(v T) {
	d.mu.Lock()
	d.pending = v
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.cfg.clock.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
	d.mu.Unlock()

	d.cfg.metrics.RecordDebounceCall(d.cfg.name)
}

// fire runs on the timer goroutine. The sequence check drops executions whose
// timer lost a Stop race against a newer call.
func (d *debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.timer = nil
	d.mu.Unlock()

	d.cfg.metrics.RecordDebounceFired(d.cfg.name)
	if d.cfg.logger != nil {
		d.cfg.logger.Debug("Debounce fired", "name", d.cfg.name, "delay", d.delay)
	}

	d.fn(v)
}
