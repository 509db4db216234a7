package jemput

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Abort reasons recorded in metrics.
const (
	abortReasonSuperseded = "superseded"
	abortReasonClosed     = "closed"
)

// Fetcher coordinates the lifecycle of a single repeatable HTTP request. It
// tracks data / error / loading across fetch cycles, aborts the in-flight
// request whenever a new cycle starts, and guarantees that a superseded or
// closed cycle never writes observable state. It is safe for concurrent use.
//
// The zero value is not usable; construct with New.
type Fetcher[T any] struct {
	url             string
	endpoint        string
	cfg             config
	validationError error

	mu       sync.Mutex
	state    State[T]
	cancel   context.CancelFunc
	gen      uint64
	closed   bool
	onChange []func(State[T])
	wg       sync.WaitGroup
}

// New constructs a Fetcher for url using the provided functional options. A
// best effort validation is performed; call IsValid / ValidationError for
// errors. An invalid Fetcher completes each cycle with the validation error
// instead of issuing I/O.
//
// Unless WithImmediate(false) is given, the first fetch cycle starts before
// New returns, so State().Loading is already true for the caller.
func New[T any](rawURL string, options ...Option) *Fetcher[T] {
	cfg := defaultConfig()
	for _, option := range options {
		option(&cfg)
	}

	f := &Fetcher[T]{
		url:      rawURL,
		endpoint: endpointFromURL(rawURL),
		cfg:      cfg,
	}

	if err := validateConfiguration(rawURL, &cfg); err != nil {
		f.validationError = err
	}

	if cfg.immediate {
		f.Refetch()
	}

	return f
}

// IsValid reports whether configuration validation passed at construction.
func (f *Fetcher[T]) IsValid() bool {
	return f.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (f *Fetcher[T]) ValidationError() error {
	return f.validationError
}

// State returns a snapshot of the current data / error / loading state. The
// Data pointer is shared across snapshots and must be treated as read-only.
func (f *Fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// OnChange registers a callback invoked after every state transition with the
// new snapshot. Callbacks must be lightweight; they run on the goroutine that
// caused the transition. Register before the first cycle (WithImmediate(false)
// plus an explicit Refetch) to observe the full sequence.
func (f *Fetcher[T]) OnChange(fn func(State[T])) {
	f.mu.Lock()
	f.onChange = append(f.onChange, fn)
	f.mu.Unlock()
}

// Refetch starts a new fetch cycle, aborting any cycle still in flight. The
// superseded cycle's resolution is discarded entirely. Outcomes are observed
// via State / OnChange, not through a return value. Refetch on a closed
// Fetcher is a no-op.
func (f *Fetcher[T]) Refetch() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	// Invalidate the in-flight cycle before any new I/O starts so that two
	// cycles are never simultaneously current.
	if f.cancel != nil {
		f.cancel()
		f.cfg.metrics.RecordAbort(abortReasonSuperseded, f.endpoint)
		if f.debugEnabled() && f.cfg.debug.LogAborts {
			f.cfg.logger.Debug("Cycle superseded", "url", f.url, "generation", f.gen)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.gen++
	gen := f.gen

	if gen > 1 {
		f.cfg.metrics.RecordRefetch(f.cfg.method, f.endpoint)
	}

	if f.validationError != nil {
		// No I/O for invalid configuration; the cycle fails immediately.
		f.cancel = nil
		cancel()
		f.state.Loading = false
		f.state.Err = f.validationError
		s, subs := f.snapshotLocked()
		f.mu.Unlock()
		f.cfg.metrics.RecordError(ErrorTypeValidation, f.cfg.method, f.endpoint)
		f.publish(s, subs)
		return
	}

	f.state.Loading = true
	s, subs := f.snapshotLocked()

	var requestID string
	if f.debugEnabled() {
		requestID = f.cfg.debug.RequestIDGen()
		if f.cfg.debug.LogFetches {
			f.cfg.logger.Debug("Starting fetch cycle", "requestID", requestID,
				"method", f.cfg.method, "url", f.url, "generation", gen)
		}
	}

	f.wg.Add(1)
	f.mu.Unlock()

	f.publish(s, subs)

	go f.run(ctx, cancel, gen, requestID)
}

// Close aborts any in-flight cycle, waits for its goroutine to drain and
// freezes state permanently. Further Refetch calls are no-ops. A second Close
// returns ErrClosed.
func (f *Fetcher[T]) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
		f.cfg.metrics.RecordAbort(abortReasonClosed, f.endpoint)
		if f.debugEnabled() && f.cfg.debug.LogAborts {
			f.cfg.logger.Debug("Cycle aborted on close", "url", f.url)
		}
	}
	f.mu.Unlock()

	f.wg.Wait()
	return nil
}

// run executes one fetch cycle on its own goroutine.
func (f *Fetcher[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, requestID string) {
	defer f.wg.Done()
	defer cancel()

	data, ferr := fetchOnce[T](ctx, f.url, f.endpoint, &f.cfg, requestID)

	if ctx.Err() != nil {
		// Aborted: the cycle was superseded or the Fetcher closed. The
		// resolution is discarded wholesale; complete would drop it anyway
		// via the generation guard, but there is nothing left to record.
		return
	}

	f.complete(gen, data, ferr)
}

// complete commits a cycle's outcome unless the cycle has been superseded or
// the Fetcher closed in the meantime.
func (f *Fetcher[T]) complete(gen uint64, data *T, ferr error) {
	f.mu.Lock()
	if f.closed || gen != f.gen {
		f.mu.Unlock()
		return
	}

	f.cancel = nil
	f.state.Loading = false
	if ferr != nil {
		// Data deliberately keeps its last good value on failure.
		f.state.Err = ferr
	} else {
		f.state.Data = data
		f.state.Err = nil
	}
	s, subs := f.snapshotLocked()
	f.mu.Unlock()

	if f.debugEnabled() && f.cfg.debug.LogStateChanges {
		f.cfg.logger.Debug("Fetch cycle completed", "url", f.url,
			"generation", gen, "err", ferr)
	}

	f.publish(s, subs)
}

func (f *Fetcher[T]) snapshotLocked() (State[T], []func(State[T])) {
	subs := make([]func(State[T]), len(f.onChange))
	copy(subs, f.onChange)
	return f.state, subs
}

func (f *Fetcher[T]) publish(s State[T], subs []func(State[T])) {
	for _, fn := range subs {
		fn(s)
	}
}

func (f *Fetcher[T]) debugEnabled() bool {
	return f.cfg.debug != nil && f.cfg.debug.Enabled && f.cfg.logger != nil
}

// endpointFromURL extracts a simplified host+path endpoint for metrics labels.
func endpointFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}

	var builder strings.Builder
	builder.WriteString(u.Host)

	if u.Path != "" && u.Path != "/" {
		builder.WriteString(u.Path)
	} else {
		builder.WriteByte('/')
	}

	return builder.String()
}
