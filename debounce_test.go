package jemput

import (
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

// recorder collects invocation arguments across goroutines.
type recorder struct {
	mu   sync.Mutex
	args []int
}

func (r *recorder) record(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.args = append(r.args, v)
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.args))
	copy(out, r.args)
	return out
}

func TestDebounceCollapsesBurst(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	debounced := Debounce(rec.record, 300*time.Millisecond, WithCadenceClock(clock))

	debounced(1)
	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()
	debounced(2)
	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()
	debounced(3)

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("Expected no executions during burst, got %v", got)
	}

	clock.Advance(300 * time.Millisecond)
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("Expected exactly 1 execution, got %d (%v)", len(got), got)
	}
	if got[0] != 3 {
		t.Errorf("Expected last argument 3, got %d", got[0])
	}
}

func TestDebounceResetsOnEachCall(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	debounced := Debounce(rec.record, 200*time.Millisecond, WithCadenceClock(clock))

	debounced(1)
	clock.Advance(200 * time.Millisecond)
	clock.BlockUntilReady()

	debounced(2)
	clock.Advance(200 * time.Millisecond)
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) != 2 {
		t.Fatalf("Expected 2 executions for well-separated calls, got %d (%v)", len(got), got)
	}
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected executions [1 2], got %v", got)
	}
}

func TestDebounceSingleCall(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	debounced := Debounce(rec.record, 50*time.Millisecond, WithCadenceClock(clock))

	debounced(42)
	clock.Advance(50 * time.Millisecond)
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("Expected single execution with 42, got %v", got)
	}
}

func TestDebounceZeroDelayStillDefers(t *testing.T) {
	done := make(chan struct{})
	started := time.Now()
	var finished time.Time

	debounced := Debounce(func(int) {
		time.Sleep(20 * time.Millisecond)
		finished = time.Now()
		close(done)
	}, 0)

	debounced(1)
	returned := time.Now()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Debounced function never fired")
	}

	if !finished.After(returned) {
		t.Errorf("Expected deferred execution to finish after the wrapper returned (started %v, returned %v, finished %v)",
			started, returned, finished)
	}
}

func TestDebounceNegativeDelayClamped(t *testing.T) {
	rec := &recorder{}

	debounced := Debounce(rec.record, -time.Second)
	debounced(7)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := rec.snapshot(); len(got) == 1 && got[0] == 7 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected execution with 7, got %v", rec.snapshot())
}

func TestDebounceConcurrentCallers(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	debounced := Debounce(rec.record, 100*time.Millisecond, WithCadenceClock(clock))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			debounced(v)
		}(i)
	}
	wg.Wait()

	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("Expected burst to collapse to 1 execution, got %d (%v)", len(got), got)
	}
}

func TestDebounceMetrics(t *testing.T) {
	clock := clockz.NewFakeClock()
	mc := NewMetricsCollectorWithRegistry(newTestRegistry())
	rec := &recorder{}

	debounced := Debounce(rec.record, 100*time.Millisecond,
		WithCadenceClock(clock),
		WithCadenceName("search"),
		WithCadenceMetrics(mc),
	)

	debounced(1)
	debounced(2)
	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()

	assertCounter(t, mc.debounceCalls.WithLabelValues("search"), 2)
	assertCounter(t, mc.debounceFired.WithLabelValues("search"), 1)
}
