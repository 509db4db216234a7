package jemput

import (
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestThrottleLeadingEdge(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	throttled := Throttle(rec.record, 200*time.Millisecond, WithCadenceClock(clock))

	throttled(1)

	got := rec.snapshot()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("Expected immediate leading execution with 1, got %v", got)
	}
}

func TestThrottleTrailingCollapse(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	throttled := Throttle(rec.record, 200*time.Millisecond, WithCadenceClock(clock))

	throttled(1) // leading, fires now
	clock.Advance(50 * time.Millisecond)
	clock.BlockUntilReady()
	throttled(2) // inside window, queued
	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()
	throttled(3) // inside window, supersedes queued argument

	if got := rec.snapshot(); len(got) != 1 {
		t.Fatalf("Expected only the leading execution so far, got %v", got)
	}

	clock.Advance(50 * time.Millisecond) // window boundary at t=200
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) != 2 {
		t.Fatalf("Expected leading + one trailing execution, got %d (%v)", len(got), got)
	}
	if got[0] != 1 || got[1] != 3 {
		t.Errorf("Expected executions [1 3], got %v", got)
	}
	for _, v := range got {
		if v == 2 {
			t.Errorf("Intermediate argument 2 must never execute, got %v", got)
		}
	}
}

func TestThrottleNoTrailingWithoutCalls(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	throttled := Throttle(rec.record, 100*time.Millisecond, WithCadenceClock(clock))

	throttled(1)
	clock.Advance(500 * time.Millisecond)
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) != 1 {
		t.Errorf("Expected no trailing execution without in-window calls, got %v", got)
	}
}

func TestThrottleSeparateWindows(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	throttled := Throttle(rec.record, 100*time.Millisecond, WithCadenceClock(clock))

	throttled(1)
	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()
	throttled(2)
	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()
	throttled(3)

	got := rec.snapshot()
	if len(got) != 3 {
		t.Fatalf("Expected 3 leading executions across separate windows, got %d (%v)", len(got), got)
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Expected executions [1 2 3], got %v", got)
	}
}

func TestThrottleTrailingOpensNewWindow(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	throttled := Throttle(rec.record, 100*time.Millisecond, WithCadenceClock(clock))

	throttled(1) // leading at t=0
	clock.Advance(50 * time.Millisecond)
	clock.BlockUntilReady()
	throttled(2) // trailing queued for t=100
	clock.Advance(50 * time.Millisecond)
	clock.BlockUntilReady()

	// t=100: trailing fired, new window open until t=200.
	throttled(3)
	if got := rec.snapshot(); len(got) != 2 {
		t.Fatalf("Expected call inside fresh window to queue, got %v", got)
	}

	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Expected executions [1 2 3], got %v", got)
	}
}

func TestThrottleOnlyOneTrailingTimer(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	throttled := Throttle(rec.record, 100*time.Millisecond, WithCadenceClock(clock))

	throttled(1)
	for i := 2; i <= 10; i++ {
		throttled(i)
	}
	clock.Advance(time.Second)
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) != 2 {
		t.Fatalf("Expected burst to collapse to leading + single trailing, got %d (%v)", len(got), got)
	}
	if got[1] != 10 {
		t.Errorf("Expected trailing execution with latest argument 10, got %d", got[1])
	}
}

func TestThrottleConcurrentCallers(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := &recorder{}

	throttled := Throttle(rec.record, 100*time.Millisecond, WithCadenceClock(clock))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			throttled(v)
		}(i)
	}
	wg.Wait()

	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()

	got := rec.snapshot()
	if len(got) < 1 || len(got) > 2 {
		t.Fatalf("Expected leading plus at most one trailing execution, got %d (%v)", len(got), got)
	}
}

func TestThrottleMetrics(t *testing.T) {
	clock := clockz.NewFakeClock()
	mc := NewMetricsCollectorWithRegistry(newTestRegistry())
	rec := &recorder{}

	throttled := Throttle(rec.record, 100*time.Millisecond,
		WithCadenceClock(clock),
		WithCadenceName("scroll"),
		WithCadenceMetrics(mc),
	)

	throttled(1)
	throttled(2)
	clock.Advance(100 * time.Millisecond)
	clock.BlockUntilReady()

	assertCounter(t, mc.throttleExecutions.WithLabelValues("scroll", "leading"), 1)
	assertCounter(t, mc.throttleExecutions.WithLabelValues("scroll", "trailing"), 1)
}
