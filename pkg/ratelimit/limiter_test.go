package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestIntervalSpacing(t *testing.T) {
	interval := 20 * time.Millisecond
	limiter := NewInterval(interval)

	const n = 4
	start := time.Now()
	for i := 0; i < n; i++ {
		limiter.Wait()
	}
	elapsed := time.Since(start)

	min := time.Duration(n-1) * interval
	if elapsed < min {
		t.Errorf("expected %d dispatches to take at least %v, took %v", n, min, elapsed)
	}
}

func TestIntervalFirstDispatchImmediate(t *testing.T) {
	limiter := NewInterval(time.Second)

	start := time.Now()
	limiter.Wait()
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first dispatch should not wait, waited %v", elapsed)
	}
}

func TestIntervalConcurrentSpacing(t *testing.T) {
	interval := 10 * time.Millisecond
	limiter := NewInterval(interval)

	const n = 5
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Wait()
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	min := time.Duration(n-1) * interval
	if elapsed < min {
		t.Errorf("concurrent callers must still be spaced: expected at least %v, took %v", min, elapsed)
	}
}

func TestIntervalReset(t *testing.T) {
	limiter := NewInterval(time.Second)
	limiter.Wait()
	limiter.Reset()

	start := time.Now()
	limiter.Wait()
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("dispatch after reset should not wait, waited %v", elapsed)
	}
}

func TestNewZeroRateDisablesLimiting(t *testing.T) {
	limiter := New(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		limiter.Wait()
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("disabled limiter should return immediately, took %v", elapsed)
	}
}

func TestNewComputesInterval(t *testing.T) {
	limiter, ok := New(120).(*Interval)
	if !ok {
		t.Fatalf("expected *Interval for a positive rate")
	}
	if got := limiter.Interval(); got != 500*time.Millisecond {
		t.Errorf("expected 500ms interval for 120 rpm, got %v", got)
	}
}
