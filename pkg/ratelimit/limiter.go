package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Wait blocks until the rate limit allows another dispatch
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// Interval enforces a minimum spacing between successive dispatches
// from one instance. The spacing invariant holds under concurrent
// callers: the check-and-update of the last dispatch time happens
// under the mutex, and waiters reserve their slot before sleeping.
type Interval struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewInterval creates a limiter spacing dispatches at least interval apart.
func NewInterval(interval time.Duration) *Interval {
	return &Interval{interval: interval}
}

// New creates a limiter from a requests-per-minute rate. A rate of 0
// (or negative) disables limiting.
func New(requestsPerMinute int) Limiter {
	if requestsPerMinute <= 0 {
		return Noop{}
	}
	return NewInterval(time.Minute / time.Duration(requestsPerMinute))
}

// Wait blocks until at least the configured interval has elapsed since
// the previous dispatch. time.Time carries a monotonic clock reading,
// so wall-clock adjustments do not affect the spacing.
func (l *Interval) Wait() {
	l.mu.Lock()
	now := time.Now()

	var next time.Time
	if l.last.IsZero() {
		next = now
	} else {
		next = l.last.Add(l.interval)
		if next.Before(now) {
			next = now
		}
	}
	// reserve the slot before releasing the lock so concurrent
	// waiters queue behind it rather than double-booking it
	l.last = next
	l.mu.Unlock()

	if d := next.Sub(now); d > 0 {
		time.Sleep(d)
	}
}

// Reset forgets the last dispatch time.
func (l *Interval) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = time.Time{}
}

// Interval returns the configured minimum spacing.
func (l *Interval) Interval() time.Duration {
	return l.interval
}

// Noop is a disabled limiter; Wait returns immediately.
type Noop struct{}

func (Noop) Wait()  {}
func (Noop) Reset() {}
