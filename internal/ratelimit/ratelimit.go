package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one sliding-window acquire attempt.
type Decision struct {
	Allowed   bool  `json:"allowed"`
	Remaining int   `json:"remaining"`
	ResetMs   int64 `json:"reset_ms"`
	Limit     int   `json:"limit"`
}

// Limiter is a sliding-window rate limiter. It keeps the timestamps of
// recent calls and rejects once the window is full. Safe for concurrent use;
// all bookkeeping happens under one mutex.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	calls  []time.Time
	now    func() time.Time
}

// NewLimiter returns a limiter allowing max calls per rolling window.
// A max below 1 rejects every call.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// TryAcquire records the call if the window has room and reports the
// decision. When rejected, ResetMs is the wait until the oldest tracked call
// ages out of the window.
func (l *Limiter) TryAcquire() Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// Drop calls that have aged out. The slice stays time-ordered because
	// appends only ever happen at the tail with the current time.
	kept := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls = kept

	if len(l.calls) >= l.max {
		// With a zero limit the window is full while empty; the full window
		// duration is the only honest wait to report.
		resetMs := l.window.Milliseconds()
		if len(l.calls) > 0 {
			resetMs = l.calls[0].Sub(cutoff).Milliseconds()
		}
		if resetMs < 1 {
			resetMs = 1
		}
		return Decision{Allowed: false, Remaining: 0, ResetMs: resetMs, Limit: l.max}
	}

	l.calls = append(l.calls, now)
	return Decision{
		Allowed:   true,
		Remaining: l.max - len(l.calls),
		Limit:     l.max,
	}
}

// ThrottleDecision is the outcome of one minimum-interval gate attempt.
type ThrottleDecision struct {
	Allowed bool  `json:"allowed"`
	WaitMs  int64 `json:"wait_ms"`
}

// Throttler enforces a minimum delay between consecutive calls. It only
// tracks the last accepted call, so memory is constant.
type Throttler struct {
	mu       sync.Mutex
	minDelay time.Duration
	last     time.Time
	now      func() time.Time
}

// NewThrottler returns a throttler requiring minDelay between calls.
func NewThrottler(minDelay time.Duration) *Throttler {
	return &Throttler{
		minDelay: minDelay,
		now:      time.Now,
	}
}

// TryAcquire accepts the call if minDelay has elapsed since the last
// accepted one, otherwise reports the remaining wait.
func (t *Throttler) TryAcquire() ThrottleDecision {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.last.IsZero() {
		elapsed := now.Sub(t.last)
		if elapsed < t.minDelay {
			return ThrottleDecision{
				Allowed: false,
				WaitMs:  (t.minDelay - elapsed).Milliseconds(),
			}
		}
	}

	t.last = now
	return ThrottleDecision{Allowed: true}
}
