package crawler

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a ceiling on requests within a sliding time window.
//
// The limiter records the timestamp of every admitted request and admits
// a new one only when fewer than maxRequests timestamps fall inside the
// trailing window. All admissions go through a single mutex, so
// concurrent fetchers sharing one limiter can never collectively exceed
// the ceiling.
//
// Design decision: We track explicit timestamps rather than using a
// token bucket because the admission rule we need is "at most N requests
// in any trailing window", not a smoothed average rate. A token bucket
// permits bursts that briefly exceed the windowed ceiling, which is
// exactly the request-rate signature this limiter exists to suppress.
type RateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	timestamps  []time.Time

	// now is swapped in tests to drive the clock.
	now func() time.Time
}

// NewRateLimiter creates a limiter admitting at most maxRequests per
// sliding window. A maxRequests of zero or less disables limiting.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow reports whether a request may proceed now, recording it if so.
func (l *RateLimiter) Allow() bool {
	if l == nil || l.maxRequests <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.timestamps) >= l.maxRequests {
		return false
	}

	l.timestamps = append(l.timestamps, now)
	return true
}

// Wait blocks until a request is admitted or the context is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil || l.maxRequests <= 0 {
		return nil
	}

	for {
		if l.Allow() {
			return nil
		}

		delay := l.nextDelay()
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// nextDelay returns how long until the oldest in-window timestamp
// expires. Called only after a failed Allow, so at least one timestamp
// is present; a small floor guards against busy-spinning on clock skew.
func (l *RateLimiter) nextDelay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.timestamps) == 0 {
		return 10 * time.Millisecond
	}

	delay := l.window - l.now().Sub(l.timestamps[0])
	if delay < 10*time.Millisecond {
		delay = 10 * time.Millisecond
	}
	return delay
}

// prune drops timestamps that have slid out of the window.
// Caller must hold l.mu.
func (l *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.timestamps) && !l.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[i:]...)
	}
}

// InWindow returns the number of requests currently inside the window.
func (l *RateLimiter) InWindow() int {
	if l == nil || l.maxRequests <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.now())
	return len(l.timestamps)
}
