package geo

import (
	"testing"
	"time"
)

func TestRateLimiterDelaysExcessCalls(t *testing.T) {
	const window = 100 * time.Millisecond
	limiter := NewRateLimiter(1, window)

	start := time.Now()
	limiter.Acquire()
	limiter.Acquire()
	elapsed := time.Since(start)

	if elapsed < window {
		t.Errorf("two acquisitions took %v; want at least %v", elapsed, window)
	}
}

func TestRateLimiterAllowsBurstWithinLimit(t *testing.T) {
	limiter := NewRateLimiter(3, time.Second)

	var slept time.Duration
	limiter.sleep = func(d time.Duration) { slept += d }

	limiter.Acquire()
	limiter.Acquire()
	limiter.Acquire()

	if slept != 0 {
		t.Errorf("slept %v within the allowed burst; want no delay", slept)
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	limiter := NewRateLimiter(2, time.Second)

	now := time.Unix(1000, 0)
	limiter.now = func() time.Time { return now }
	var slept time.Duration
	limiter.sleep = func(d time.Duration) { slept += d }

	limiter.Acquire()
	now = now.Add(300 * time.Millisecond)
	limiter.Acquire()

	// Both slots taken; the third call must wait until the first stamp
	// leaves the window (700ms from now).
	now = now.Add(0)
	limiter.Acquire()
	if slept != 700*time.Millisecond {
		t.Errorf("slept %v; want 700ms until the oldest call leaves the window", slept)
	}

	// Once the window has fully passed, no delay remains.
	slept = 0
	now = now.Add(2 * time.Second)
	limiter.Acquire()
	if slept != 0 {
		t.Errorf("slept %v after the window expired; want no delay", slept)
	}
}

func TestRateLimiterDefaults(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	if limiter.calls != 1 || limiter.window != time.Second {
		t.Errorf("defaults = %d calls / %v; want 1 call / 1s", limiter.calls, limiter.window)
	}
}
