package geo

import "time"

// RateLimiter bounds call counts over a sliding window: at most Calls
// liberations in any trailing Window interval. State is in-memory only and
// resets on restart, which is acceptable because the window is short
// relative to a run.
//
// The limiter blocks the calling goroutine; the pipeline is single-threaded,
// so this is the run's only intentional suspension point.
type RateLimiter struct {
	calls  int
	window time.Duration
	stamps []time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRateLimiter creates a limiter allowing calls liberations per window.
// Non-positive arguments fall back to the default of 1 call per second.
func NewRateLimiter(calls int, window time.Duration) *RateLimiter {
	if calls <= 0 {
		calls = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &RateLimiter{
		calls:  calls,
		window: window,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Acquire blocks until one more call is allowed, then records the call time.
func (r *RateLimiter) Acquire() {
	now := r.now()

	kept := r.stamps[:0]
	for _, t := range r.stamps {
		if now.Sub(t) <= r.window {
			kept = append(kept, t)
		}
	}
	r.stamps = kept

	if len(r.stamps) >= r.calls {
		// Wait until enough of the oldest entries have left the window
		// that one slot is free again.
		oldest := r.stamps[len(r.stamps)-r.calls]
		if delta := oldest.Add(r.window).Sub(now); delta > 0 {
			r.sleep(delta)
		}
	}

	r.stamps = append(r.stamps, r.now())
}
