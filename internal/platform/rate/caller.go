package rate

import (
	"sync"
	"time"
)

// callerWindow tracks one caller's fixed window.
type callerWindow struct {
	start time.Time
	count int
}

// CallerLimiter enforces a fixed-window limit per caller identity. Each
// caller gets its own window; one caller exhausting its quota never affects
// another. Windows reset completely when they elapse, they do not slide.
type CallerLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	callers map[string]*callerWindow

	// now is swappable for tests.
	now func() time.Time
}

// NewCallerLimiter creates a per-caller limiter allowing limit requests per
// window.
func NewCallerLimiter(limit int, window time.Duration) *CallerLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &CallerLimiter{
		limit:   limit,
		window:  window,
		callers: make(map[string]*callerWindow),
		now:     time.Now,
	}
}

// Allow reports whether the caller may issue another request in its current
// window. When denied, retryAfter is the time remaining until the window
// resets. Allowed requests consume one slot.
func (cl *CallerLimiter) Allow(caller string) (allowed bool, retryAfter time.Duration) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	w, ok := cl.callers[caller]
	if !ok || now.Sub(w.start) >= cl.window {
		cl.callers[caller] = &callerWindow{start: now, count: 1}
		cl.pruneLocked(now)
		return true, 0
	}

	if w.count < cl.limit {
		w.count++
		return true, 0
	}

	return false, cl.window - now.Sub(w.start)
}

// Remaining returns how many requests the caller has left in its current
// window without consuming one.
func (cl *CallerLimiter) Remaining(caller string) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	w, ok := cl.callers[caller]
	if !ok || cl.now().Sub(w.start) >= cl.window {
		return cl.limit
	}
	return cl.limit - w.count
}

// pruneLocked drops windows that elapsed, keeping the map bounded by the
// set of recently active callers. Caller holds cl.mu.
func (cl *CallerLimiter) pruneLocked(now time.Time) {
	if len(cl.callers) < 1024 {
		return
	}
	for id, w := range cl.callers {
		if now.Sub(w.start) >= cl.window {
			delete(cl.callers, id)
		}
	}
}
