package rate

import (
	"testing"
	"time"

	"exposechain/internal/testutil"
)

func TestCallerLimiter_Allow(t *testing.T) {
	t.Run("allows up to limit in one window", func(t *testing.T) {
		cl := NewCallerLimiter(10, time.Minute)

		for i := 0; i < 10; i++ {
			ok, _ := cl.Allow("client-a")
			testutil.AssertTrue(t, ok, "request within limit should be allowed")
		}

		ok, retryAfter := cl.Allow("client-a")
		testutil.AssertFalse(t, ok, "11th request in the window should be denied")
		testutil.AssertTrue(t, retryAfter > 0, "denial should report retry delay")
		testutil.AssertTrue(t, retryAfter <= time.Minute, "retry delay bounded by window")
	})

	t.Run("callers are isolated", func(t *testing.T) {
		cl := NewCallerLimiter(2, time.Minute)

		cl.Allow("client-a")
		cl.Allow("client-a")
		ok, _ := cl.Allow("client-a")
		testutil.AssertFalse(t, ok, "client-a exhausted its window")

		ok, _ = cl.Allow("client-b")
		testutil.AssertTrue(t, ok, "client-b must not be affected by client-a")
	})

	t.Run("window resets completely", func(t *testing.T) {
		cl := NewCallerLimiter(3, time.Minute)
		now := time.Unix(1000, 0)
		cl.now = func() time.Time { return now }

		cl.Allow("client-a")
		cl.Allow("client-a")
		cl.Allow("client-a")
		ok, _ := cl.Allow("client-a")
		testutil.AssertFalse(t, ok, "window exhausted")

		// Advance past the window: full quota again, not a sliding credit.
		now = now.Add(time.Minute)
		for i := 0; i < 3; i++ {
			ok, _ := cl.Allow("client-a")
			testutil.AssertTrue(t, ok, "new window should grant the full quota")
		}
		ok, _ = cl.Allow("client-a")
		testutil.AssertFalse(t, ok, "new window still enforces the limit")
	})

	t.Run("denied request does not consume quota", func(t *testing.T) {
		cl := NewCallerLimiter(1, time.Minute)
		now := time.Unix(2000, 0)
		cl.now = func() time.Time { return now }

		cl.Allow("client-a")
		for i := 0; i < 5; i++ {
			ok, _ := cl.Allow("client-a")
			testutil.AssertFalse(t, ok, "denied while window open")
		}

		now = now.Add(time.Minute)
		ok, _ := cl.Allow("client-a")
		testutil.AssertTrue(t, ok, "denied attempts must not extend the window")
	})
}

func TestCallerLimiter_Remaining(t *testing.T) {
	cl := NewCallerLimiter(5, time.Minute)

	testutil.AssertEqual(t, cl.Remaining("client-a"), 5, "fresh caller has full quota")

	cl.Allow("client-a")
	cl.Allow("client-a")
	testutil.AssertEqual(t, cl.Remaining("client-a"), 3, "remaining reflects consumed slots")
	testutil.AssertEqual(t, cl.Remaining("client-b"), 5, "other callers unaffected")
}

func TestNewCallerLimiter_Defaults(t *testing.T) {
	cl := NewCallerLimiter(0, 0)
	testutil.AssertEqual(t, cl.limit, 10, "default limit")
	testutil.AssertEqual(t, cl.window, time.Minute, "default window")
}
