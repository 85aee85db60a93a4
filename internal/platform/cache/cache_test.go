package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"exposechain/internal/core/domain"
)

func dnsKey(target string) Key {
	return Key{Source: domain.SourceKindDNS, Target: target}
}

func successFor(target string) domain.LookupResult {
	return domain.NewSuccess(domain.SourceKindDNS, &domain.DNSRecords{}, time.Millisecond)
}

func TestNew_Defaults(t *testing.T) {
	c := New(0, 0, 0)
	if c.Capacity() != 128 {
		t.Errorf("default capacity = %d, want 128", c.Capacity())
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("default ttl = %s", c.ttl)
	}
	if c.failureTTL != 30*time.Second {
		t.Errorf("default failure ttl = %s", c.failureTTL)
	}
}

func TestGetOrCompute_CachesSuccess(t *testing.T) {
	c := New(10, time.Minute, time.Second)
	var calls int32

	compute := func() domain.LookupResult {
		atomic.AddInt32(&calls, 1)
		return successFor("example.com")
	}

	ctx := context.Background()
	c.GetOrCompute(ctx, dnsKey("example.com"), compute)
	c.GetOrCompute(ctx, dnsKey("example.com"), compute)

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	c := New(10, time.Minute, time.Second)
	var calls int32
	release := make(chan struct{})

	compute := func() domain.LookupResult {
		atomic.AddInt32(&calls, 1)
		<-release
		return successFor("example.com")
	}

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]domain.LookupResult, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrCompute(context.Background(), dnsKey("example.com"), compute)
		}(i)
	}

	// Let all goroutines reach the in-flight wait before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times for concurrent callers, want 1", n)
	}
	for i, r := range results {
		if !r.OK() {
			t.Errorf("waiter %d got status %s, want success", i, r.Status)
		}
	}
}

func TestGetOrCompute_ExpiredTriggersRecompute(t *testing.T) {
	c := New(10, 50*time.Millisecond, 10*time.Millisecond)
	var calls int32
	compute := func() domain.LookupResult {
		atomic.AddInt32(&calls, 1)
		return successFor("example.com")
	}

	ctx := context.Background()
	c.GetOrCompute(ctx, dnsKey("example.com"), compute)
	time.Sleep(80 * time.Millisecond)
	c.GetOrCompute(ctx, dnsKey("example.com"), compute)

	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("compute ran %d times, want 2 after expiry", n)
	}
}

func TestGetOrCompute_FailureShortTTL(t *testing.T) {
	c := New(10, time.Minute, 30*time.Millisecond)
	var calls int32
	compute := func() domain.LookupResult {
		atomic.AddInt32(&calls, 1)
		return domain.NewFailure(domain.SourceKindDNS, domain.ErrorKindNetwork, "unreachable")
	}

	ctx := context.Background()
	r := c.GetOrCompute(ctx, dnsKey("example.com"), compute)
	if r.Status != domain.StatusFailure {
		t.Fatalf("status = %s, want failure", r.Status)
	}

	// Within the failure TTL the cached failure is served.
	c.GetOrCompute(ctx, dnsKey("example.com"), compute)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times inside failure TTL, want 1", n)
	}

	// After the failure TTL the source is retried.
	time.Sleep(50 * time.Millisecond)
	c.GetOrCompute(ctx, dnsKey("example.com"), compute)
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("compute ran %d times after failure TTL, want 2", n)
	}
}

func TestGetOrCompute_CallerDeadline(t *testing.T) {
	c := New(10, time.Minute, time.Second)
	release := make(chan struct{})
	compute := func() domain.LookupResult {
		<-release
		return successFor("slow.example.com")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	r := c.GetOrCompute(ctx, dnsKey("slow.example.com"), compute)
	if r.Status != domain.StatusTimedOut {
		t.Fatalf("status = %s, want timeout for expired caller", r.Status)
	}

	// The detached computation still completes and populates the cache
	// for later requests.
	close(release)
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := c.Get(dnsKey("slow.example.com")); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("detached computation never populated the cache")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLRUEviction(t *testing.T) {
	c := New(3, time.Minute, time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		k := dnsKey(fmt.Sprintf("host%d.example.com", i))
		c.GetOrCompute(ctx, k, func() domain.LookupResult { return successFor(k.Target) })
	}

	// Touch host0 so host1 becomes the LRU entry.
	if _, ok := c.Get(dnsKey("host0.example.com")); !ok {
		t.Fatal("host0 should be cached")
	}

	k := dnsKey("host3.example.com")
	c.GetOrCompute(ctx, k, func() domain.LookupResult { return successFor(k.Target) })

	if _, ok := c.Get(dnsKey("host1.example.com")); ok {
		t.Error("host1 should have been evicted as LRU")
	}
	if _, ok := c.Get(dnsKey("host0.example.com")); !ok {
		t.Error("recently used host0 should survive eviction")
	}
	if c.Size() != 3 {
		t.Errorf("size = %d, want 3", c.Size())
	}
}

func TestKeyIsolation(t *testing.T) {
	c := New(10, time.Minute, time.Second)
	ctx := context.Background()

	c.GetOrCompute(ctx, Key{Source: domain.SourceKindDNS, Target: "example.com"}, func() domain.LookupResult {
		return successFor("example.com")
	})

	// Same target, different lookup kind: distinct key, fresh compute.
	var called bool
	c.GetOrCompute(ctx, Key{Source: domain.SourceKindWhois, Target: "example.com"}, func() domain.LookupResult {
		called = true
		return domain.NewSuccess(domain.SourceKindWhois, &domain.WhoisInfo{}, 0)
	})
	if !called {
		t.Error("different source kind must not share cache entries")
	}
}

func TestClearAndDelete(t *testing.T) {
	c := New(10, time.Minute, time.Second)
	ctx := context.Background()
	c.GetOrCompute(ctx, dnsKey("a.example.com"), func() domain.LookupResult { return successFor("a") })
	c.GetOrCompute(ctx, dnsKey("b.example.com"), func() domain.LookupResult { return successFor("b") })

	c.Delete(dnsKey("a.example.com"))
	if _, ok := c.Get(dnsKey("a.example.com")); ok {
		t.Error("deleted key should be absent")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("size after clear = %d", c.Size())
	}
}
