// Package cache provides the shared lookup memoization layer: an in-memory
// LRU cache with per-outcome TTLs and single-flight coalescing of concurrent
// computations for the same key.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"exposechain/internal/core/domain"
)

// Key identifies one cached lookup: (lookup kind, normalized target).
type Key struct {
	Source domain.SourceKind
	Target string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Source, k.Target)
}

// entry represents a cached item with metadata.
type entry struct {
	key       Key
	value     domain.LookupResult
	expiresAt time.Time
	element   *list.Element // for LRU tracking
}

// flight represents one in-progress computation awaited by one or more callers.
type flight struct {
	done   chan struct{}
	result domain.LookupResult
}

// LookupCache is an in-memory LRU cache for lookup results.
//
// Successful results live for ttl; failures and timeouts live for failureTTL,
// which is much shorter, so an unreachable source is not hammered but recovery
// is picked up quickly. Entries are never mutated in place: an expired entry
// is treated as absent and replaced by a fresh computation.
type LookupCache struct {
	mu         sync.Mutex
	capacity   int
	ttl        time.Duration
	failureTTL time.Duration
	items      map[Key]*entry
	lruList    *list.List
	inflight   map[Key]*flight
}

const (
	defaultCapacity   = 128
	defaultTTL        = 5 * time.Minute
	defaultFailureTTL = 30 * time.Second
)

// New creates a lookup cache. Zero or negative arguments fall back to the
// defaults (capacity 128, success TTL 5m, failure TTL 30s).
func New(capacity int, ttl, failureTTL time.Duration) *LookupCache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if failureTTL <= 0 {
		failureTTL = defaultFailureTTL
	}
	return &LookupCache{
		capacity:   capacity,
		ttl:        ttl,
		failureTTL: failureTTL,
		items:      make(map[Key]*entry),
		lruList:    list.New(),
		inflight:   make(map[Key]*flight),
	}
}

// GetOrCompute returns the cached result for key, or runs compute to produce
// it. Concurrent callers for the same key during an in-flight computation
// await that single computation instead of issuing duplicate external calls.
//
// compute runs in its own goroutine and always finishes and populates the
// cache, even when the caller's context fires first; in that case the caller
// gets a TimedOut result and a later request benefits from the completed
// write. compute must bound its own execution time (the orchestrator passes
// a deadline-capped closure).
func (c *LookupCache) GetOrCompute(ctx context.Context, key Key, compute func() domain.LookupResult) domain.LookupResult {
	c.mu.Lock()

	if e, ok := c.items[key]; ok {
		if time.Now().Before(e.expiresAt) {
			c.lruList.MoveToFront(e.element)
			v := e.value
			c.mu.Unlock()
			return v
		}
		// Expired entries are absent; drop and recompute.
		c.deleteEntry(e)
	}

	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.result
		case <-ctx.Done():
			return domain.NewTimedOut(key.Source)
		}
	}

	f := &flight{done: make(chan struct{})}
	c.inflight[key] = f
	c.mu.Unlock()

	go func() {
		res := compute()

		c.mu.Lock()
		c.store(key, res)
		delete(c.inflight, key)
		c.mu.Unlock()

		f.result = res
		close(f.done)
	}()

	select {
	case <-f.done:
		return f.result
	case <-ctx.Done():
		return domain.NewTimedOut(key.Source)
	}
}

// Get retrieves a cached value without computing. A hit marks the entry as
// recently used.
func (c *LookupCache) Get(key Key) (domain.LookupResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return domain.LookupResult{}, false
	}
	if !time.Now().Before(e.expiresAt) {
		c.deleteEntry(e)
		return domain.LookupResult{}, false
	}
	c.lruList.MoveToFront(e.element)
	return e.value, true
}

// Delete removes a key from the cache.
func (c *LookupCache) Delete(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.deleteEntry(e)
	}
}

// Clear removes all cached values. In-flight computations are unaffected.
func (c *LookupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[Key]*entry)
	c.lruList.Init()
}

// Size returns the current number of cached items.
func (c *LookupCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of items the cache can hold.
func (c *LookupCache) Capacity() int {
	return c.capacity
}

// store inserts a fresh entry, evicting the LRU item at capacity.
// Failures and timeouts get the short TTL. Must be called with c.mu held.
func (c *LookupCache) store(key Key, value domain.LookupResult) {
	ttl := c.ttl
	if value.Status != domain.StatusSuccess {
		ttl = c.failureTTL
	}

	if existing, ok := c.items[key]; ok {
		// A stale entry is replaced, not updated.
		c.deleteEntry(existing)
	}

	if len(c.items) >= c.capacity {
		c.evictLRU()
	}

	e := &entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	e.element = c.lruList.PushFront(e)
	c.items[key] = e
}

// evictLRU removes the least recently used item. Must be called with c.mu held.
func (c *LookupCache) evictLRU() {
	element := c.lruList.Back()
	if element != nil {
		c.deleteEntry(element.Value.(*entry))
	}
}

// deleteEntry removes an entry. Must be called with c.mu held.
func (c *LookupCache) deleteEntry(e *entry) {
	delete(c.items, e.key)
	c.lruList.Remove(e.element)
}
