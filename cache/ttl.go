package cache

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrInvalidTTL is returned by Set when the ttl is zero or negative
var ErrInvalidTTL = errors.New("cache: ttl must be positive")

type entry struct {
	value     any
	expiresAt time.Time
}

// TTL is an in-memory cache safe for concurrent use. It has no capacity
// bound: entries leave only through Clear, overwrite, or expiry observed by
// Get, Stats or Sweep.
type TTL struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time

	hits    uint64
	misses  uint64
	expired uint64
}

// Option configures a TTL cache
type Option func(*TTL)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(c *TTL) { c.now = now }
}

// New creates an empty cache
func New(opts ...Option) *TTL {
	c := &TTL{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get implements Reader. An entry found past its expiry is deleted.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.expired++
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Set implements Writer
func (c *TTL) Set(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

// Clear removes all entries
func (c *TTL) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

// Sweep removes every expired entry and returns how many were removed
func (c *TTL) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sweepLocked()
}

func (c *TTL) sweepLocked() int {
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	c.expired += uint64(removed)
	return removed
}

// Stats sweeps expired entries and reports what is left
func (c *TTL) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Stats{
		Size:    len(keys),
		Keys:    keys,
		Hits:    c.hits,
		Misses:  c.misses,
		Expired: c.expired,
	}
}

// Len returns the number of stored entries, expired or not, without sweeping
func (c *TTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

var _ ReadWriter = (*TTL)(nil)
