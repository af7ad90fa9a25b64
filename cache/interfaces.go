// Package cache provides an in-process key/value cache where every entry
// carries an absolute expiry. Expired entries are removed lazily when they
// are read, when statistics are taken, or by an optional periodic sweeper.
package cache

import "time"

// Reader defines the interface for reading cache entries
type Reader interface {
	// Get returns the value for key and true if present and not expired
	Get(key string) (any, bool)
}

// Writer defines the interface for writing cache entries
type Writer interface {
	// Set stores value under key for ttl, replacing any existing entry
	Set(key string, value any, ttl time.Duration) error
}

// ReadWriter combines both cache operations
type ReadWriter interface {
	Reader
	Writer
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`

	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Expired uint64 `json:"expired"`
}
