// Package cache provides time-to-live stores: TTL in memory for long-running
// processes and File on disk for short-lived ones.
//
// Entries expire lazily: an expired entry is only dropped when it is next
// looked up. There is no background sweep. A size cap bounds memory by
// evicting the oldest inserted key once the cap is reached. File has no cap.
package cache

import (
	"sync"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
)

const (
	// DefaultTTL is how long a status stays fresh.
	DefaultTTL = 6 * time.Hour

	// DefaultMaxEntries caps the number of live keys.
	DefaultMaxEntries = 1024
)

// Store is the behaviour the status engine needs from a cache.
type Store[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Has(key K) bool
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a map whose entries expire a fixed duration after insertion.
// It is safe for concurrent use.
type TTL[K comparable, V any] struct {
	ttl        time.Duration
	maxEntries int
	clock      clock.Clock

	mu      sync.Mutex
	entries map[K]entry[V]
	order   []K // insertion order, oldest first
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	maxEntries int
	clock      clock.Clock
}

// WithMaxEntries sets the size cap. Values below 1 leave the default.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithClock replaces the wall clock used for expiry.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// New creates a TTL cache. A non-positive ttl falls back to DefaultTTL.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *TTL[K, V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := options{maxEntries: DefaultMaxEntries, clock: clock.Real{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTL[K, V]{
		ttl:        ttl,
		maxEntries: o.maxEntries,
		clock:      o.clock,
		entries:    make(map[K]entry[V]),
	}
}

// Get returns the value stored under key if it has not expired.
// An expired entry is removed as a side effect.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.removeLocked(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether a live entry exists for key.
func (c *TTL[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores value under key, replacing any previous entry and restarting its TTL.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.removeLocked(key)
	}
	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		c.removeLocked(c.order[0])
	}

	c.entries[key] = entry[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
	c.order = append(c.order, key)
}

// Len returns the number of stored entries, including ones that have expired
// but not yet been looked up.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[K, V]) removeLocked(key K) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
